package score

import "math"

// Normalizers map raw signal metrics onto a common 0-100 scale.
// They never fail: out-of-range inputs are clamped.

// percentToScore maps a percentage change in [-50, +50] linearly onto [0, 100].
func percentToScore(pct float64) float64 {
	return Clamp((pct+50)*2, 0, 100)
}

// logScore is log10(v+1) scaled by factor and clamped. Negative inputs count as zero.
func logScore(v, factor float64) float64 {
	if v < 0 || math.IsNaN(v) {
		v = 0
	}
	return Clamp(math.Log10(v+1)*factor, 0, 100)
}

// NormalizeTrend scores a trend series by its slope (percent change) and
// variance. Rising trends score high; noisy ones are penalized.
func NormalizeTrend(slope, variance float64) float64 {
	slopeScore := percentToScore(slope)
	varianceScore := Clamp(100-variance*2, 0, 100)
	return Clamp(0.7*slopeScore+0.3*varianceScore, 0, 100)
}

// NormalizeSearchVolume scores search demand from monthly volume and its
// 3-month and 12-month growth percentages.
func NormalizeSearchVolume(volume, growth3mo, growth12mo float64) float64 {
	volumeScore := logScore(volume, 20)
	return Clamp(0.5*volumeScore+0.3*percentToScore(growth3mo)+0.2*percentToScore(growth12mo), 0, 100)
}

// NormalizeCommunity scores community discussion from mention count and
// total engagement (upvotes plus comments).
func NormalizeCommunity(mentions, engagement float64) float64 {
	return Clamp(0.6*logScore(mentions, 25)+0.4*logScore(engagement, 20), 0, 100)
}

// NormalizeNews scores press coverage. recencyFactor is the share of
// articles that are recent, in [0, 1]; it scales the volume score.
func NormalizeNews(volume, recencyFactor float64) float64 {
	volumeScore := logScore(volume, 30)
	recencyScore := Clamp(recencyFactor*100, 0, 100)
	return Clamp(volumeScore/100*recencyScore, 0, 100)
}

// NormalizeCompetition scores a market by competitor count. No competitors
// scores 100 and every additional competitor lowers the score.
func NormalizeCompetition(competitorCount int) float64 {
	if competitorCount <= 0 {
		return 100
	}
	return Clamp(100-math.Log10(float64(competitorCount)+1)*50, 0, 100)
}

// NormalizeQuality scores how complete an idea's description is.
func NormalizeQuality(hasProblem, hasSolution, hasTargetUser, hasWhyNow bool, tagCount int) float64 {
	points := 0.0
	if hasProblem {
		points += 25
	}
	if hasSolution {
		points += 25
	}
	if hasTargetUser {
		points += 20
	}
	if hasWhyNow {
		points += 20
	}
	if tagCount > 0 {
		points += math.Min(10, float64(tagCount)*2.5)
	}
	return Clamp(points, 0, 100)
}

// Clamp limits v to [lo, hi]. NaN clamps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
