package signal

import (
	"strings"
	"unicode"
)

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true, "from": true,
	"is": true, "are": true, "was": true, "were": true, "be": true,
	"it": true, "its": true, "we": true, "you": true, "your": true,
	"this": true, "that": true, "how": true, "what": true, "why": true,
	"not": true, "no": true, "new": true, "just": true, "about": true,
	"app": true, "tool": true, "platform": true, "based": true,
}

// Filter matches text against an idea's keywords.
type Filter struct {
	keywords []string
}

// NewFilter builds a filter from the significant words of the idea title
// plus its tags.
func NewFilter(q Query) *Filter {
	seen := make(map[string]bool)
	var keywords []string
	add := func(kw string) {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			return
		}
		seen[kw] = true
		keywords = append(keywords, kw)
	}

	for _, tok := range significantTokens(q.Terms()) {
		add(tok)
	}
	for _, tag := range q.Tags {
		add(tag)
	}
	return &Filter{keywords: keywords}
}

// Keywords returns the lowercased keywords.
func (f *Filter) Keywords() []string {
	return f.keywords
}

// Matches returns true if text contains any keyword.
func (f *Filter) Matches(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range f.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// significantTokens extracts meaningful words from a title.
func significantTokens(title string) []string {
	words := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var tokens []string
	for _, w := range words {
		if len(w) >= 3 && !stopwords[w] {
			tokens = append(tokens, w)
		}
	}
	return tokens
}
