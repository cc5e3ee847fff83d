package store

const schema = `
CREATE TABLE IF NOT EXISTS ideas (
    id          TEXT PRIMARY KEY,
    title       TEXT NOT NULL,
    problem     TEXT NOT NULL DEFAULT '',
    solution    TEXT NOT NULL DEFAULT '',
    target_user TEXT NOT NULL DEFAULT '',
    why_now     TEXT NOT NULL DEFAULT '',
    difficulty  INTEGER NOT NULL DEFAULT 3,
    build_type  TEXT NOT NULL DEFAULT '',
    tags        TEXT NOT NULL DEFAULT '[]',
    score       REAL NOT NULL DEFAULT 0,
    breakdown   TEXT NOT NULL DEFAULT '{}',
    sources     TEXT NOT NULL DEFAULT '[]',
    scored_at   DATETIME,
    alerted     BOOLEAN NOT NULL DEFAULT 0,
    created_at  DATETIME NOT NULL,
    updated_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ideas_score ON ideas(score);
CREATE INDEX IF NOT EXISTS idx_ideas_updated_at ON ideas(updated_at);

CREATE TABLE IF NOT EXISTS score_history (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    idea_id   TEXT NOT NULL REFERENCES ideas(id) ON DELETE CASCADE,
    score     REAL NOT NULL,
    breakdown TEXT NOT NULL DEFAULT '{}',
    scored_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_idea ON score_history(idea_id);

CREATE TABLE IF NOT EXISTS bookmarks (
    user_id    TEXT NOT NULL,
    idea_id    TEXT NOT NULL REFERENCES ideas(id) ON DELETE CASCADE,
    created_at DATETIME NOT NULL,
    PRIMARY KEY (user_id, idea_id)
);

CREATE TABLE IF NOT EXISTS profiles (
    user_id    TEXT PRIMARY KEY,
    profile    TEXT NOT NULL,
    updated_at DATETIME NOT NULL
);
`
