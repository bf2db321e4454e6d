package store

// Schema is the full current schema, kept in sync with the migration files.
// Tests apply it directly to an in-memory database instead of running the
// migration machinery.
const Schema = `
CREATE TABLE suggestions (
    id              TEXT PRIMARY KEY,
    remote_path     TEXT NOT NULL,
    display_name    TEXT NOT NULL,
    size_bytes      INTEGER NOT NULL DEFAULT 0,
    mime_type       TEXT NOT NULL DEFAULT '',
    content_hash    TEXT NOT NULL DEFAULT '',
    revised_at      TIMESTAMP NOT NULL,
    guessed_case_id TEXT NOT NULL DEFAULT '',
    guessed_slots   TEXT NOT NULL DEFAULT '[]',
    status          TEXT NOT NULL,
    linked_case_id  TEXT NOT NULL DEFAULT '',
    linked_slot_key TEXT NOT NULL DEFAULT '',
    notes           TEXT NOT NULL DEFAULT ''
);
CREATE INDEX idx_suggestions_status ON suggestions (status);
CREATE INDEX idx_suggestions_content_hash ON suggestions (content_hash);
CREATE INDEX idx_suggestions_name_size ON suggestions (display_name, size_bytes);
CREATE INDEX idx_suggestions_case ON suggestions (guessed_case_id);
CREATE TABLE audits (
    id           TEXT PRIMARY KEY,
    action       TEXT NOT NULL,
    case_id      TEXT NOT NULL DEFAULT '',
    slot_key     TEXT NOT NULL DEFAULT '',
    remote_path  TEXT NOT NULL,
    content_hash TEXT NOT NULL DEFAULT '',
    at           TIMESTAMP NOT NULL,
    actor        TEXT NOT NULL,
    reason       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX idx_audits_at ON audits (at);
CREATE TABLE cases (
    id           TEXT PRIMARY KEY,
    code         TEXT NOT NULL DEFAULT '',
    display_name TEXT NOT NULL
);
CREATE UNIQUE INDEX idx_cases_code ON cases (code) WHERE code != '';
CREATE TABLE attachments (
    case_id      TEXT NOT NULL REFERENCES cases (id),
    slot_key     TEXT NOT NULL,
    remote_path  TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    size_bytes   INTEGER NOT NULL DEFAULT 0,
    mime_type    TEXT NOT NULL DEFAULT '',
    linked_at    TIMESTAMP NOT NULL,
    PRIMARY KEY (case_id, slot_key)
);
`
