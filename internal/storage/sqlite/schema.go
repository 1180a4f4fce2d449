// ABOUTME: SQLite database schema for the syllabus record store
// ABOUTME: Records are keyed by (board, class, subject); chapters keep their file order
package sqlite

// Schema contains all SQL statements for database initialization
const Schema = `
-- One row per board/class/subject
CREATE TABLE IF NOT EXISTS records (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    board TEXT NOT NULL COLLATE NOCASE,
    class TEXT NOT NULL COLLATE NOCASE,
    subject TEXT NOT NULL COLLATE NOCASE,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (board, class, subject)
);

-- Chapter contents in their original order
CREATE TABLE IF NOT EXISTS chapters (
    record_id INTEGER NOT NULL REFERENCES records(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    chapter TEXT NOT NULL,
    content TEXT NOT NULL,
    PRIMARY KEY (record_id, position)
);

CREATE INDEX IF NOT EXISTS idx_chapters_record ON chapters(record_id);
`

// SchemaVersion is the current schema version, stored in PRAGMA user_version
const SchemaVersion = 1
