package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create chat sessions and messages",
		SQL: `
			CREATE TABLE chat_sessions (
				id              TEXT PRIMARY KEY,
				owner_id        TEXT NOT NULL,
				date            TEXT NOT NULL,
				last_message_at TEXT NOT NULL DEFAULT (datetime('now')),
				search_blob     TEXT NOT NULL DEFAULT ''
			);

			CREATE UNIQUE INDEX idx_sessions_owner_date ON chat_sessions (owner_id, date);
			CREATE INDEX idx_sessions_owner_activity ON chat_sessions (owner_id, last_message_at);

			CREATE TABLE messages (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				session_id  TEXT NOT NULL REFERENCES chat_sessions(id) ON DELETE CASCADE,
				role        TEXT NOT NULL,
				content     TEXT NOT NULL,
				timestamp   TEXT NOT NULL DEFAULT (datetime('now')),
				attachments TEXT
			);

			CREATE INDEX idx_messages_session ON messages (session_id, id);
		`,
	},
	{
		Version: 2,
		Name:    "create notes",
		SQL: `
			CREATE TABLE notes (
				id         TEXT PRIMARY KEY,
				owner_id   TEXT NOT NULL,
				title      TEXT NOT NULL,
				content    TEXT NOT NULL,
				updated_at TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_notes_owner ON notes (owner_id);
		`,
	},
}
