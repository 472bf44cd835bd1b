package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	id           TEXT PRIMARY KEY,
	kind         TEXT NOT NULL,
	title_id     INTEGER NOT NULL,
	chapter_id   INTEGER NOT NULL,
	chapter_name TEXT NOT NULL,
	message      TEXT NOT NULL DEFAULT '',
	state        TEXT NOT NULL DEFAULT 'shown'
		CHECK(state IN ('shown', 'acknowledged', 'timed_out')),
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	resolved_at  DATETIME
);

CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at);
CREATE INDEX IF NOT EXISTS idx_notifications_state ON notifications(state);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
