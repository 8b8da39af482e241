package storage

// SchemaVersion is the current content database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the content database schema.
// Publish times are stored as Unix nanoseconds so ordering never depends on
// the textual time format.
const Schema = `
-- Content types
CREATE TABLE IF NOT EXISTS content_types (
    name TEXT PRIMARY KEY,
    label TEXT NOT NULL,
    public BOOLEAN NOT NULL DEFAULT 1
);

-- Content items
CREATE TABLE IF NOT EXISTS content_items (
    id TEXT PRIMARY KEY,
    type TEXT NOT NULL REFERENCES content_types(name),
    title TEXT NOT NULL,
    permalink TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    published_at INTEGER NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_content_items_type_status_published
    ON content_items(type, status, published_at);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const (
	upsertTypeSQL = `
INSERT INTO content_types (name, label, public) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET label = excluded.label, public = excluded.public;
`

	// Updating in place keeps the rowid, which is the secondary sort key.
	upsertItemSQL = `
INSERT INTO content_items (id, type, title, permalink, status, published_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    type = excluded.type,
    title = excluded.title,
    permalink = excluded.permalink,
    status = excluded.status,
    published_at = excluded.published_at;
`

	selectTypesSQL       = `SELECT name, label, public FROM content_types ORDER BY name`
	selectPublicTypesSQL = `SELECT name, label, public FROM content_types WHERE public = 1 ORDER BY name`
	selectTypeLabelSQL   = `SELECT label FROM content_types WHERE name = ? AND public = 1`
	typeExistsSQL        = `SELECT COUNT(1) FROM content_types WHERE name = ?`
	deleteItemSQL        = `DELETE FROM content_items WHERE id = ?`

	selectPublishedSQL = `
SELECT id, title, permalink, published_at
FROM content_items
WHERE type = ? AND status = ?
ORDER BY published_at DESC, rowid ASC
`
)
