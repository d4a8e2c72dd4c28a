package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the diagram tables. Timestamps are stored as Unix
// nanoseconds so both SQLite drivers read them back identically.
const Schema = `
CREATE TABLE IF NOT EXISTS diagrams (
    id TEXT PRIMARY KEY,
    activity_id TEXT,
    mode TEXT NOT NULL,
    source TEXT NOT NULL,
    graph TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_diagrams_activity_id ON diagrams(activity_id) WHERE activity_id IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_diagrams_updated_at ON diagrams(updated_at);
CREATE INDEX IF NOT EXISTS idx_diagrams_mode ON diagrams(mode);
`

// InsertSchemaVersion records the schema version.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion reads the newest recorded schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const (
	upsertDiagram = `
INSERT INTO diagrams (id, activity_id, mode, source, graph, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    activity_id = excluded.activity_id,
    mode = excluded.mode,
    source = excluded.source,
    graph = excluded.graph,
    updated_at = excluded.updated_at;
`

	selectColumns = `SELECT id, activity_id, mode, source, graph, created_at, updated_at FROM diagrams`

	deleteOldest = `
DELETE FROM diagrams WHERE id IN (
    SELECT id FROM diagrams ORDER BY updated_at DESC, id DESC LIMIT -1 OFFSET ?
);
`
)
