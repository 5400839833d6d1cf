package store

// schemaVersion is the catalog schema this build writes.
const schemaVersion = 1

// Declarations are stored as their YAML scenario form so the catalog
// round-trips through the same decoder as scenario files.
var schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);

CREATE TABLE IF NOT EXISTS batches (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	imported_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS traits (
	name     TEXT PRIMARY KEY,
	batch_id TEXT NOT NULL REFERENCES batches(id),
	payload  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS impls (
	id       TEXT PRIMARY KEY,
	trait    TEXT NOT NULL,
	batch_id TEXT NOT NULL REFERENCES batches(id),
	payload  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS consts (
	id       TEXT PRIMARY KEY,
	batch_id TEXT NOT NULL REFERENCES batches(id),
	payload  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS type_bounds (
	name     TEXT PRIMARY KEY,
	batch_id TEXT NOT NULL REFERENCES batches(id),
	payload  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_impls_trait ON impls(trait);
`
