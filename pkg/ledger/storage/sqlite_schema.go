package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the ledger database schema.
const Schema = `
-- Build records table
CREATE TABLE IF NOT EXISTS build_records (
    id TEXT PRIMARY KEY,
    run_id TEXT NOT NULL,

    -- Plan provenance
    spec_path TEXT,
    spec_hash TEXT,
    plan_version TEXT,

    -- Task identity
    genome TEXT NOT NULL,
    datatype TEXT NOT NULL,
    phase TEXT NOT NULL,
    adapter TEXT,

    -- Outcome
    status TEXT NOT NULL,

    -- Timing
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP,
    duration_ms INTEGER,

    -- Transfer
    bytes_fetched INTEGER,
    source_host TEXT,

    -- Error info
    error TEXT,

    -- Mode
    dry_run BOOLEAN,

    recorded_at TIMESTAMP NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_build_records_started_at ON build_records(started_at);
CREATE INDEX IF NOT EXISTS idx_build_records_run_id ON build_records(run_id);
CREATE INDEX IF NOT EXISTS idx_build_records_genome ON build_records(genome);
CREATE INDEX IF NOT EXISTS idx_build_records_status ON build_records(status);
CREATE INDEX IF NOT EXISTS idx_build_records_phase ON build_records(phase);
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
