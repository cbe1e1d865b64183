package history

// Schema defines the SQLite schema for the retrieval history: one append-only
// row per terminal polling or fetch outcome. Live session state is never
// stored here; rows are written only once a run has finished.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    code TEXT NOT NULL,
    outcome TEXT NOT NULL,
    file_count INTEGER NOT NULL DEFAULT 0,
    destination TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_runs_code ON runs(code);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// Run is one recorded retrieval outcome.
type Run struct {
	ID          int64
	Code        string
	Outcome     string
	FileCount   int
	Destination string
	CreatedAt   string
}
