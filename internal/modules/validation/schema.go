package validation

import "database/sql"

// ValidationsSchema defines the validation archive table in corpus.db.
const ValidationsSchema = `
CREATE TABLE IF NOT EXISTS validations (
    id TEXT PRIMARY KEY,
    signs_json TEXT NOT NULL,
    status TEXT NOT NULL,
    reasons_json TEXT NOT NULL,
    direction_log_json TEXT NOT NULL,
    items_json TEXT NOT NULL,
    processed INTEGER NOT NULL,
    grammar_name TEXT NOT NULL,
    grammar_version TEXT NOT NULL,
    collect_all INTEGER NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_validations_status ON validations(status);
CREATE INDEX IF NOT EXISTS idx_validations_created ON validations(created_at);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(ValidationsSchema)
	return err
}
