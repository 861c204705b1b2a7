package catalog

import "database/sql"

// SignsSchema defines the sign catalog table in catalog.db.
const SignsSchema = `
CREATE TABLE IF NOT EXISTS signs (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    role TEXT NOT NULL,
    frequency INTEGER NOT NULL DEFAULT 0,
    description TEXT NOT NULL DEFAULT '',
    last_updated TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_signs_role ON signs(role);
CREATE INDEX IF NOT EXISTS idx_signs_frequency ON signs(frequency);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(SignsSchema)
	return err
}
