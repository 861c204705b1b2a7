package corpus

import "database/sql"

// CorpusSchema defines the inscription archive and the bigram aggregate
// tables in corpus.db.
const CorpusSchema = `
CREATE TABLE IF NOT EXISTS inscriptions (
    id TEXT PRIMARY KEY,
    signs_json TEXT NOT NULL,
    provenance TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_inscriptions_created ON inscriptions(created_at);
CREATE INDEX IF NOT EXISTS idx_inscriptions_provenance ON inscriptions(provenance);

CREATE TABLE IF NOT EXISTS bigrams (
    source_id INTEGER NOT NULL,
    target_id INTEGER NOT NULL,
    count INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (source_id, target_id)
);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(CorpusSchema)
	return err
}
