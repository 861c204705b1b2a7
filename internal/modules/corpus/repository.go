package corpus

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/induslogic/isapa/internal/domain"
)

// Repository handles inscription and bigram persistence in corpus.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new corpus repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "corpus").Logger(),
	}
}

// CreateInscription archives a sequence with its verdict.
func (r *Repository) CreateInscription(ins *domain.Inscription) (*domain.Inscription, error) {
	signsJSON, err := json.Marshal(ins.Signs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal signs: %w", err)
	}

	ins.ID = uuid.New().String()
	ins.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO inscriptions (id, signs_json, provenance, status, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(
		query,
		ins.ID,
		string(signsJSON),
		ins.Provenance,
		ins.Status,
		ins.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert inscription: %w", err)
	}

	return ins, nil
}

// GetInscription retrieves one archived inscription. Returns nil if not found.
func (r *Repository) GetInscription(id string) (*domain.Inscription, error) {
	query := `
		SELECT id, signs_json, provenance, status, created_at
		FROM inscriptions
		WHERE id = ?
	`

	ins, err := r.scanInscription(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inscription: %w", err)
	}

	return ins, nil
}

// RecentInscriptions returns the newest inscriptions, most recent first.
func (r *Repository) RecentInscriptions(limit int) ([]domain.Inscription, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, signs_json, provenance, status, created_at
		FROM inscriptions
		ORDER BY created_at DESC
		LIMIT ?
	`

	return r.queryInscriptions(query, limit)
}

// AllInscriptions returns every archived inscription, oldest first.
func (r *Repository) AllInscriptions() ([]domain.Inscription, error) {
	query := `
		SELECT id, signs_json, provenance, status, created_at
		FROM inscriptions
		ORDER BY created_at ASC
	`

	return r.queryInscriptions(query)
}

// CountInscriptions returns the archive size.
func (r *Repository) CountInscriptions() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM inscriptions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count inscriptions: %w", err)
	}
	return n, nil
}

// IncrementBigram adds one observation of source followed by target.
func (r *Repository) IncrementBigram(source, target domain.SignID) error {
	query := `
		INSERT INTO bigrams (source_id, target_id, count)
		VALUES (?, ?, 1)
		ON CONFLICT(source_id, target_id) DO UPDATE SET count = count + 1
	`

	if _, err := r.db.Exec(query, source, target); err != nil {
		return fmt.Errorf("failed to increment bigram %d->%d: %w", source, target, err)
	}

	return nil
}

// ReplaceBigrams atomically swaps the aggregate table for a fresh count set.
func (r *Repository) ReplaceBigrams(bigrams []domain.Bigram) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin bigram rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM bigrams`); err != nil {
		return fmt.Errorf("failed to clear bigrams: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO bigrams (source_id, target_id, count) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare bigram insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bigrams {
		if _, err := stmt.Exec(b.Source, b.Target, b.Count); err != nil {
			return fmt.Errorf("failed to insert bigram %d->%d: %w", b.Source, b.Target, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bigram rebuild: %w", err)
	}

	return nil
}

// AllBigrams returns the aggregate transition counts.
func (r *Repository) AllBigrams() ([]domain.Bigram, error) {
	query := `
		SELECT source_id, target_id, count
		FROM bigrams
		ORDER BY source_id ASC, target_id ASC
	`

	return r.queryBigrams(query)
}

// TopBigrams returns the most frequent transitions.
func (r *Repository) TopBigrams(limit int) ([]domain.Bigram, error) {
	if limit <= 0 {
		limit = 5
	}

	query := `
		SELECT source_id, target_id, count
		FROM bigrams
		ORDER BY count DESC, source_id ASC, target_id ASC
		LIMIT ?
	`

	return r.queryBigrams(query, limit)
}

// BigramsFrom returns the observed transitions out of one sign.
func (r *Repository) BigramsFrom(source domain.SignID) ([]domain.Bigram, error) {
	query := `
		SELECT source_id, target_id, count
		FROM bigrams
		WHERE source_id = ?
		ORDER BY count DESC, target_id ASC
	`

	return r.queryBigrams(query, source)
}

// CountBigrams returns the number of distinct observed transitions.
func (r *Repository) CountBigrams() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM bigrams`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count bigrams: %w", err)
	}
	return n, nil
}

func (r *Repository) queryInscriptions(query string, args ...interface{}) ([]domain.Inscription, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query inscriptions: %w", err)
	}
	defer rows.Close()

	var inscriptions []domain.Inscription
	for rows.Next() {
		ins, err := r.scanInscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inscription: %w", err)
		}
		inscriptions = append(inscriptions, *ins)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inscriptions: %w", err)
	}

	return inscriptions, nil
}

func (r *Repository) queryBigrams(query string, args ...interface{}) ([]domain.Bigram, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bigrams: %w", err)
	}
	defer rows.Close()

	var bigrams []domain.Bigram
	for rows.Next() {
		var b domain.Bigram
		if err := rows.Scan(&b.Source, &b.Target, &b.Count); err != nil {
			return nil, fmt.Errorf("failed to scan bigram: %w", err)
		}
		bigrams = append(bigrams, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bigrams: %w", err)
	}

	return bigrams, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanInscription(row rowScanner) (*domain.Inscription, error) {
	var ins domain.Inscription
	var signsJSON, createdAt string

	err := row.Scan(
		&ins.ID,
		&signsJSON,
		&ins.Provenance,
		&ins.Status,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(signsJSON), &ins.Signs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal signs: %w", err)
	}

	ins.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return &ins, nil
}
