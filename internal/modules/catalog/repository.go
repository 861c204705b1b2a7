package catalog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/induslogic/isapa/internal/domain"
)

// SignRepository handles sign catalog persistence in catalog.db.
type SignRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSignRepository creates a new sign repository
func NewSignRepository(db *sql.DB, log zerolog.Logger) *SignRepository {
	return &SignRepository{
		db:  db,
		log: log.With().Str("repo", "signs").Logger(),
	}
}

// GetByID retrieves a sign by catalog number. Returns nil if not found.
func (r *SignRepository) GetByID(id domain.SignID) (*domain.Sign, error) {
	query := `
		SELECT id, name, role, frequency, description, last_updated
		FROM signs
		WHERE id = ?
	`

	sign, err := r.scanSign(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sign %d: %w", id, err)
	}

	return sign, nil
}

// All returns every sign ordered by corpus frequency, most attested first.
func (r *SignRepository) All() ([]domain.Sign, error) {
	query := `
		SELECT id, name, role, frequency, description, last_updated
		FROM signs
		ORDER BY frequency DESC, id ASC
	`

	return r.querySigns(query)
}

// ByRole returns signs carrying the given role, most attested first.
func (r *SignRepository) ByRole(role domain.Role) ([]domain.Sign, error) {
	query := `
		SELECT id, name, role, frequency, description, last_updated
		FROM signs
		WHERE role = ?
		ORDER BY frequency DESC, id ASC
	`

	return r.querySigns(query, string(role))
}

// Upsert inserts or updates a catalog entry.
func (r *SignRepository) Upsert(sign *domain.Sign) error {
	query := `
		INSERT INTO signs (id, name, role, frequency, description, last_updated)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			role = excluded.role,
			frequency = excluded.frequency,
			description = excluded.description,
			last_updated = excluded.last_updated
	`

	now := time.Now().UTC().Format(time.RFC3339)

	_, err := r.db.Exec(
		query,
		sign.ID,
		sign.Name,
		string(sign.Role),
		sign.Frequency,
		sign.Description,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert sign %d: %w", sign.ID, err)
	}

	return nil
}

// Count returns the number of cataloged signs.
func (r *SignRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM signs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count signs: %w", err)
	}
	return n, nil
}

func (r *SignRepository) querySigns(query string, args ...interface{}) ([]domain.Sign, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query signs: %w", err)
	}
	defer rows.Close()

	var signs []domain.Sign
	for rows.Next() {
		sign, err := r.scanSign(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sign: %w", err)
		}
		signs = append(signs, *sign)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating signs: %w", err)
	}

	return signs, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *SignRepository) scanSign(row rowScanner) (*domain.Sign, error) {
	var sign domain.Sign
	var role, lastUpdated string

	err := row.Scan(
		&sign.ID,
		&sign.Name,
		&role,
		&sign.Frequency,
		&sign.Description,
		&lastUpdated,
	)
	if err != nil {
		return nil, err
	}

	sign.Role = domain.Role(role)
	sign.LastUpdated, _ = time.Parse(time.RFC3339, lastUpdated)

	return &sign, nil
}
