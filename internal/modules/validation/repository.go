package validation

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repository handles validation archive persistence in corpus.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new validation repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "validations").Logger(),
	}
}

// Create archives a validation run and assigns it an ID.
func (r *Repository) Create(rec *Record) (*Record, error) {
	signsJSON, err := json.Marshal(rec.Signs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal signs: %w", err)
	}
	reasonsJSON, err := json.Marshal(rec.Result.Reasons)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reasons: %w", err)
	}
	directionJSON, err := json.Marshal(rec.Result.DirectionLog)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal direction log: %w", err)
	}
	itemsJSON, err := json.Marshal(rec.Result.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal items: %w", err)
	}

	rec.ID = uuid.New().String()
	rec.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO validations (
			id, signs_json, status, reasons_json, direction_log_json, items_json,
			processed, grammar_name, grammar_version, collect_all, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(
		query,
		rec.ID,
		string(signsJSON),
		string(rec.Result.Status),
		string(reasonsJSON),
		string(directionJSON),
		string(itemsJSON),
		rec.Result.Processed,
		rec.GrammarName,
		rec.GrammarVersion,
		boolToInt(rec.CollectAll),
		rec.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert validation: %w", err)
	}

	return rec, nil
}

// GetByID retrieves an archived validation. Returns nil if not found.
func (r *Repository) GetByID(id string) (*Record, error) {
	query := `
		SELECT id, signs_json, status, reasons_json, direction_log_json, items_json,
		       processed, grammar_name, grammar_version, collect_all, created_at
		FROM validations
		WHERE id = ?
	`

	rec, err := r.scanRecord(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get validation: %w", err)
	}

	return rec, nil
}

// Recent returns the newest validation runs, most recent first.
func (r *Repository) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, signs_json, status, reasons_json, direction_log_json, items_json,
		       processed, grammar_name, grammar_version, collect_all, created_at
		FROM validations
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query validations: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan validation: %w", err)
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating validations: %w", err)
	}

	return records, nil
}

// CountByStatus returns the number of archived runs per status.
func (r *Repository) CountByStatus() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT status, COUNT(*) FROM validations GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count validations: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[status] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating counts: %w", err)
	}

	return counts, nil
}

// Count returns the total number of archived runs.
func (r *Repository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM validations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count validations: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var signsJSON, status, reasonsJSON, directionJSON, itemsJSON, createdAt string
	var collectAll int

	err := row.Scan(
		&rec.ID,
		&signsJSON,
		&status,
		&reasonsJSON,
		&directionJSON,
		&itemsJSON,
		&rec.Result.Processed,
		&rec.GrammarName,
		&rec.GrammarVersion,
		&collectAll,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(signsJSON), &rec.Signs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal signs: %w", err)
	}
	if err := json.Unmarshal([]byte(reasonsJSON), &rec.Result.Reasons); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reasons: %w", err)
	}
	if err := json.Unmarshal([]byte(directionJSON), &rec.Result.DirectionLog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal direction log: %w", err)
	}
	if err := json.Unmarshal([]byte(itemsJSON), &rec.Result.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal items: %w", err)
	}

	rec.Result.Status = Status(status)
	rec.CollectAll = collectAll == 1
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
