package validation

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/induslogic/isapa/internal/domain"
	"github.com/induslogic/isapa/internal/events"
)

// Service runs validations and archives the receipts.
type Service struct {
	validator    *Validator
	repo         *Repository
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewService creates a new validation service
func NewService(validator *Validator, repo *Repository, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		validator:    validator,
		repo:         repo,
		eventManager: eventManager,
		log:          log.With().Str("service", "validation").Logger(),
	}
}

// Run validates a sequence, archives the outcome and returns the record.
// With collectAll set, recoverable violations are gathered instead of
// halting at the first one.
func (s *Service) Run(signs []domain.SignID, collectAll bool) (*Record, error) {
	var result Result
	if collectAll {
		result = s.validator.ValidateAll(signs)
	} else {
		result = s.validator.Validate(signs)
	}

	g := s.validator.Grammar()
	rec := &Record{
		Signs:          signs,
		Result:         result,
		GrammarName:    g.Name(),
		GrammarVersion: g.Version(),
		CollectAll:     collectAll,
	}

	rec, err := s.repo.Create(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to archive validation: %w", err)
	}

	s.log.Info().
		Str("id", rec.ID).
		Str("status", string(result.Status)).
		Int("signs", len(signs)).
		Int("reasons", len(result.Reasons)).
		Msg("Validation completed")

	s.eventManager.Emit(events.ValidationCompleted, "validation", map[string]interface{}{
		"id":      rec.ID,
		"status":  string(result.Status),
		"signs":   len(signs),
		"reasons": len(result.Reasons),
	})

	return rec, nil
}

// Check validates a sequence without archiving it.
func (s *Service) Check(signs []domain.SignID, collectAll bool) Result {
	if collectAll {
		return s.validator.ValidateAll(signs)
	}
	return s.validator.Validate(signs)
}

// GetByID returns an archived validation run, or nil when absent.
func (s *Service) GetByID(id string) (*Record, error) {
	return s.repo.GetByID(id)
}

// Recent returns the newest archived runs.
func (s *Service) Recent(limit int) ([]Record, error) {
	return s.repo.Recent(limit)
}

// Stats summarizes the archive by receipt status.
func (s *Service) Stats() (map[string]int, error) {
	return s.repo.CountByStatus()
}
