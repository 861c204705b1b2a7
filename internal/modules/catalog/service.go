package catalog

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/induslogic/isapa/internal/domain"
	"github.com/induslogic/isapa/internal/events"
	"github.com/induslogic/isapa/internal/modules/grammar"
)

// Service keeps the persistent sign catalog in sync with the active grammar.
type Service struct {
	repo         *SignRepository
	grammar      *grammar.Grammar
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewService creates a new catalog service
func NewService(repo *SignRepository, g *grammar.Grammar, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		grammar:      g,
		eventManager: eventManager,
		log:          log.With().Str("service", "catalog").Logger(),
	}
}

// SeedFromGrammar upserts every sign of the active grammar into the catalog.
// Safe to run on every start.
func (s *Service) SeedFromGrammar() error {
	signs := s.grammar.Signs()

	for i := range signs {
		if err := s.repo.Upsert(&signs[i]); err != nil {
			return fmt.Errorf("failed to seed sign %d: %w", signs[i].ID, err)
		}
	}

	s.log.Info().
		Int("signs", len(signs)).
		Str("grammar", s.grammar.Name()).
		Msg("Sign catalog seeded")

	s.eventManager.Emit(events.CatalogSeeded, "catalog", map[string]interface{}{
		"signs":   len(signs),
		"grammar": s.grammar.Name(),
	})

	return nil
}

// GetByID returns a cataloged sign, or nil when absent.
func (s *Service) GetByID(id domain.SignID) (*domain.Sign, error) {
	return s.repo.GetByID(id)
}

// All returns the catalog ordered by frequency descending.
func (s *Service) All() ([]domain.Sign, error) {
	return s.repo.All()
}

// ByRole returns cataloged signs carrying a role.
func (s *Service) ByRole(role domain.Role) ([]domain.Sign, error) {
	return s.repo.ByRole(role)
}

// Count returns the catalog size.
func (s *Service) Count() (int, error) {
	return s.repo.Count()
}

// Export bundles the frequency-sorted catalog with the active rule set
// into one document.
type Export struct {
	Grammar string          `json:"grammar"`
	Version string          `json:"version"`
	Signs   []domain.Sign   `json:"signs"`
	Rules   grammar.RuleSet `json:"rules"`
}

// BuildExport assembles the export document.
func (s *Service) BuildExport() (*Export, error) {
	signs, err := s.repo.All()
	if err != nil {
		return nil, fmt.Errorf("failed to build export: %w", err)
	}

	return &Export{
		Grammar: s.grammar.Name(),
		Version: s.grammar.Version(),
		Signs:   signs,
		Rules:   s.grammar.Rules(),
	}, nil
}

// Grammar returns the active grammar.
func (s *Service) Grammar() *grammar.Grammar {
	return s.grammar
}
