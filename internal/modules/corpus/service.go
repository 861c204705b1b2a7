package corpus

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/induslogic/isapa/internal/domain"
	"github.com/induslogic/isapa/internal/events"
	"github.com/induslogic/isapa/internal/modules/validation"
	"github.com/induslogic/isapa/pkg/formulas"
)

// TrainingCorpus is the bootstrap inscription set, archived once on first
// start under the "training-corpus" provenance.
var TrainingCorpus = [][]domain.SignID{
	{59, 99, 342},
	{211, 99, 342},
	{123, 456, 342},
	{59, 789, 342},
	{211, 789, 342},
	{65, 99, 343},
}

// Service maintains the inscription archive and the transition model
// derived from it.
type Service struct {
	repo         *Repository
	validator    *validation.Validator
	eventManager *events.Manager
	log          zerolog.Logger

	mu    sync.RWMutex
	model *TransitionModel
}

// NewService creates a new corpus service
func NewService(repo *Repository, validator *validation.Validator, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		validator:    validator,
		eventManager: eventManager,
		log:          log.With().Str("service", "corpus").Logger(),
		model:        NewTransitionModel(),
	}
}

// LoadModel builds the in-memory transition model from the persisted
// bigram aggregates. Called on startup and after every aggregate change.
func (s *Service) LoadModel() error {
	bigrams, err := s.repo.AllBigrams()
	if err != nil {
		return fmt.Errorf("failed to load transition model: %w", err)
	}

	s.mu.Lock()
	s.model = FromCounts(bigrams)
	s.mu.Unlock()

	return nil
}

// Model returns the current transition model snapshot.
func (s *Service) Model() *TransitionModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// ArchiveInscription validates a sequence in collect-all mode, stores it
// with its verdict and folds its adjacencies into the bigram aggregates.
func (s *Service) ArchiveInscription(signs []domain.SignID, provenance string) (*domain.Inscription, error) {
	if len(signs) == 0 {
		return nil, fmt.Errorf("inscription must contain at least one sign")
	}

	result := s.validator.ValidateAll(signs)

	ins := &domain.Inscription{
		Signs:      signs,
		Provenance: provenance,
		Status:     string(result.Status),
	}

	ins, err := s.repo.CreateInscription(ins)
	if err != nil {
		return nil, fmt.Errorf("failed to archive inscription: %w", err)
	}

	for _, b := range ExtractBigrams(signs) {
		if err := s.repo.IncrementBigram(b.Source, b.Target); err != nil {
			return nil, err
		}
	}

	if err := s.LoadModel(); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("id", ins.ID).
		Str("provenance", provenance).
		Str("status", ins.Status).
		Int("signs", len(signs)).
		Msg("Inscription archived")

	s.eventManager.Emit(events.InscriptionArchived, "corpus", map[string]interface{}{
		"id":         ins.ID,
		"provenance": provenance,
		"status":     ins.Status,
		"signs":      len(signs),
	})

	return ins, nil
}

// RebuildTransitions recomputes the bigram aggregates from every archived
// inscription and reloads the model.
func (s *Service) RebuildTransitions() error {
	inscriptions, err := s.repo.AllInscriptions()
	if err != nil {
		return fmt.Errorf("failed to rebuild transitions: %w", err)
	}

	sequences := make([][]domain.SignID, 0, len(inscriptions))
	for _, ins := range inscriptions {
		sequences = append(sequences, ins.Signs)
	}

	bigrams := AggregateBigrams(sequences)
	if err := s.repo.ReplaceBigrams(bigrams); err != nil {
		return err
	}

	if err := s.LoadModel(); err != nil {
		return err
	}

	s.log.Info().
		Int("inscriptions", len(inscriptions)).
		Int("bigrams", len(bigrams)).
		Msg("Transition aggregates rebuilt")

	s.eventManager.Emit(events.CorpusRebuilt, "corpus", map[string]interface{}{
		"inscriptions": len(inscriptions),
		"bigrams":      len(bigrams),
	})

	return nil
}

// SeedTrainingCorpus archives the bootstrap tablets when the archive is
// empty. Safe to run on every start.
func (s *Service) SeedTrainingCorpus() error {
	count, err := s.repo.CountInscriptions()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, signs := range TrainingCorpus {
		if _, err := s.ArchiveInscription(signs, "training-corpus"); err != nil {
			return fmt.Errorf("failed to seed training corpus: %w", err)
		}
	}

	s.log.Info().Int("inscriptions", len(TrainingCorpus)).Msg("Training corpus seeded")

	s.eventManager.Emit(events.CorpusSeeded, "corpus", map[string]interface{}{
		"inscriptions": len(TrainingCorpus),
	})

	return nil
}

// GetInscription returns one archived inscription, or nil when absent.
func (s *Service) GetInscription(id string) (*domain.Inscription, error) {
	return s.repo.GetInscription(id)
}

// RecentInscriptions returns the newest archive entries.
func (s *Service) RecentInscriptions(limit int) ([]domain.Inscription, error) {
	return s.repo.RecentInscriptions(limit)
}

// Bigrams returns the persisted aggregate transition counts.
func (s *Service) Bigrams() ([]domain.Bigram, error) {
	return s.repo.AllBigrams()
}

// Summary describes the archived corpus.
type Summary struct {
	Inscriptions  int             `json:"inscriptions"`
	DistinctSigns int             `json:"distinct_signs"`
	Bigrams       int             `json:"bigrams"`
	MeanLength    float64         `json:"mean_length"`
	StdDevLength  float64         `json:"stddev_length"`
	SignEntropy   float64         `json:"sign_entropy"`
	TopBigrams    []domain.Bigram `json:"top_bigrams"`
}

// Summarize computes corpus-level statistics.
func (s *Service) Summarize() (*Summary, error) {
	inscriptions, err := s.repo.AllInscriptions()
	if err != nil {
		return nil, fmt.Errorf("failed to summarize corpus: %w", err)
	}

	lengths := make([]float64, 0, len(inscriptions))
	signCounts := make(map[domain.SignID]float64)
	for _, ins := range inscriptions {
		lengths = append(lengths, float64(len(ins.Signs)))
		for _, id := range ins.Signs {
			signCounts[id]++
		}
	}

	counts := make([]float64, 0, len(signCounts))
	for _, c := range signCounts {
		counts = append(counts, c)
	}

	bigramCount, err := s.repo.CountBigrams()
	if err != nil {
		return nil, err
	}

	top, err := s.repo.TopBigrams(5)
	if err != nil {
		return nil, err
	}
	if top == nil {
		top = []domain.Bigram{}
	}

	return &Summary{
		Inscriptions:  len(inscriptions),
		DistinctSigns: len(signCounts),
		Bigrams:       bigramCount,
		MeanLength:    formulas.Mean(lengths),
		StdDevLength:  formulas.StdDev(lengths),
		SignEntropy:   formulas.Entropy(counts),
		TopBigrams:    top,
	}, nil
}
