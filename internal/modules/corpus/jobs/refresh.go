package jobs

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/induslogic/isapa/internal/modules/corpus"
)

// RefreshJob rebuilds the transition aggregates on a schedule so that the
// model catches up with inscriptions archived since the last pass.
type RefreshJob struct {
	service *corpus.Service
	log     zerolog.Logger
}

// NewRefreshJob creates a new corpus refresh job
func NewRefreshJob(service *corpus.Service, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		service: service,
		log:     log.With().Str("job", "corpus_refresh").Logger(),
	}
}

// Name returns the job name for scheduler logging
func (j *RefreshJob) Name() string {
	return "corpus_refresh"
}

// Run rebuilds the bigram aggregates from the full archive.
func (j *RefreshJob) Run() error {
	start := time.Now()

	if err := j.service.RebuildTransitions(); err != nil {
		j.log.Error().Err(err).Msg("Corpus refresh failed")
		return err
	}

	j.log.Info().
		Dur("duration", time.Since(start)).
		Msg("Corpus refresh completed")

	return nil
}
