package scheduler

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/induslogic/isapa/internal/database"
)

// HealthCheckJob verifies database integrity and reports table sizes.
type HealthCheckJob struct {
	log       zerolog.Logger
	catalogDB *database.DB
	corpusDB  *database.DB
}

// NewHealthCheckJob creates a new health check job
func NewHealthCheckJob(catalogDB, corpusDB *database.DB, log zerolog.Logger) *HealthCheckJob {
	return &HealthCheckJob{
		log:       log.With().Str("job", "health_check").Logger(),
		catalogDB: catalogDB,
		corpusDB:  corpusDB,
	}
}

// Name returns the job name
func (j *HealthCheckJob) Name() string {
	return "health_check"
}

// Run executes the health check
func (j *HealthCheckJob) Run() error {
	j.log.Info().Msg("Starting database health check")
	startTime := time.Now()

	databases := map[string]*database.DB{
		"catalog": j.catalogDB,
		"corpus":  j.corpusDB,
	}

	for name, db := range databases {
		if db == nil {
			j.log.Warn().Str("database", name).Msg("Database not initialized, skipping")
			continue
		}

		if err := j.checkIntegrity(name, db.Conn()); err != nil {
			j.log.Error().Err(err).Str("database", name).Msg("Database integrity check failed")
			return err
		}

		j.checkWALCheckpoint(name, db.Conn())
	}

	j.reportCounts()

	j.log.Info().
		Dur("duration", time.Since(startTime)).
		Msg("Health check completed")

	return nil
}

// checkIntegrity runs SQLite's PRAGMA integrity_check
func (j *HealthCheckJob) checkIntegrity(name string, db *sql.DB) error {
	var result string
	err := db.QueryRow("PRAGMA integrity_check").Scan(&result)
	if err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}

	if result != "ok" {
		return fmt.Errorf("database %s integrity check returned: %s", name, result)
	}

	j.log.Debug().Str("database", name).Msg("Database integrity OK")
	return nil
}

// checkWALCheckpoint monitors WAL checkpoint status
func (j *HealthCheckJob) checkWALCheckpoint(name string, db *sql.DB) {
	var mode, busy, log, checkpointed int
	err := db.QueryRow("PRAGMA wal_checkpoint(PASSIVE)").Scan(&mode, &busy, &log, &checkpointed)
	if err != nil {
		j.log.Warn().
			Err(err).
			Str("database", name).
			Msg("Failed to check WAL checkpoint")
		return
	}

	if log > 1000 {
		j.log.Warn().
			Str("database", name).
			Int("wal_frames", log).
			Int("checkpointed", checkpointed).
			Msg("WAL file is large, checkpoint may be needed")
	} else {
		j.log.Debug().
			Str("database", name).
			Int("wal_frames", log).
			Msg("WAL checkpoint status OK")
	}
}

// reportCounts logs the main table sizes
func (j *HealthCheckJob) reportCounts() {
	tables := []struct {
		db    *database.DB
		name  string
		table string
	}{
		{j.catalogDB, "catalog", "signs"},
		{j.corpusDB, "corpus", "inscriptions"},
		{j.corpusDB, "corpus", "bigrams"},
		{j.corpusDB, "corpus", "validations"},
	}

	for _, t := range tables {
		if t.db == nil {
			continue
		}

		var n int
		if err := t.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", t.table)).Scan(&n); err != nil {
			j.log.Warn().
				Err(err).
				Str("database", t.name).
				Str("table", t.table).
				Msg("Failed to count rows")
			continue
		}

		j.log.Debug().
			Str("database", t.name).
			Str("table", t.table).
			Int("rows", n).
			Msg("Table size")
	}
}
