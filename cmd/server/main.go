package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/induslogic/isapa/internal/config"
	"github.com/induslogic/isapa/internal/database"
	"github.com/induslogic/isapa/internal/events"
	"github.com/induslogic/isapa/internal/modules/catalog"
	"github.com/induslogic/isapa/internal/modules/corpus"
	corpusjobs "github.com/induslogic/isapa/internal/modules/corpus/jobs"
	"github.com/induslogic/isapa/internal/modules/grammar"
	"github.com/induslogic/isapa/internal/modules/network"
	"github.com/induslogic/isapa/internal/modules/repair"
	"github.com/induslogic/isapa/internal/modules/validation"
	"github.com/induslogic/isapa/internal/scheduler"
	"github.com/induslogic/isapa/internal/server"
	"github.com/induslogic/isapa/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting ISAPA engine")

	// Initialize databases
	catalogDB, err := database.New(cfg.CatalogDBPath())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize catalog database")
	}
	defer catalogDB.Close()

	corpusDB, err := database.New(cfg.CorpusDBPath())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize corpus database")
	}
	defer corpusDB.Close()

	// Apply schemas
	if err := catalogDB.Migrate(catalog.SignsSchema); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate catalog database")
	}
	if err := corpusDB.Migrate(corpus.CorpusSchema); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate corpus database")
	}
	if err := corpusDB.Migrate(validation.ValidationsSchema); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate validations table")
	}

	// Load the grammar pack
	g, err := loadGrammar(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load grammar")
	}

	// Events
	eventManager := events.NewManager(log)
	eventManager.Emit(events.GrammarLoaded, "grammar", map[string]interface{}{
		"name":    g.Name(),
		"version": g.Version(),
		"signs":   g.SignCount(),
	})

	// Core validator
	validator, err := validation.New(g)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build validator")
	}

	// Module services
	catalogService := catalog.NewService(
		catalog.NewSignRepository(catalogDB.Conn(), log), g, eventManager, log)
	if err := catalogService.SeedFromGrammar(); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed sign catalog")
	}

	corpusService := corpus.NewService(
		corpus.NewRepository(corpusDB.Conn(), log), validator, eventManager, log)
	if cfg.SeedCorpus {
		if err := corpusService.SeedTrainingCorpus(); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed training corpus")
		}
	}
	if err := corpusService.LoadModel(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load transition model")
	}

	validationService := validation.NewService(
		validator, validation.NewRepository(corpusDB.Conn(), log), eventManager, log)
	repairEngine := repair.NewEngine(g, corpusService, eventManager, log)
	networkService := network.NewService(g, corpusService, eventManager, log)

	// Initialize scheduler
	sched := scheduler.New(log)
	if err := registerJobs(sched, cfg, corpusService, catalogDB, corpusDB, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to register jobs")
	}
	sched.Start()
	defer sched.Stop()

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:      cfg.Port,
		Log:       log,
		CatalogDB: catalogDB,
		CorpusDB:  corpusDB,
		Config:    cfg,
		DevMode:   cfg.DevMode,

		Scheduler: sched,

		ValidationService: validationService,
		CatalogService:    catalogService,
		CorpusService:     corpusService,
		RepairEngine:      repairEngine,
		NetworkService:    networkService,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// loadGrammar builds the grammar from the configured pack file, falling
// back to the embedded default.
func loadGrammar(cfg *config.Config, log zerolog.Logger) (*grammar.Grammar, error) {
	if cfg.GrammarPackPath == "" {
		log.Info().Msg("Using embedded default grammar pack")
		return grammar.Default()
	}

	loader := grammar.NewLoader(log)
	pack, err := loader.LoadFromFile(cfg.GrammarPackPath)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("path", cfg.GrammarPackPath).
		Str("name", pack.Name).
		Msg("Loaded grammar pack")

	return grammar.FromPack(pack)
}

func registerJobs(
	sched *scheduler.Scheduler,
	cfg *config.Config,
	corpusService *corpus.Service,
	catalogDB, corpusDB *database.DB,
	log zerolog.Logger,
) error {
	if err := sched.AddJob(cfg.CorpusRefreshSchedule, corpusjobs.NewRefreshJob(corpusService, log)); err != nil {
		return err
	}

	if err := sched.AddJob(cfg.HealthCheckSchedule, scheduler.NewHealthCheckJob(catalogDB, corpusDB, log)); err != nil {
		return err
	}

	return nil
}
