package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/quantum-synth/internal/config"
	"github.com/aristath/quantum-synth/internal/database"
	"github.com/aristath/quantum-synth/internal/events"
	"github.com/aristath/quantum-synth/internal/modules/quantum"
	"github.com/aristath/quantum-synth/internal/modules/synth"
	"github.com/aristath/quantum-synth/internal/scheduler"
	"github.com/aristath/quantum-synth/internal/server"
	"github.com/aristath/quantum-synth/pkg/logger"
)

// eventHistoryKeep is how many persisted events the hourly prune retains.
const eventHistoryKeep = 1000

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{Level: "info", Pretty: true})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting Quantum Synth")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Quantum register with a seedable sampler. Seed 0 draws entropy from
	// the clock; anything else gives reproducible measurements.
	sampler := quantum.NewCategoricalSampler(cfg.RandomSeed)
	register, err := quantum.NewRegister(cfg.NumQubits, sampler, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize quantum register")
	}

	eventManager := events.NewManager(log)
	repo := synth.NewRepository(db.Conn(), log)

	service, err := synth.NewService(synth.Config{
		SampleRate:              cfg.SampleRate,
		DefaultDuration:         cfg.DefaultDuration,
		MeasurementShots:        cfg.MeasurementShots,
		MinProbabilityThreshold: cfg.MinProbabilityThreshold,
		EnableEnvelope:          cfg.EnableEnvelope,
		MasterVolume:            cfg.MasterVolume,
	}, register, repo, eventManager, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize synthesizer service")
	}

	// Initialize scheduler
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	// Register background jobs
	if err := registerJobs(sched, db, repo, eventManager, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to register jobs")
	}

	synthHandler := synth.NewHandler(service, repo, log)
	systemHandler := server.NewSystemHandlers(service, repo, cfg.DatabasePath, log)

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:          cfg.Port,
		Log:           log,
		DB:            db,
		Config:        cfg,
		DevMode:       cfg.DevMode,
		SynthHandler:  synthHandler,
		SystemHandler: systemHandler,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Int("qubits", cfg.NumQubits).Msg("Server started successfully")

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

func registerJobs(sched *scheduler.Scheduler, db *database.DB, repo *synth.Repository, eventManager *events.Manager, log zerolog.Logger) error {
	if err := sched.AddJob("@hourly", scheduler.NewPruneEventsJob(repo, eventManager, eventHistoryKeep, log)); err != nil {
		return err
	}
	return sched.AddJob("@every 6h", scheduler.NewIntegrityCheckJob(db, log))
}
