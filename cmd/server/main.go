package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/studyflash/internal/api"
	"github.com/vytor/studyflash/internal/config"
	"github.com/vytor/studyflash/internal/db"
	"github.com/vytor/studyflash/internal/jobs"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/repository/sqlite"
	"github.com/vytor/studyflash/internal/services"
	"github.com/vytor/studyflash/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	log.Info("StudyFlash server starting")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("progress_worker_count=%d", cfg.ProgressWorkerCount)
	log.Debug("progress_queue_size=%d", cfg.ProgressQueueSize)
	log.Debug("pace_window_days=%d", cfg.PaceWindowDays)
	log.Debug("default_tz_offset_minutes=%d", cfg.DefaultTZOffsetMinutes)
	log.Debug("activity_days=%d", cfg.ActivityDays)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	profileRepo := sqlite.NewProfileRepository(database.DB)
	deckRepo := sqlite.NewDeckRepository(database.DB)
	cardRepo := sqlite.NewFlashcardRepository(database.DB)
	eventRepo := sqlite.NewStudyEventRepository(database.DB)
	progressRepo := sqlite.NewProgressRepository(database.DB)

	profileService := services.NewProfileService(profileRepo)
	deckService := services.NewDeckService(profileRepo, deckRepo)
	progressService := services.NewProgressService(profileService, deckService, cardRepo, eventRepo, progressRepo,
		services.ProgressConfig{
			PaceWindowDays: cfg.PaceWindowDays,
			ActivityDays:   cfg.ActivityDays,
		}, nil)

	progressPool := worker.NewPool(cfg.ProgressWorkerCount, cfg.ProgressQueueSize)
	queue := jobs.NewWorkerQueue(progressPool, progressService)
	flashcardService := services.NewFlashcardService(deckService, cardRepo, queue, nil)

	srv := &api.Server{
		DB:                     database,
		ProfileService:         profileService,
		DeckService:            deckService,
		FlashcardService:       flashcardService,
		ProgressService:        progressService,
		DefaultTZOffsetMinutes: cfg.DefaultTZOffsetMinutes,
	}

	ctx, cancel := context.WithCancel(context.Background())
	progressPool.Start(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping progress pool")
	cancel()
	progressPool.Stop()

	log.Info("StudyFlash server stopped")
}
