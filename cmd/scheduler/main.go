package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/tutorly-app/scheduler/internal/app"
	"github.com/tutorly-app/scheduler/internal/config"
	"github.com/tutorly-app/scheduler/internal/controller"
	"github.com/tutorly-app/scheduler/internal/repository"
	"github.com/tutorly-app/scheduler/internal/schedule"
	"github.com/tutorly-app/scheduler/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, "migrations")
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	bookingRepo := repository.NewBookingRepository(pool)
	noteRepo := repository.NewCalendarNoteRepository(pool)
	participantRepo := repository.NewParticipantRepository(pool)

	index := schedule.NewConflictIndex()
	locks := schedule.NewKeyLocks(cfg.LockWait)

	if err := service.RebuildIndex(ctx, index, bookingRepo, noteRepo, logger); err != nil {
		logger.Fatal("Failed to rebuild conflict index", zap.Error(err))
	}

	bookingService := service.NewBookingService(bookingRepo, participantRepo, index, locks, logger)
	availabilityService := service.NewAvailabilityService(participantRepo, index, logger)
	noteService := service.NewCalendarNoteService(noteRepo, participantRepo, index, locks, logger)

	router := controller.NewRouter(
		controller.NewBookingHandler(bookingService, availabilityService, logger),
		controller.NewCalendarNoteHandler(noteService, logger),
		logger,
		cfg.Environment,
	)

	server := app.NewServer(cfg.HTTPAddr, router, logger)

	logger.Info("Starting scheduler",
		zap.String("environment", cfg.Environment),
		zap.String("addr", cfg.HTTPAddr),
	)

	if err := server.Run(ctx); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}

	logger.Info("Server stopped")
}
