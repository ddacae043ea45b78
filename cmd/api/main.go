package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/rs/cors"

	"github.com/taskhive/backend/internal/auth"
	"github.com/taskhive/backend/internal/config"
	"github.com/taskhive/backend/internal/db"
	"github.com/taskhive/backend/internal/ledger"
	"github.com/taskhive/backend/internal/payments"
	"github.com/taskhive/backend/internal/payouts"
	"github.com/taskhive/backend/internal/router"
	"github.com/taskhive/backend/internal/submissions"
	"github.com/taskhive/backend/internal/tasks"
	"github.com/taskhive/backend/internal/uploads"
	"github.com/taskhive/backend/internal/withdrawals"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Unable to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("Cannot reach PostgreSQL (connection refused or invalid). Ensure Postgres is running, e.g. docker-compose up -d", "error", err)
		os.Exit(1)
	}
	slog.Info("Connected to PostgreSQL database")

	// Schema migrations
	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		slog.Error("Schema migration failed", "error", err)
		os.Exit(1)
	}

	// River migrations
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		slog.Error("Failed to create River migrator", "error", err)
		os.Exit(1)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		slog.Error("River migrate up failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Migrations applied")

	// Ledger
	ledgerRepo := ledger.NewRepository(pool)
	ledgerSvc := ledger.NewService(ledgerRepo)
	ledgerHandler := ledger.NewHandler(ledgerSvc, logger)

	// Tasks
	taskRepo := tasks.NewRepository(pool)
	taskSvc := tasks.NewService(taskRepo)
	taskHandler := tasks.NewHandler(taskSvc, logger)

	// Submissions + review workflow
	uploadStore, err := uploads.NewStore(cfg.UploadDir)
	if err != nil {
		slog.Error("Failed to init upload store", "error", err)
		os.Exit(1)
	}
	submissionRepo := submissions.NewRepository(pool)
	submissionSvc := submissions.NewService(submissionRepo, submissionRepo, taskRepo, ledgerSvc)
	submissionHandler := submissions.NewHandler(submissionSvc, uploadStore, logger)

	// Withdrawals + payout worker
	withdrawalRepo := withdrawals.NewRepository(pool)

	workers := river.NewWorkers()
	river.AddWorker(workers, payouts.NewProcessWithdrawalWorker(withdrawalRepo, logger))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
		},
		Workers: workers,
	})
	if err != nil {
		slog.Error("Failed to create River client", "error", err)
		os.Exit(1)
	}

	enqueuePayout := func(ctx context.Context, tx pgx.Tx, args payouts.ProcessWithdrawalArgs) error {
		_, err := riverClient.InsertTx(ctx, tx, args, nil)
		return err
	}
	withdrawalSvc := withdrawals.NewService(withdrawalRepo, ledgerSvc, enqueuePayout)
	withdrawalHandler := withdrawals.NewHandler(withdrawalSvc, logger)

	// Payments
	paymentRepo := payments.NewRepository(pool)
	paymentSvc := payments.NewService(paymentRepo, ledgerSvc, cfg.CheckoutBaseURL)
	paymentHandler := payments.NewHandler(paymentSvc, logger)

	// Auth
	authRepo := auth.NewRepository(pool)
	authSvc := auth.NewService(authRepo, cfg.JWTSecret)
	authHandler := auth.NewHandler(authSvc, logger)

	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		if err := authSvc.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			slog.Error("Failed to ensure bootstrap admin", "error", err)
			os.Exit(1)
		}
	}

	handler := router.New(authSvc, authHandler, taskHandler, submissionHandler, withdrawalHandler, paymentHandler, ledgerHandler, cfg.UploadDir)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(handler)

	// Start River client (processes payout jobs)
	riverCtx, stopRiver := context.WithCancel(ctx)
	defer stopRiver()
	go func() {
		if err := riverClient.Start(riverCtx); err != nil && riverCtx.Err() == nil {
			slog.Error("River client stopped", "error", err)
		}
	}()

	serverAddr := "0.0.0.0:" + cfg.Port
	slog.Info("Starting HTTP server", "addr", serverAddr)
	if err := http.ListenAndServe(serverAddr, corsHandler); err != nil {
		slog.Error("HTTP server failed", "error", err)
		os.Exit(1)
	}
}
