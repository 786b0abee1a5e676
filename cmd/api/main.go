package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/rs/cors"

	"github.com/skillswap/backend/internal/auth"
	"github.com/skillswap/backend/internal/catalog"
	"github.com/skillswap/backend/internal/config"
	"github.com/skillswap/backend/internal/exchange"
	"github.com/skillswap/backend/internal/ledger"
	"github.com/skillswap/backend/internal/middleware"
	"github.com/skillswap/backend/internal/notify"
	"github.com/skillswap/backend/internal/router"
	"github.com/skillswap/backend/internal/swap"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("unable to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("cannot reach PostgreSQL, ensure it is running (e.g. docker-compose up -d)", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to PostgreSQL")

	// River migrations
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		slog.Error("failed to create River migrator", "error", err)
		os.Exit(1)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		slog.Error("River migrate up failed", "error", err)
		os.Exit(1)
	}
	slog.Info("River migrations applied")

	// Ledger
	ledgerRepo := ledger.NewRepository(pool)
	ledgerSvc := ledger.NewService(ledgerRepo, ledgerRepo, ledgerRepo)

	// Catalog
	catalogRepo := catalog.NewRepository(pool)
	catalogSvc := catalog.NewService(catalogRepo)

	// Swaps
	swapRepo := swap.NewRepository(pool)
	swapSvc := swap.NewService(swapRepo, catalogSvc)

	// Exchange: insert func is set after the River client exists (breaks init cycle)
	var insertMu sync.Mutex
	var insertFn exchange.InsertNotificationTxFunc
	insertNotification := func(ctx context.Context, tx pgx.Tx, args notify.DeliverNotificationArgs) error {
		insertMu.Lock()
		fn := insertFn
		insertMu.Unlock()
		if fn == nil {
			panic("river insert not wired")
		}
		return fn(ctx, tx, args)
	}

	exchangeRepo := exchange.NewRepository(pool)
	exchangeSvc := exchange.NewService(exchangeRepo, swapSvc, ledgerSvc, catalogSvc, insertNotification)

	// Notification worker
	notifyRepo := notify.NewRepository(pool)
	workers := river.NewWorkers()
	river.AddWorker(workers, notify.NewDeliverNotificationWorker(notifyRepo, logger))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
		},
		Workers: workers,
	})
	if err != nil {
		slog.Error("failed to create River client", "error", err)
		os.Exit(1)
	}

	insertMu.Lock()
	insertFn = func(ctx context.Context, tx pgx.Tx, args notify.DeliverNotificationArgs) error {
		_, err := riverClient.InsertTx(ctx, tx, args, nil)
		return err
	}
	insertMu.Unlock()

	// Auth
	authRepo := auth.NewRepository(pool)
	authSvc := auth.NewService(authRepo, []byte(cfg.JWTSecret))

	handlers := router.Handlers{
		Auth:     auth.NewHandler(authSvc, logger),
		Catalog:  catalog.NewHandler(catalogSvc, logger),
		Ledger:   ledger.NewHandler(ledgerSvc, logger),
		Exchange: exchange.NewHandler(exchangeSvc, logger),
		Swap:     swap.NewHandler(swapSvc, logger),
		Notify:   notify.NewHandler(notifyRepo, logger),
	}

	userAuth := middleware.UserAuth(authSvc, authSvc)
	balanceCheck := middleware.BalanceCheck(ledgerSvc)

	mux := http.NewServeMux()
	mux.Handle("/api/", router.New(handlers, userAuth, balanceCheck))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.AllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(mux)

	// Start River client (delivers notifications)
	riverCtx, stopRiver := context.WithCancel(ctx)
	defer stopRiver()
	go func() {
		if err := riverClient.Start(riverCtx); err != nil && riverCtx.Err() == nil {
			slog.Error("River client stopped", "error", err)
		}
	}()

	serverAddr := "0.0.0.0:" + cfg.Port
	slog.Info("starting HTTP server", "addr", serverAddr, "env", cfg.Env)
	if err := http.ListenAndServe(serverAddr, corsHandler); err != nil {
		slog.Error("HTTP server failed", "error", err)
		os.Exit(1)
	}
}
