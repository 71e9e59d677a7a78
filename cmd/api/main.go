package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joonsp/bankcore/internal/config"
	"github.com/joonsp/bankcore/internal/handler"
	"github.com/joonsp/bankcore/internal/logging"
	"github.com/joonsp/bankcore/internal/middleware"
	"github.com/joonsp/bankcore/internal/notify"
	"github.com/joonsp/bankcore/internal/repository"
	"github.com/joonsp/bankcore/internal/service"
	"github.com/joonsp/bankcore/internal/service/movement"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("bankcore-api", cfg.LogLevel, cfg.AppEnv)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	cancel()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	accounts := repository.NewAccountRepository(db)
	ledger := repository.NewLedgerRepository(db)
	members := repository.NewMemberRepository(db)

	var notifier notify.Notifier
	if cfg.NotifyWebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.NotifyWebhookURL)
	} else {
		notifier = notify.NewLogNotifier()
	}

	movements := movement.NewService(accounts, ledger, members, notifier, db)
	accountSvc := service.NewAccountService(accounts, members)

	movementHandler := handler.NewMovementHandler(movements, cfg.DefaultPageSize, cfg.MaxPageSize)
	accountHandler := handler.NewAccountHandler(accountSvc)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handler.Health)

	mux.HandleFunc("POST /api/v1/deposits", movementHandler.Deposit)
	mux.HandleFunc("GET /api/v1/deposits", movementHandler.DepositsByDateRange)
	mux.HandleFunc("POST /api/v1/transfers", movementHandler.Transfer)
	mux.HandleFunc("GET /api/v1/balance/total", movementHandler.TotalBalance)

	mux.HandleFunc("POST /api/v1/accounts", accountHandler.Open)
	mux.HandleFunc("GET /api/v1/accounts/{id}", accountHandler.Get)
	mux.HandleFunc("DELETE /api/v1/accounts/{id}", accountHandler.Close)
	mux.HandleFunc("GET /api/v1/accounts/{id}/deposits", movementHandler.DepositsByAccount)
	mux.HandleFunc("GET /api/v1/accounts/{id}/transfers", movementHandler.TransfersByAccount)
	mux.HandleFunc("GET /api/v1/members/{id}/accounts", accountHandler.ListByMember)

	root := middleware.Tracing(middleware.Logging(middleware.Recovery(mux)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
