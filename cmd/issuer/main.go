package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cardmint/cardmint/internal/application"
	"github.com/cardmint/cardmint/internal/application/services"
	"github.com/cardmint/cardmint/internal/config"
	"github.com/cardmint/cardmint/internal/domain"
	"github.com/cardmint/cardmint/internal/infrastructure/persistence/memory"
	"github.com/cardmint/cardmint/internal/infrastructure/persistence/postgres"
	"github.com/cardmint/cardmint/internal/interfaces/rest/handlers"
	"github.com/cardmint/cardmint/internal/interfaces/rest/middleware"
)

func main() {
	cfg, err := config.LoadIssuerConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting issuer service",
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Driver,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()

	var (
		cards  application.CardRegistry
		ledger application.TransactionLedger
		bins   application.BINRegistry
	)
	switch cfg.Storage.Driver {
	case "postgres":
		db, err := postgres.Connect(ctx, &cfg.Database, logger)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		cards = postgres.NewCardRepository(db)
		ledger = postgres.NewLedgerRepository(db)
		bins = postgres.NewBINRepository(db)
	default:
		cards = memory.NewCardStore()
		ledger = memory.NewLedger()
		bins = memory.NewBINStore()
	}

	authorizeService := services.NewAuthorizeService(cards, ledger, services.AuthorizeConfig{
		PreflagFraud:      cfg.Authorization.PreflagFraud,
		VelocityWindow:    cfg.Authorization.VelocityWindow,
		MaxPerWindow:      cfg.Authorization.MaxPerWindow,
		MaxCVVAttempts:    cfg.Authorization.MaxCVVAttempts,
		MaxFailed:         cfg.Authorization.MaxFailed,
		RiskThreshold:     cfg.Risk.Threshold,
		HighRiskCountries: cfg.Risk.HighRiskCountries,
	}, logger)

	issueService := services.NewIssueService(bins, cards, ledger, services.IssueConfig{
		InitialStatus: domain.CardStatus(cfg.Issuing.InitialStatus),
		ExpiryYears:   cfg.Issuing.ExpiryYears,
	}, logger)

	queryService := services.NewQueryService(ledger)

	h := handlers.NewHandlers(authorizeService, issueService, queryService, logger)

	handler := http.Handler(h.Routes())
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Timeout(cfg.Server.ReadTimeout)(handler)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
