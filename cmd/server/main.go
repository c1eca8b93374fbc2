package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/accountio/ledger-service/internal/api"
	"github.com/accountio/ledger-service/internal/config"
	"github.com/accountio/ledger-service/internal/events"
	"github.com/accountio/ledger-service/internal/events/kafka"
	"github.com/accountio/ledger-service/internal/interfaces"
	"github.com/accountio/ledger-service/internal/ledger"
	"github.com/accountio/ledger-service/internal/pagination"
	"github.com/accountio/ledger-service/internal/storage/memory"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	store := memory.NewAccountStore(cfg.AccountIDFloor, cfg.TransactionIDFloor)

	pager, err := pagination.New(cfg.CursorSalt, store.MinID())
	if err != nil {
		logger.Error("failed to initialize paginator", "error", err)
		os.Exit(1)
	}

	var publisher interfaces.EventPublisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := kafka.NewPublisher(cfg.KafkaBrokers)
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				logger.Error("failed to close kafka publisher", "error", err)
			}
		}()
		publisher = kafkaPublisher
		logger.Info("kafka publisher enabled", "brokers", cfg.KafkaBrokers)
	}

	accountLedger := ledger.New(store, pager, publisher, logger)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(accountLedger, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	accountLedger.Close()
}
