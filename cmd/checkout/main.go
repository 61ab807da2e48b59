// Package main запускает HTTP-сервер сервиса покупки биткоина.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bitnaira/checkout-system/internal/audit"
	"github.com/bitnaira/checkout-system/internal/config"
	"github.com/bitnaira/checkout-system/internal/gateway"
	"github.com/bitnaira/checkout-system/internal/handler"
	"github.com/bitnaira/checkout-system/internal/middleware"
	"github.com/bitnaira/checkout-system/internal/model"
	"github.com/bitnaira/checkout-system/internal/pricefeed"
	"github.com/bitnaira/checkout-system/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	auditLog, err := audit.Open(cfg.TransactionLogPath)
	if err != nil {
		sugar.Fatalw("transaction log error", "error", err.Error())
	}
	defer auditLog.Close()

	feedClient := pricefeed.NewClient(cfg.PriceFeedURL())
	poller := pricefeed.NewPoller(feedClient, model.SettlementCurrency, cfg.PricePollInterval, logger)

	gatewayClient := gateway.NewClient(cfg.GatewayURL(), cfg.MerchantSecretKey)

	svc := service.NewService(gatewayClient, feedClient, auditLog, cfg.RedirectURL, logger)

	signatureMiddleware := middleware.NewSignatureMiddleware(cfg.WebhookSecretHash)
	h := handler.NewHandler(svc, poller, logger, signatureMiddleware)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск фонового опроса фида цен
	g.Go(func() error {
		poller.Run(ctx)
		return nil
	})

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting checkout server",
			"addr", cfg.RunAddress,
			"environment", cfg.Environment,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
