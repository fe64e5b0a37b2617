// Command mockshop serves the in-memory storefront with the demo catalog
// loaded, for trying the shop CLI without the real backend.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/safar/supershop/internal/config"
	"github.com/safar/supershop/internal/logger"
	"github.com/safar/supershop/internal/mockapi"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	lg, err := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		log.Fatalf("Build logger: %v", err)
	}
	defer lg.Sync()

	shop := mockapi.New(mockapi.WithLogger(lg))
	mockapi.SeedDemo(shop)

	server := &http.Server{
		Addr:         ":" + cfg.Mock.Port,
		Handler:      shop.Handler(),
		ReadTimeout:  cfg.Mock.ReadTimeout,
		WriteTimeout: cfg.Mock.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("shutdown", zap.Error(err))
		}
	}()

	lg.Info("mock storefront starting", zap.String("port", cfg.Mock.Port))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Fatal("server error", zap.Error(err))
	}
	lg.Info("mock storefront stopped")
}
