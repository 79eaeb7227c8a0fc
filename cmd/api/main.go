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

	"github.com/joho/godotenv"

	"github.com/zhouzirui/recordkeeper/backend/internal/config"
	"github.com/zhouzirui/recordkeeper/backend/internal/demo"
	"github.com/zhouzirui/recordkeeper/backend/internal/handler"
	"github.com/zhouzirui/recordkeeper/backend/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	lg, err := logger.NewLogger(logger.Config{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	svcs := handler.NewServices(lg)
	if cfg.Store.SeedDemo {
		if err := demo.Seed(ctx, svcs); err != nil {
			lg.Fatalf("failed to seed demo records: %v", err)
		}
		lg.Infow("demo records seeded")
	}

	router := handler.NewRouter(svcs, lg, cfg.Store.WatchBuffer)

	startServer(ctx, lg, cfg.Server, router)
}

func startServer(ctx context.Context, lg *logger.Logger, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	lg.Infow("recordkeeper listening", "addr", addr)
	if err := runServer(ctx, srv); err != nil {
		lg.Fatalf("server error: %v", err)
	}
	lg.Infow("recordkeeper stopped")
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
