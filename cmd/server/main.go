package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/janisto/greeting-server/internal/config"
	"github.com/janisto/greeting-server/internal/http/router"
	applog "github.com/janisto/greeting-server/internal/platform/logging"
	"github.com/janisto/greeting-server/internal/server"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args)
	stop()

	if syncErr := applog.Sync(); syncErr != nil {
		fmt.Fprintf(os.Stderr, "logger sync error: %v\n", syncErr)
	}
	if err != nil {
		os.Exit(1)
	}
}

// run serves until ctx is cancelled. Configuration and bind failures are
// logged and returned without retry.
func run(ctx context.Context, args []string) error {
	if err := applog.Err(); err != nil {
		applog.LogError(ctx, "logger init error", err)
	}

	cfg, err := config.Load(args)
	if err != nil {
		applog.LogError(ctx, "invalid configuration", err)
		return err
	}

	srv := server.New(cfg.Addr(), router.New(Version))
	if err := srv.Start(ctx); err != nil {
		applog.LogError(ctx, "listen failed", err, zap.String("addr", cfg.Addr()))
		return err
	}

	select {
	case err, ok := <-srv.Errors():
		if ok && err != nil {
			applog.LogError(ctx, "serve failed", err, zap.String("addr", cfg.Addr()))
			return err
		}
		return nil
	case <-ctx.Done():
		applog.LogInfo(context.Background(), "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		applog.LogError(shutdownCtx, "server shutdown error", err)
		return err
	}
	applog.LogInfo(shutdownCtx, "server exited")
	return nil
}
