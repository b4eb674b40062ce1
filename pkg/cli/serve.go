package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/appdeck/pkg/cli/config"
	controller "github.com/m-mizutani/appdeck/pkg/controller/http"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg config.Server
		deckCfg   deckConfig
	)

	flags := append(serverCfg.Flags(), deckCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			deck, err := deckCfg.build(ctx, c, &serverCfg)
			if err != nil {
				return err
			}

			logger.Info("Starting appdeck server",
				slog.String("addr", serverCfg.Addr),
				slog.String("base_url", deckCfg.catalog.BaseURL),
				slog.String("document", deckCfg.catalog.Document),
			)

			// Create HTTP server with options
			server, err := controller.NewServer(
				ctx,
				deck,
				controller.WithAddr(serverCfg.Addr),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Warm the catalog before the first request arrives
			deck.LoadIfNeeded(ctx)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			case err := <-errCh:
				deck.Cancel()
				return goerr.Wrap(err, "HTTP server error", goerr.V("addr", serverCfg.Addr))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			deck.Cancel()
			if err := deck.Wait(shutdownCtx); err != nil {
				return goerr.Wrap(err, "requests still in flight after shutdown")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
