package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/energyscope/internal/api"
	"github.com/rshade/energyscope/internal/config"
	"github.com/rshade/energyscope/internal/engine"
	"github.com/rshade/energyscope/internal/logging"
)

const readHeaderTimeout = 10 * time.Second

// NewServeCmd creates the serve command, which exposes the views over HTTP.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the energy views as a JSON HTTP API",
		Long: `Loads the dataset once and serves it until interrupted. Routes:

  GET /health
  GET /api/v1/years
  GET /api/v1/energy-types
  GET /api/v1/stack/{year}
  GET /api/v1/average?from=&to=
  GET /api/v1/series?country=...
  GET /api/v1/consumption
  PUT /api/v1/selection       {"countries": [...]}
  GET /api/v1/map[?from=&to=]`,
		Example: `  energyscope serve --addr :9090`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := commandConfig(cmd)
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			eng, err := loadEngine(cmd)
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", cfg.Server.Addr)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", cfg.Server.Addr, err)
			}
			cmd.Printf("Serving on http://%s\n", ln.Addr())

			return serve(ctx, ln, eng, cfg.Server)
		},
	}
	cmd.Flags().String("addr", config.DefaultAddr, "listen address (default from server.addr)")
	return cmd
}

// serve runs the API on ln until ctx is done, then shuts down within the configured
// timeout.
func serve(ctx context.Context, ln net.Listener, eng *engine.Engine, cfg config.ServerConfig) error {
	log := logging.FromContext(ctx)

	srv := &http.Server{
		Handler: api.NewHandler(eng, *log, api.Options{
			AccessLog:      log,
			AllowedOrigins: cfg.AllowedOrigins,
		}),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Ctx(ctx).Str("operation", "serve").Str("addr", ln.Addr().String()).Msg("api listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving api: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()

		log.Info().Ctx(ctx).Str("operation", "serve").Msg("api shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
