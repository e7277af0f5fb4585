package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/rewind/internal/cli"
	httpAdapter "github.com/aretw0/rewind/pkg/adapters/http"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves sessions over a JSON API with a server-sent event stream per session.
When metrics are enabled they are served on /metrics, or on metrics.addr if set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()
		cmd.SetContext(sigCtx)

		stack, cfg, err := loadStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTP.Addr = addr
		}

		opts := []httpAdapter.Option{
			httpAdapter.WithLogger(stack.Logger),
			httpAdapter.WithCORSOrigins(cfg.HTTP.CORSOrigins),
		}
		servers := []*http.Server{}

		if stack.Metrics != nil {
			if cfg.Metrics.Addr == "" {
				opts = append(opts, httpAdapter.WithMetricsHandler(stack.Metrics.Handler()))
			} else {
				mux := http.NewServeMux()
				mux.Handle("/metrics", stack.Metrics.Handler())
				servers = append(servers, &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second})
			}
		}
		servers = append(servers, &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           httpAdapter.NewHandler(stack.Service, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		})

		g, ctx := errgroup.WithContext(sigCtx)
		for _, srv := range servers {
			g.Go(func() error {
				stack.Logger.Info("Listening", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server %s: %w", srv.Addr, err)
				}
				return nil
			})
		}
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			var errs []error
			for _, srv := range servers {
				if err := srv.Shutdown(shutdownCtx); err != nil {
					errs = append(errs, err, srv.Close())
				}
			}
			if sig := sigCtx.Signal(); sig != nil {
				stack.Logger.Info("Server stopped gracefully", "signal", sig.String())
			}
			return errors.Join(errs...)
		})

		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides http.addr)")
}
