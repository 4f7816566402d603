package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"recipe-desk/api"
	"recipe-desk/kv"
	"recipe-desk/logger"
	"recipe-desk/recipe"
	"recipe-desk/workspace"
)

const shutdownTimeout = 10 * time.Second

func ServeCmd(staticFS fs.FS, version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, map[string]string{
				"addr":         "server.addr",
				"storage":      "storage.driver",
				"storage-path": "storage.path",
				"base-url":     "link.base_url",
			})
			if err != nil {
				return err
			}
			log := logger.GetDefault()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			slots, closer, err := kv.Open(ctx, cfg.Storage)
			if err != nil {
				return fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
			}
			defer closer.Close()

			router := api.RegisterRoutes(workspace.NewManager(), recipe.NewStore(slots), api.Options{
				BaseURL:       cfg.Link.BaseURL,
				ReportBaseURL: cfg.Link.ReportBaseURL,
				Version:       version,
			}, staticFS)

			srv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext: func(_ net.Listener) context.Context {
					return logger.ContextWithLogger(context.Background(), log)
				},
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("recipe-desk listening", "addr", cfg.Server.Addr, "storage", cfg.Storage.Driver)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server error: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	cmd.Flags().String("storage", "", "storage driver: memory, file, redis or sqlite")
	cmd.Flags().String("storage-path", "", "file or sqlite database path")
	cmd.Flags().String("base-url", "", "fixed base address for share links")
	return cmd
}
