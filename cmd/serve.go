package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/tryon/internal/config"
	"github.com/lehigh-university-libraries/tryon/internal/handlers"
	"github.com/lehigh-university-libraries/tryon/internal/images"
	"github.com/lehigh-university-libraries/tryon/internal/presets"
	"github.com/lehigh-university-libraries/tryon/internal/tryon"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		port        string
		dbPath      string
		sessionIdle time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for the try-on interface",
		Long: `Starts the try-on web interface on the specified port.

The interface walks through choosing a person, choosing or generating a
garment, and compositing the two with a Gemini image model. Completed
results are kept in a history stored in a SQLite file.`,
		Example: `  # Start server on default port 8888
  tryon serve

  # Start server on custom port with a different history database
  tryon serve --port 3000 --db /var/lib/tryon/history.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := config.Load()
			if cmd.Flags().Changed("db") {
				env.DBPath = dbPath
			}

			catalog, err := presets.Load(env.PresetsPath)
			if err != nil {
				return err
			}

			service, err := tryon.NewServiceFromEnv(env)
			if err != nil {
				return err
			}

			hist, closeDB, err := openHistory(cmd.Context(), env.DBPath)
			if err != nil {
				return err
			}
			defer closeDB()

			handler := handlers.New(service, images.NewFetcher(), hist, catalog)
			if sessionIdle > 0 {
				go handler.SweepSessions(cmd.Context(), sessionIdle, sessionIdle/4)
			}

			// Set up routes
			mux := http.NewServeMux()
			handler.Register(mux)
			mux.HandleFunc("GET /healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Try-on interface available",
					"addr", addr,
					"url", "http://localhost"+addr,
					"provider", env.Provider,
					"model", env.Model,
					"db", env.DBPath,
					"history", hist.Len())
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().DurationVar(&sessionIdle, "session-idle", time.Hour, "Drop sessions unused for this long (0 keeps them until shutdown)")
	cmd.Flags().StringVar(&dbPath, "db", config.DefaultDBPath, "SQLite file holding the result history (overrides TRYON_DB)")

	return cmd
}
