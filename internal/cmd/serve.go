package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/masahif/sitecorpus/internal/api"
	"github.com/masahif/sitecorpus/internal/crawler"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scrape API over HTTP",
	Long: `Start an HTTP server that scrapes sites on request and stores the pages
per integration:

  POST /v1/integrations/{id}/scrape   {"url": "...", "max_pages": 10}
  GET  /v1/integrations/{id}/content
  GET  /v1/integrations/{id}/runs
  GET  /healthz
  GET  /metrics`,
	Args: cobra.NoArgs,
	RunE: runServer,
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().Duration("request-timeout", 5*time.Minute, "Upper bound for one scrape request")

	for key, name := range map[string]string{
		"server.addr":            "addr",
		"server.request_timeout": "request-timeout",
	} {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(name)); err != nil {
			fmt.Printf("Warning: failed to bind flag %s: %v\n", name, err)
		}
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if showConfig, _ := cmd.Flags().GetBool("show-config"); showConfig {
		return showCurrentConfig(cmd.OutOrStdout(), cfg)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}

	store, err := openStorage(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	scraper := crawler.NewScraper(cfg, nil)
	defer scraper.Close()

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewServer(scraper, store, cfg.Server).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return serve(cmd.Context(), server)
}

// serve runs server until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
