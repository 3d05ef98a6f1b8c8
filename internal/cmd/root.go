// Package cmd provides the command-line interface for sitecorpus.
// It handles command parsing, configuration loading, crawling and the HTTP service.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/masahif/sitecorpus/internal/config"
	"github.com/masahif/sitecorpus/internal/crawler"
	"github.com/masahif/sitecorpus/internal/logging"
	"github.com/masahif/sitecorpus/internal/report"
	"github.com/masahif/sitecorpus/internal/storage"
)

var (
	cfgFile   string
	version   string
	buildTime string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sitecorpus [URL]",
	Short: "Crawl a website into a plain-text corpus for a chatbot",
	Long: `sitecorpus crawls one website depth-first from a root URL, staying on
the root's host, and turns every visited page into structured plain text:
title, description, heading outline, navigation links and main content.

The combined corpus is written to stdout (or --output) and, when an
integration id is given, stored in SQLite for the dashboard.`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runCrawler,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext is Execute with a context that cancels running crawls and the server.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersionInfo sets version information for the CLI
func SetVersionInfo(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

func init() {
	cobra.OnInitialize(initConfig)
	defaults := config.DefaultConfig()

	// Configuration file flag
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./sitecorpus.yml)")
	rootCmd.PersistentFlags().Bool("show-config", false, "Display current configuration in YAML format and exit")

	// Crawl flags, shared with serve
	rootCmd.PersistentFlags().IntP("max-pages", "n", defaults.MaxPages, "Maximum number of pages to visit per crawl")
	rootCmd.PersistentFlags().DurationP("delay", "r", defaults.RequestDelay, "Minimum delay between requests to the same host")
	rootCmd.PersistentFlags().DurationP("timeout", "t", defaults.RequestTimeout, "HTTP request timeout")
	rootCmd.PersistentFlags().StringP("user-agent", "u", defaults.UserAgent, "HTTP User-Agent header")
	rootCmd.PersistentFlags().Int64("max-body-bytes", defaults.MaxBodyBytes, "Truncate response bodies past this size")
	rootCmd.PersistentFlags().String("fetcher", defaults.Fetcher, "Fetch backend: 'http' or 'colly'")
	rootCmd.PersistentFlags().StringP("database", "d", defaults.DatabasePath, "Path to SQLite database file")

	// Logging flags
	rootCmd.PersistentFlags().String("log-level", defaults.Log.Level, "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-file", "", "Also write logs to this file, rotated by size")
	rootCmd.PersistentFlags().String("log-format", defaults.Log.Format, "Log format: 'json' or 'text'")

	// Crawl-only flags
	rootCmd.Flags().StringP("integration", "i", "", "Store pages for this integration id (empty disables storage)")
	rootCmd.Flags().StringP("format", "f", defaults.OutputFormat, "Output format: text, json or markdown")
	rootCmd.Flags().StringP("output", "o", "", "Write output to this file instead of stdout")
	rootCmd.Flags().BoolP("quiet", "q", false, "Do not show the progress spinner")

	bindFlags := []struct {
		viperKey string
		flagName string
	}{
		{"max_pages", "max-pages"},
		{"request_delay", "delay"},
		{"request_timeout", "timeout"},
		{"user_agent", "user-agent"},
		{"max_body_bytes", "max-body-bytes"},
		{"fetcher", "fetcher"},
		{"database_path", "database"},
		{"log.level", "log-level"},
		{"log.file", "log-file"},
		{"log.format", "log-format"},
		{"integration_id", "integration"},
		{"output_format", "format"},
		{"output_path", "output"},
	}

	for _, bind := range bindFlags {
		flag := rootCmd.PersistentFlags().Lookup(bind.flagName)
		if flag == nil {
			flag = rootCmd.Flags().Lookup(bind.flagName)
		}
		if err := viper.BindPFlag(bind.viperKey, flag); err != nil {
			// Log the error but continue - non-critical for operation
			fmt.Fprintf(os.Stderr, "Warning: failed to bind flag %s: %v\n", bind.flagName, err)
		}
	}

	rootCmd.AddCommand(serveCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("sitecorpus")
	}

	viper.AutomaticEnv() // read in environment variables that match
	viper.SetEnvPrefix("SC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig merges defaults, config file, environment and flags.
func loadConfig() (*config.CrawlConfig, error) {
	cfg := config.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

func setupLogging(cfg *config.CrawlConfig) error {
	if err := logging.SetDefault(logging.FromLogConfig(cfg.Log)); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	return nil
}

func showCurrentConfig(w io.Writer, cfg *config.CrawlConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Configuration validation failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "Displaying configuration anyway...\n\n")
	}

	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration to YAML: %w", err)
	}

	fmt.Fprintf(w, "# Current sitecorpus Configuration\n")
	fmt.Fprintf(w, "# Generated at: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "# Configuration file search paths: ./sitecorpus.yml\n")
	fmt.Fprintf(w, "# Environment variables prefix: SC_\n\n")

	_, err = w.Write(yamlData)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\n# Configuration source priority:\n")
	fmt.Fprintf(w, "# 1. Command-line arguments (highest priority)\n")
	fmt.Fprintf(w, "# 2. Environment variables (SC_ prefix)\n")
	fmt.Fprintf(w, "# 3. Configuration file (sitecorpus.yml)\n")
	fmt.Fprintf(w, "# 4. Default values (lowest priority)\n")

	return nil
}

func runCrawler(cmd *cobra.Command, args []string) error {
	showConfig, _ := cmd.Flags().GetBool("show-config")
	quiet, _ := cmd.Flags().GetBool("quiet")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(args) > 0 {
		cfg.RootURL = args[0]
	}

	if showConfig {
		return showCurrentConfig(cmd.OutOrStdout(), cfg)
	}

	if cfg.RootURL == "" {
		return fmt.Errorf("no URL provided\nUsage: %s", cmd.UseLine())
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}

	out, closeOut, err := openOutput(cmd, cfg.OutputPath)
	if err != nil {
		return err
	}
	defer closeOut()

	writer, err := report.New(cfg.OutputFormat, out)
	if err != nil {
		return err
	}

	bar := newProgress(!quiet)
	scraper := crawler.NewScraper(cfg, nil, crawler.WithPageHook(bar.onPage))
	defer scraper.Close()

	bar.start(cfg.RootURL)
	result, err := scraper.ScrapeSite(cmd.Context(), cfg.RootURL, cfg.MaxPages)
	bar.stop()
	if err != nil {
		return fmt.Errorf("failed to scrape %s: %w", cfg.RootURL, err)
	}

	if _, err := writer.Write(result); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if cfg.IntegrationID != "" {
		return persistResult(cmd.Context(), cfg, result)
	}
	return nil
}

func openOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// openStorage creates the database directory if needed and opens the store.
func openStorage(path string) (*storage.SQLiteStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return store, nil
}

func persistResult(ctx context.Context, cfg *config.CrawlConfig, result *crawler.ScrapeResult) error {
	store, err := openStorage(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	run, err := store.SaveResult(ctx, cfg.IntegrationID, cfg.RootURL, result)
	if err != nil {
		return fmt.Errorf("failed to store content: %w", err)
	}

	summary, err := store.Summary(ctx, cfg.IntegrationID)
	if err != nil {
		return err
	}
	slog.Info("Stored site content",
		"integration_id", cfg.IntegrationID,
		"run_id", run.ID,
		"inserted", run.PagesInserted,
		"updated", run.PagesUpdated,
		"total_pages", summary.Pages,
		"content_bytes", summary.ContentBytes,
		"database", cfg.DatabasePath)
	return nil
}
