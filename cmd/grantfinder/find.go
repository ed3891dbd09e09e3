package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ohack/grantfinder/internal/config"
	"github.com/ohack/grantfinder/internal/database"
	"github.com/ohack/grantfinder/internal/log"
	"github.com/ohack/grantfinder/internal/model"
	"github.com/ohack/grantfinder/internal/pipeline"
	"github.com/ohack/grantfinder/internal/report"
)

// Environment variables holding the Google Programmable Search
// credentials, kept out of the config file.
const (
	searchAPIKeyEnv   = "GRANTFINDER_SEARCH_API_KEY"
	searchEngineIDEnv = "GRANTFINDER_SEARCH_ENGINE_ID"
)

// NewFindCmd creates the find command.
func NewFindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find [seed-url...]",
		Short: "Crawl grant sites and report funding opportunities",
		Long: `Find runs a full discovery pass: it collects seed URLs, crawls them with
per-domain politeness and budgets, scores every page for grant relevance,
stores the results, and writes a report.

Seed URLs given as arguments replace the configured seed list for this run.

Examples:
  # Run with the built-in targets, search, and feeds
  grantfinder find

  # Crawl a specific site only
  grantfinder find https://www.grants.gov/search-grants

  # Deeper crawl with a Markdown report written to a file
  grantfinder find -d 3 --markdown -o report.md

  # Use a custom configuration file
  grantfinder find -c myconfig.yaml

Configuration file (.grantfinder) example:
  seeds:
    - https://example.org/grants
  domains:
    example.org:
      maxPages: 50
      depthPriority: true
      contentPatterns: ["grant", "apply"]`,
		Args: cobra.ArbitraryArgs,
		RunE: runFindCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum link depth from a seed")
	cmd.Flags().IntP("max-urls", "u", config.DefaultMaxURLsPerRun,
		"Maximum URLs to enqueue per run")
	cmd.Flags().IntP("workers", "w", config.DefaultMaxConcurrentRequests,
		"Number of concurrent fetch workers")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"HTTP timeout for each request")
	cmd.Flags().Bool("no-robots", false,
		"Ignore robots.txt (not recommended)")
	cmd.Flags().Bool("no-cache", false,
		"Bypass the on-disk page cache")

	// Seed source flags
	cmd.Flags().Bool("no-search", false,
		"Disable Google Programmable Search seed discovery")
	cmd.Flags().Bool("no-feeds", false,
		"Disable RSS/Atom feed seed discovery")

	// Analysis flags
	cmd.Flags().Float64P("min-score", "s", config.DefaultMinRelevanceScore,
		"Minimum relevance score for a page to count as a grant")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .grantfinder in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runFindCmd executes the find command.
func runFindCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	cfg.Verbose = getVerboseFlag(cmd)
	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Handle interrupt signals for graceful shutdown; a second signal
	// kills the process the normal way.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, finishing in-flight work...")
		cancel()
	}()

	return runFind(ctx, cfg, logger, cmd.OutOrStdout())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}
	cfg.MaxURLsPerRun, err = cmd.Flags().GetInt("max-urls")
	if err != nil {
		return nil, err
	}
	cfg.MaxConcurrentRequests, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}
	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	noRobots, err := cmd.Flags().GetBool("no-robots")
	if err != nil {
		return nil, err
	}
	cfg.RespectRobotsTxt = !noRobots

	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return nil, err
	}
	if noCache {
		cfg.CacheDir = ""
	}

	noSearch, err := cmd.Flags().GetBool("no-search")
	if err != nil {
		return nil, err
	}
	noFeeds, err := cmd.Flags().GetBool("no-feeds")
	if err != nil {
		return nil, err
	}
	cfg.UseSearch = !noSearch
	cfg.UseFeeds = !noFeeds
	cfg.SearchAPIKey = os.Getenv(searchAPIKeyEnv)
	cfg.SearchEngineID = os.Getenv(searchEngineIDEnv)

	cfg.MinRelevanceScore, err = cmd.Flags().GetFloat64("min-score")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly specified a config file path, error when it
	// is missing. Otherwise a missing file just means defaults.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		cfg.File, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	// Positional seed URLs replace the configured seed list.
	if len(args) > 0 {
		if cfg.File == nil {
			cfg.File = &config.File{}
		}
		cfg.File.Seeds = args
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}
	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}
	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.DBDir = config.XDGDataDir()
	return cfg, nil
}

// runFind executes the discovery pipeline and writes the report.
func runFind(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	crawlStep, err := pipeline.NewCrawlStep(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to set up crawler: %w", err)
	}

	return executeRun(ctx, cfg, logger, stdout,
		pipeline.NewSeedStep(cfg, logger),
		crawlStep,
		pipeline.NewPersistStep(db),
		pipeline.NewNotifyStep(cfg, logger),
	)
}

// executeRun runs the pipeline steps and writes the report. Steps run with
// continue-on-error so a persistence or notification failure never throws
// away crawl results; a failed step still surfaces as a non-nil return so
// the process exits non-zero.
func executeRun(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer, steps ...pipeline.Step) error {
	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	)
	p.AddSteps(steps...)

	runReport := model.NewRunReport()
	runErr := p.Execute(ctx, runReport)
	if runErr == nil && runReport.ErrorMessage != "" {
		runErr = fmt.Errorf("run finished with a failed step: %s", runReport.ErrorMessage)
	}

	// The report is written even when the run failed partway; partial
	// results are still worth reading.
	if err := writeReport(cfg, runReport, stdout); err != nil {
		if runErr != nil {
			logger.Error("failed to write report", "error", err)
			return runErr
		}
		return err
	}
	return runErr
}

// writeReport renders the run report in the configured format.
func writeReport(cfg *config.Config, runReport *model.RunReport, stdout io.Writer) error {
	out := stdout
	if cfg.ReportFile != "" {
		if dir := filepath.Dir(cfg.ReportFile); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}
		f, err := os.Create(cfg.ReportFile)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		out = f
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(out, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(out)
	default:
		w = report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	}
	if _, err := w.Write(runReport); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
