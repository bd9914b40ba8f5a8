// Package main provides the headless command-line driver for the fetcher.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/oculit/ophtha-fetcher/internal/catalog"
	"github.com/oculit/ophtha-fetcher/internal/config"
	"github.com/oculit/ophtha-fetcher/internal/domain"
	"github.com/oculit/ophtha-fetcher/internal/eutils"
	"github.com/oculit/ophtha-fetcher/internal/export"
	"github.com/oculit/ophtha-fetcher/internal/observability"
	"github.com/oculit/ophtha-fetcher/internal/pipeline"
)

// Exit codes.
const (
	exitOK        = 0
	exitBadArgs   = 2
	exitFetch     = 3
	exitExport    = 4
	exitCancelled = 130
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	cmd.SetArgs(os.Args[1:])

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		switch {
		case errors.Is(err, domain.ErrCancelled), errors.Is(err, context.Canceled):
			return exitCancelled
		case errors.Is(err, domain.ErrFetch):
			return exitFetch
		case errors.Is(err, domain.ErrExport):
			return exitExport
		default:
			return exitBadArgs
		}
	}
	return exitOK
}

// cliOptions holds the flag values of the root command.
type cliOptions struct {
	email        string
	apiKey       string
	daysBack     int
	today        bool
	thisMonth    bool
	maxResults   int
	subspecialty string
	keyword      string
	journal      string
	issn         string
	minImpact    float64
	format       string
	outDir       string
	verbose      bool
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:   "fetcher",
		Short: "Fetch, rank and export recent ophthalmology articles from PubMed",
		Long: `fetcher searches PubMed for recent ophthalmology articles, filters them
against a curated journal catalog, ranks them by subspecialty relevance, and
exports the results as CSV, text, spreadsheet and DOI listings.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.email, "email", "", "contact email sent with every E-utilities request (required)")
	f.StringVar(&opts.apiKey, "api-key", "", "NCBI API key (optional)")
	f.IntVar(&opts.daysBack, "days-back", 30, "search the last N days")
	f.BoolVar(&opts.today, "today", false, "restrict to articles published today")
	f.BoolVar(&opts.thisMonth, "this-month", false, "restrict to articles published this month")
	f.IntVar(&opts.maxResults, "max", 50, "maximum number of articles")
	f.StringVar(&opts.subspecialty, "subspecialty", domain.SubspecialtyAll,
		"subspecialty keyword pack: "+strings.Join(catalog.Subspecialties(), ", ")+", or all")
	f.StringVar(&opts.keyword, "keyword", "", "mandatory free-text keyword")
	f.StringVar(&opts.journal, "journal", "", "restrict to one journal by exact name")
	f.StringVar(&opts.issn, "issn", "", "restrict to one journal by ISSN")
	f.Float64Var(&opts.minImpact, "min-if", 0, "minimum journal impact factor")
	f.StringVar(&opts.format, "format", "", "export format: csv, text, xlsx, dois, all")
	f.StringVar(&opts.outDir, "out", "", "output directory")
	f.BoolVar(&opts.verbose, "verbose", false, "debug logging")

	cmd.MarkFlagsMutuallyExclusive("today", "this-month", "days-back")
	cmd.MarkFlagsMutuallyExclusive("journal", "issn")

	return cmd
}

func runSearch(ctx context.Context, opts *cliOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFlags(cfg, opts)

	logCfg := observability.LoggingConfig{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Output:    cfg.Logging.Output,
		AddSource: cfg.Logging.AddSource,
	}
	if opts.verbose {
		logCfg.Level = "debug"
	}
	logger := observability.NewLogger(logCfg)

	req := buildRequest(opts)
	if err := req.Validate(); err != nil {
		return err
	}

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	client := eutils.New(eutils.Config{
		BaseURL:        cfg.EUtils.BaseURL,
		Email:          req.Email,
		APIKey:         req.APIKey,
		Timeout:        cfg.EUtils.Timeout,
		BatchSize:      cfg.EUtils.BatchSize,
		MaxRetries:     cfg.EUtils.MaxRetries,
		RetryBaseDelay: cfg.EUtils.RetryBaseDelay,
	}, logger, eutils.WithMetrics(metrics))

	cat := catalog.Default()
	p := pipeline.New(client, cat, logger, pipeline.WithMetrics(metrics))

	progress := func(phase domain.Phase, done, total int) {
		logger.Debug().Str("phase", string(phase)).Int("done", done).Int("total", total).Msg("progress")
	}

	result, err := p.Search(ctx, req, progress)
	if err != nil {
		return err
	}

	if len(result.Articles) == 0 {
		printEmptyDiagnostic(req)
		return nil
	}

	printSummary(result)

	exporters, err := export.ForFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	for i, e := range exporters {
		progress(domain.PhaseExport, i, len(exporters))
		path := filepath.Join(cfg.Output.Dir, e.Filename())
		if err := e.Write(path, result.Articles); err != nil {
			return err
		}
		logger.Info().Str("file", path).Str("format", string(e.Format())).Msg("exported")
	}
	progress(domain.PhaseExport, len(exporters), len(exporters))

	return nil
}

// applyFlags overlays non-empty CLI flags on the loaded configuration.
func applyFlags(cfg *config.Config, opts *cliOptions) {
	if opts.email != "" {
		cfg.EUtils.Email = opts.email
	}
	if opts.apiKey != "" {
		cfg.EUtils.APIKey = opts.apiKey
	}
	if opts.format != "" {
		cfg.Output.Format = opts.format
	}
	if opts.outDir != "" {
		cfg.Output.Dir = opts.outDir
	}
	opts.email = cfg.EUtils.Email
	opts.apiKey = cfg.EUtils.APIKey
}

// buildRequest converts CLI flags into a SearchRequest.
func buildRequest(opts *cliOptions) domain.SearchRequest {
	req := domain.SearchRequest{
		DateMode:        domain.DateModeDaysBack,
		DaysBack:        opts.daysBack,
		MaxResults:      opts.maxResults,
		Subspecialty:    opts.subspecialty,
		Keyword:         opts.keyword,
		Journal:         opts.journal,
		MinImpactFactor: opts.minImpact,
		Email:           opts.email,
		APIKey:          opts.apiKey,
	}
	if opts.issn != "" {
		req.Journal = opts.issn
	}
	switch {
	case opts.today:
		req.DateMode = domain.DateModeToday
	case opts.thisMonth:
		req.DateMode = domain.DateModeThisMonth
	}
	return req
}

// printSummary lists the ranked articles on stdout.
func printSummary(result *domain.SearchResult) {
	fmt.Printf("Found %d articles (total matches: %d)\n\n", len(result.Articles), result.TotalFound)
	for i, a := range result.Articles {
		fmt.Printf("%3d. %s\n     %s | IF %.1f | %s\n",
			i+1, truncateTitle(a.Title, 70), a.JournalName, a.ImpactFactor, a.PubDate.Format("2006-01-02"))
	}
	fmt.Println()
}

// truncateTitle shortens a title for the console listing without splitting
// multibyte runes.
func truncateTitle(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// printEmptyDiagnostic explains common reasons for an empty result set.
func printEmptyDiagnostic(req domain.SearchRequest) {
	fmt.Println("No articles found.")
	fmt.Println("Common causes:")
	switch req.DateMode {
	case domain.DateModeToday:
		fmt.Println("  - nothing from the catalog journals was published (or indexed) today")
	case domain.DateModeThisMonth:
		fmt.Println("  - the month is young and indexing lags publication")
	default:
		fmt.Printf("  - no matches in the last %d days\n", req.DaysBack)
	}
	if req.MinImpactFactor > 0 {
		fmt.Printf("  - the impact-factor filter (>= %.1f) may be too strict\n", req.MinImpactFactor)
	}
	if req.Keyword != "" {
		fmt.Printf("  - the keyword %q is mandatory; try removing it\n", req.Keyword)
	}
}
