// Package pipeline orchestrates the fetcher: query build, amplified fetch
// passes, parsing, filtering, ranking, and truncation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/oculit/ophtha-fetcher/internal/catalog"
	"github.com/oculit/ophtha-fetcher/internal/domain"
	"github.com/oculit/ophtha-fetcher/internal/keywords"
	"github.com/oculit/ophtha-fetcher/internal/medline"
	"github.com/oculit/ophtha-fetcher/internal/observability"
	"github.com/oculit/ophtha-fetcher/internal/query"
	"github.com/oculit/ophtha-fetcher/internal/rank"
)

// Amplification factors. The client over-fetches IDs relative to MaxResults
// to compensate for post-filter dropout; later passes retry harder when too
// few articles survive.
const (
	baseFactor       = 5
	timeWindowFactor = 20
	secondPassFactor = 100
	thirdPassFactor  = 200

	// Window widening applied by the third pass.
	widenDaysToday     = 3
	widenDaysThisMonth = 45

	// earlyMonthDay is the day-of-month threshold for this-month widening.
	earlyMonthDay = 7
)

// FetchClient is the remote protocol used by the pipeline. *eutils.Client
// implements it; tests substitute fakes.
type FetchClient interface {
	// Search returns PMIDs for a term plus the total match count.
	Search(ctx context.Context, term string, maxIDs int) ([]string, int, error)

	// Fetch returns MEDLINE records for the PMIDs, reporting batch progress.
	Fetch(ctx context.Context, pmids []string, onBatch func(done, total int)) ([]medline.Record, error)
}

// Pipeline runs searches end to end. It is stateless between invocations and
// safe for concurrent use; concurrent invocations share only the read-only
// catalog and the process-wide rate limit inside the client.
type Pipeline struct {
	client  FetchClient
	catalog *catalog.Catalog
	logger  zerolog.Logger
	metrics *observability.Metrics

	// now anchors date clauses and windows; injected in tests.
	now func() time.Time
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithMetrics attaches metrics to the pipeline.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a pipeline over a fetch client and journal catalog.
func New(client FetchClient, cat *catalog.Catalog, logger zerolog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		client:  client,
		catalog: cat,
		logger:  logger.With().Str("component", "pipeline").Logger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// passResult carries the outcome of one amplification pass.
type passResult struct {
	survivors  []*domain.Article
	totalFound int
}

// Search runs the full pipeline for one request. progress may be nil. An
// empty result set is not an error.
func (p *Pipeline) Search(ctx context.Context, req domain.SearchRequest, progress domain.ProgressFunc) (*domain.SearchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := p.now()
	logger := observability.WithSearchContext(p.logger, uuid.NewString(), req.Subspecialty)

	if req.WantsSoftLimitWarning() {
		logger.Warn().Int("max_results", req.MaxResults).
			Msgf("max_results above %d; expect long runs", domain.MaxResultsSoftLimit)
	}

	report := func(phase domain.Phase, done, total int) {
		if progress != nil {
			progress(phase, done, total)
		}
	}

	best := passResult{}
	passes := p.passPlan(req)
	ran := 0

	for i, pass := range passes {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("search interrupted: %w", domain.ErrCancelled)
		}
		ran = i + 1

		result, err := p.runPass(ctx, req, pass, i+1, len(passes), logger, report)
		if err != nil {
			if errors.Is(err, domain.ErrCancelled) {
				return nil, err
			}
			// The initial search aborts on failure; amplification passes
			// abort only while no pass has produced results.
			if len(best.survivors) == 0 {
				return nil, err
			}
			logger.Warn().Err(err).Int("pass", i+1).Msg("amplification pass failed, keeping previous results")
			break
		}

		// A pass supersedes the previous only with more survivors.
		if len(result.survivors) > len(best.survivors) {
			best = result
		}
		if len(best.survivors) >= req.MaxResults {
			break
		}
	}

	report(domain.PhaseRank, 0, 1)
	rank.Score(best.survivors, rank.BoostList(req.Subspecialty, req.Keyword))
	rank.Sort(best.survivors, req.DateMode)
	report(domain.PhaseRank, 1, 1)

	articles, truncated := rank.Truncate(best.survivors, req.MaxResults)

	totalFound := best.totalFound
	if len(articles) == 0 {
		articles = []*domain.Article{}
		totalFound = 0
	}

	p.metrics.ObserveSearch(ran, len(best.survivors), p.now().Sub(start).Seconds())
	logger.Info().
		Int("passes", ran).
		Int("articles", len(articles)).
		Int("total_found", totalFound).
		Bool("truncated", truncated).
		Msg("search complete")

	return &domain.SearchResult{
		Articles:   articles,
		TotalFound: totalFound,
		Truncated:  truncated,
	}, nil
}

// passSpec describes one amplification pass.
type passSpec struct {
	factor    int
	widenDays int
}

// passPlan returns the amplification schedule for a request.
func (p *Pipeline) passPlan(req domain.SearchRequest) []passSpec {
	base := baseFactor
	if req.DateMode == domain.DateModeToday || req.DateMode == domain.DateModeThisMonth {
		base = timeWindowFactor
	}

	third := passSpec{factor: thirdPassFactor}
	switch req.DateMode {
	case domain.DateModeToday:
		third.widenDays = widenDaysToday
	case domain.DateModeThisMonth:
		if p.now().Day() <= earlyMonthDay {
			third.widenDays = widenDaysThisMonth
		}
	}

	return []passSpec{
		{factor: base},
		{factor: secondPassFactor},
		third,
	}
}

// runPass executes one search-fetch-parse-filter pass.
func (p *Pipeline) runPass(ctx context.Context, req domain.SearchRequest, pass passSpec, passNum, passTotal int, logger zerolog.Logger, report domain.ProgressFunc) (passResult, error) {
	now := p.now()

	var q query.Query
	if pass.widenDays > 0 {
		q = query.BuildWidened(req, p.catalog, now, pass.widenDays)
	} else {
		q = query.Build(req, p.catalog, now)
	}

	logger.Debug().
		Int("pass", passNum).
		Int("factor", pass.factor).
		Str("term", q.Term).
		Msg("running search pass")

	report(domain.PhaseSearch, passNum-1, passTotal)
	ids, total, err := p.client.Search(ctx, q.Term, req.MaxResults*pass.factor)
	if err != nil {
		return passResult{}, err
	}
	report(domain.PhaseSearch, passNum, passTotal)

	records, err := p.client.Fetch(ctx, ids, func(done, batchTotal int) {
		report(domain.PhaseFetch, done, batchTotal)
	})
	if err != nil {
		return passResult{}, err
	}

	articles := p.parse(records, logger, report)

	report(domain.PhaseFilter, 0, 1)
	filter := rank.Filter{
		Eligible:         p.catalog.EligibleSet(req.DateMode, req.MinImpactFactor),
		RequestedJournal: req.Journal,
		BypassCatalog:    q.UncatalogedJournal,
		Window:           q.Window,
	}
	survivors := filter.Apply(articles)
	report(domain.PhaseFilter, 1, 1)

	logger.Debug().
		Int("pass", passNum).
		Int("fetched", len(records)).
		Int("parsed", len(articles)).
		Int("survivors", len(survivors)).
		Msg("pass finished")

	return passResult{survivors: survivors, totalFound: total}, nil
}

// parse converts raw records to articles, recovering from malformed records.
func (p *Pipeline) parse(records []medline.Record, logger zerolog.Logger, report domain.ProgressFunc) []*domain.Article {
	articles := make([]*domain.Article, 0, len(records))
	for i, rec := range records {
		a, err := medline.ToArticle(rec, p.catalog)
		if err != nil {
			logger.Warn().Err(err).Msg("skipping malformed record")
			continue
		}
		articles = append(articles, a)
		report(domain.PhaseParse, i+1, len(records))
	}
	return articles
}

// Related extracts up to ten keywords from an article for a follow-up
// "find related" search.
func Related(a *domain.Article) []string {
	abstract := a.Abstract
	if abstract == domain.NoAbstract {
		abstract = ""
	}
	return keywords.Extract(a.Title, abstract)
}
