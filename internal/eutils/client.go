package eutils

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/oculit/ophtha-fetcher/internal/domain"
	"github.com/oculit/ophtha-fetcher/internal/medline"
	"github.com/oculit/ophtha-fetcher/internal/observability"
)

const (
	// DefaultBaseURL is the base URL for NCBI E-utilities.
	DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultBatchSize is the number of PMIDs fetched per efetch call.
	DefaultBatchSize = 200

	// DefaultMaxRetries is the number of efetch retries after the first
	// attempt. The search phase is single-shot.
	DefaultMaxRetries = 3

	// DefaultRetryBaseDelay is the first backoff delay; it doubles per
	// attempt (1s, 2s, 4s).
	DefaultRetryBaseDelay = time.Second

	// MaxIDsLimit is the maximum retmax accepted by esearch.
	MaxIDsLimit = 100000

	phaseESearch = "esearch"
	phaseEFetch  = "efetch"
)

// Config holds the configuration for the E-utilities client. Email is
// required by NCBI on every call; APIKey is optional.
type Config struct {
	BaseURL        string
	Email          string
	APIKey         string
	Tool           string
	Timeout        time.Duration
	BatchSize      int
	MaxRetries     int
	RetryBaseDelay time.Duration
}

// applyDefaults applies default values to the config.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Tool == "" {
		c.Tool = "ophtha-fetcher"
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryBaseDelay == 0 {
		c.RetryBaseDelay = DefaultRetryBaseDelay
	}
}

// Client talks to the E-utilities endpoints with process-wide rate limiting
// and retry. It owns the network session; it is safe for concurrent use.
type Client struct {
	config  Config
	http    *http.Client
	limiter Limiter
	logger  zerolog.Logger
	metrics *observability.Metrics

	// sleep waits between retries; injected in tests to observe backoff.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option customizes a Client.
type Option func(*Client)

// WithLimiter replaces the process-wide rate limiter, for tests.
func WithLimiter(l Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithMetrics attaches metrics to the client.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithHTTPClient replaces the underlying HTTP client, for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// withSleep replaces the retry sleeper, for tests.
func withSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = fn }
}

// New creates a new E-utilities client.
func New(cfg Config, logger zerolog.Logger, opts ...Option) *Client {
	cfg.applyDefaults()

	c := &Client{
		config:  cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: ProcessLimiter(),
		logger:  logger.With().Str("component", "eutils").Logger(),
		sleep:   sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs esearch for the term, sorted by publication date descending,
// and returns the PMIDs plus the total match count. The search phase is
// single-shot: any failure surfaces as a FetchError.
func (c *Client) Search(ctx context.Context, term string, maxIDs int) ([]string, int, error) {
	if maxIDs > MaxIDsLimit {
		maxIDs = MaxIDsLimit
	}

	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", term)
	params.Set("retmode", "xml")
	params.Set("retmax", strconv.Itoa(maxIDs))
	params.Set("sort", "pub_date")
	params.Set("usehistory", "n")

	body, err := c.get(ctx, phaseESearch, "/esearch.fcgi", params)
	if err != nil {
		return nil, 0, err
	}

	var result ESearchResult
	if err := xml.Unmarshal(body, &result); err != nil {
		return nil, 0, domain.NewFetchError(phaseESearch, 0, "malformed response", err)
	}

	// A phrase-not-found diagnostic is an empty result, not a failure.
	if result.ErrorList != nil && len(result.ErrorList.PhraseNotFound) > 0 && len(result.IDList.IDs) == 0 {
		return nil, 0, nil
	}

	return result.IDList.IDs, result.Count, nil
}

// Fetch retrieves MEDLINE text records for the PMIDs in batches, retrying
// each batch with exponential backoff. Cancellation is observed between
// batches. onBatch, when non-nil, receives progress after each batch.
func (c *Client) Fetch(ctx context.Context, pmids []string, onBatch func(done, total int)) ([]medline.Record, error) {
	if len(pmids) == 0 {
		return nil, nil
	}

	total := len(pmids)
	records := make([]medline.Record, 0, total)

	for start := 0; start < total; start += c.config.BatchSize {
		if err := ctx.Err(); err != nil {
			return records, fmt.Errorf("fetch interrupted: %w", domain.ErrCancelled)
		}

		end := start + c.config.BatchSize
		if end > total {
			end = total
		}

		batch, err := c.fetchBatch(ctx, pmids[start:end])
		if err != nil {
			return records, err
		}
		records = append(records, batch...)

		if onBatch != nil {
			onBatch(end, total)
		}
	}

	return records, nil
}

// fetchBatch runs one efetch call with retries (backoff 1s, 2s, 4s).
func (c *Client) fetchBatch(ctx context.Context, pmids []string) ([]medline.Record, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(pmids, ","))
	params.Set("rettype", "medline")
	params.Set("retmode", "text")

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoffDelay(attempt)
			c.logger.Warn().
				Int("attempt", attempt).
				Dur("backoff", delay).
				Msg("retrying efetch batch")
			c.metrics.IncRetry()
			if err := c.sleep(ctx, delay); err != nil {
				return nil, fmt.Errorf("fetch interrupted: %w", domain.ErrCancelled)
			}
		}

		body, err := c.get(ctx, phaseEFetch, "/efetch.fcgi", params)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, fmt.Errorf("fetch interrupted: %w", domain.ErrCancelled)
			}
			lastErr = err
			continue
		}

		records, err := medline.ParseRecords(strings.NewReader(string(body)))
		if err != nil {
			lastErr = domain.NewFetchError(phaseEFetch, 0, "unreadable response", err)
			continue
		}
		return records, nil
	}

	return nil, lastErr
}

// backoffDelay returns the delay before retry attempt n (1-based): base,
// 2*base, 4*base, ...
func (c *Client) backoffDelay(attempt int) time.Duration {
	return c.config.RetryBaseDelay << (attempt - 1)
}

// get performs one rate-limited GET against an endpoint and returns the body.
func (c *Client) get(ctx context.Context, phase, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	params.Set("email", c.config.Email)
	params.Set("tool", c.config.Tool)
	if c.config.APIKey != "" {
		params.Set("api_key", c.config.APIKey)
	}

	u := c.config.BaseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, domain.NewFetchError(phase, 0, "building request", err)
	}

	c.metrics.IncRequest(phase)
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.IncRequestFailed(phase)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, domain.NewFetchError(phase, 0, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		c.metrics.IncRequestFailed(phase)
		return nil, domain.NewFetchError(phase, resp.StatusCode, "reading response", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.metrics.IncRequestFailed(phase)
		return nil, domain.NewFetchError(phase, resp.StatusCode, snippet(body), nil)
	}

	return body, nil
}

// snippet truncates an error body for messages.
func snippet(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max]
	}
	return s
}

// sleepCtx waits for d, respecting context cancellation.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
