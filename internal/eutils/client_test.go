package eutils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/oculit/ophtha-fetcher/internal/domain"
	"github.com/oculit/ophtha-fetcher/internal/observability"
)

const esearchPayload = `<?xml version="1.0" encoding="UTF-8"?>
<eSearchResult>
  <Count>213</Count>
  <RetMax>3</RetMax>
  <RetStart>0</RetStart>
  <IdList>
    <Id>38900001</Id>
    <Id>38900002</Id>
    <Id>38900003</Id>
  </IdList>
</eSearchResult>`

const phraseNotFoundPayload = `<?xml version="1.0" encoding="UTF-8"?>
<eSearchResult>
  <Count>0</Count>
  <RetMax>0</RetMax>
  <RetStart>0</RetStart>
  <IdList></IdList>
  <ErrorList>
    <PhraseNotFound>zxqvnothing</PhraseNotFound>
  </ErrorList>
</eSearchResult>`

const medlinePayload = `PMID- 38900001
TI  - First record.
DP  - 2024 Mar 15

PMID- 38900002
TI  - Second record.
DP  - 2024 Mar 14
`

// countingLimiter counts Wait calls without blocking.
type countingLimiter struct{ waits atomic.Int64 }

func (l *countingLimiter) Wait(context.Context) error {
	l.waits.Add(1)
	return nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *countingLimiter) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	limiter := &countingLimiter{}
	base := []Option{
		WithLimiter(limiter),
		withSleep(func(context.Context, time.Duration) error { return nil }),
	}
	cfg := Config{BaseURL: srv.URL, Email: "reader@example.org", APIKey: "secret-key"}
	return New(cfg, zerolog.Nop(), append(base, opts...)...), limiter
}

func TestSearch(t *testing.T) {
	var gotQuery map[string]string
	client, limiter := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/esearch.fcgi", r.URL.Path)
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Write([]byte(esearchPayload))
	})

	ids, count, err := client.Search(context.Background(), `glaucoma[Title/Abstract]`, 500)
	require.NoError(t, err)

	assert.Equal(t, []string{"38900001", "38900002", "38900003"}, ids)
	assert.Equal(t, 213, count)

	assert.Equal(t, "pubmed", gotQuery["db"])
	assert.Equal(t, `glaucoma[Title/Abstract]`, gotQuery["term"])
	assert.Equal(t, "500", gotQuery["retmax"])
	assert.Equal(t, "pub_date", gotQuery["sort"])
	assert.Equal(t, "n", gotQuery["usehistory"])
	assert.Equal(t, "reader@example.org", gotQuery["email"])
	assert.Equal(t, "ophtha-fetcher", gotQuery["tool"])
	assert.Equal(t, "secret-key", gotQuery["api_key"])

	assert.Equal(t, int64(1), limiter.waits.Load(), "every request passes through the limiter")
}

func TestSearchCapsRetmax(t *testing.T) {
	var gotRetmax string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotRetmax = r.URL.Query().Get("retmax")
		w.Write([]byte(esearchPayload))
	})

	_, _, err := client.Search(context.Background(), "retina", MaxIDsLimit*10)
	require.NoError(t, err)
	assert.Equal(t, "100000", gotRetmax)
}

func TestSearchPhraseNotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(phraseNotFoundPayload))
	})

	ids, count, err := client.Search(context.Background(), "zxqvnothing", 100)
	require.NoError(t, err, "a phrase-not-found diagnostic is an empty result")
	assert.Empty(t, ids)
	assert.Zero(t, count)
}

func TestSearchServerErrorIsSingleShot(t *testing.T) {
	var calls atomic.Int64
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	})

	_, _, err := client.Search(context.Background(), "retina", 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetch)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "esearch", fetchErr.Phase)
	assert.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)

	assert.Equal(t, int64(1), calls.Load(), "search never retries")
}

func TestFetchBatches(t *testing.T) {
	var ids []string
	client, limiter := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/efetch.fcgi", r.URL.Path)
		assert.Equal(t, "medline", r.URL.Query().Get("rettype"))
		assert.Equal(t, "text", r.URL.Query().Get("retmode"))
		ids = append(ids, r.URL.Query().Get("id"))
		w.Write([]byte(medlinePayload))
	})
	client.config.BatchSize = 2

	var progress [][2]int
	pmids := []string{"1", "2", "3", "4", "5"}
	records, err := client.Fetch(context.Background(), pmids, func(done, total int) {
		progress = append(progress, [2]int{done, total})
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"1,2", "3,4", "5"}, ids)
	assert.Len(t, records, 6, "two records per batch response")
	assert.Equal(t, [][2]int{{2, 5}, {4, 5}, {5, 5}}, progress)
	assert.Equal(t, int64(3), limiter.waits.Load())
}

func TestFetchEmptyInput(t *testing.T) {
	client, limiter := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Fail(t, "no request expected")
	})

	records, err := client.Fetch(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Zero(t, limiter.waits.Load())
}

func TestFetchRetryBackoff(t *testing.T) {
	var calls atomic.Int64
	var slept []time.Duration

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			http.Error(w, "overloaded", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(medlinePayload))
	}))
	t.Cleanup(srv.Close)

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	cfg := Config{BaseURL: srv.URL, Email: "reader@example.org"}
	client := New(cfg, zerolog.Nop(),
		WithLimiter(&countingLimiter{}),
		WithMetrics(metrics),
		withSleep(func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		}),
	)

	records, err := client.Fetch(context.Background(), []string{"1", "2"}, nil)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, slept)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.RetriesTotal), 0.001)
}

func TestFetchRetriesExhausted(t *testing.T) {
	var calls atomic.Int64
	var slept []time.Duration
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "overloaded", http.StatusInternalServerError)
	}, withSleep(func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}))

	_, err := client.Fetch(context.Background(), []string{"1"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetch)

	assert.Equal(t, int64(4), calls.Load(), "initial attempt plus three retries")
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, slept)
}

func TestFetchCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusInternalServerError)
	}, withSleep(func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	_, err := client.Fetch(ctx, []string{"1"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCancelled)
}

func TestFetchCancelledBetweenBatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		cancel()
		w.Write([]byte(medlinePayload))
	})
	client.config.BatchSize = 1

	_, err := client.Fetch(ctx, []string{"1", "2"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCancelled)
}

func TestProcessLimiterSpacing(t *testing.T) {
	l := rate.NewLimiter(rate.Every(MinRequestSpacing), 1)
	now := time.Now()

	first := l.ReserveN(now, 1)
	require.True(t, first.OK())
	assert.Zero(t, first.DelayFrom(now))

	second := l.ReserveN(now, 1)
	require.True(t, second.OK())
	assert.GreaterOrEqual(t, second.DelayFrom(now), MinRequestSpacing)
}

func TestProcessLimiterIsShared(t *testing.T) {
	assert.Same(t, ProcessLimiter(), ProcessLimiter())
}
