// Package eutils implements the two-phase NCBI E-utilities protocol:
// esearch for PMIDs, efetch for MEDLINE records.
package eutils

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// MinRequestSpacing is the minimum time between remote calls. NCBI allows at
// most 3 requests per second without an API key.
const MinRequestSpacing = 300 * time.Millisecond

// Limiter gates remote calls. Implementations must be safe for concurrent use.
type Limiter interface {
	// Wait blocks until a request is allowed or the context is canceled.
	Wait(ctx context.Context) error
}

// processLimiter enforces the request spacing per process, not per client:
// the service rate-limits by caller, so concurrent pipelines share one budget.
var processLimiter = rate.NewLimiter(rate.Every(MinRequestSpacing), 1)

// ProcessLimiter returns the process-wide limiter shared by all clients.
func ProcessLimiter() Limiter {
	return processLimiter
}
