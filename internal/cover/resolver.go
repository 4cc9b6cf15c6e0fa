package cover

import (
	"context"

	"paperpharmacy/internal/logging"
	"paperpharmacy/internal/metrics"
)

// Prober tests whether a URL loads as an image without displaying it.
type Prober interface {
	Probe(ctx context.Context, url string) error
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context, url string) error

func (f ProberFunc) Probe(ctx context.Context, url string) error { return f(ctx, url) }

// Outcome is the terminal result of one resolution cycle: either a URL
// to display or the fallback signal. Never both.
type Outcome struct {
	URL      string `json:"url,omitempty"`
	Fallback bool   `json:"fallback"`
}

// FallbackOutcome signals that the generated placeholder should be shown.
var FallbackOutcome = Outcome{Fallback: true}

// Resolver races probes over candidate URLs.
type Resolver struct {
	prober Prober
}

// NewResolver creates a resolver using p for probing.
func NewResolver(p Prober) *Resolver {
	return &Resolver{prober: p}
}

type probeResult struct {
	url string
	err error
}

// Resolve probes every candidate concurrently and returns the first one
// that succeeds, regardless of its position in the list. Fallback is
// reported only after every probe has failed, or immediately when there
// are no candidates. Probes still in flight after a winner is chosen
// are not cancelled; their results are dropped.
func (r *Resolver) Resolve(ctx context.Context, candidates []string) Outcome {
	if len(candidates) == 0 {
		metrics.CoverResolutions.WithLabelValues("empty").Inc()
		return FallbackOutcome
	}

	// Buffered so losing probes can always deliver and exit.
	results := make(chan probeResult, len(candidates))
	for _, u := range candidates {
		go func(u string) {
			results <- probeResult{url: u, err: r.prober.Probe(ctx, u)}
		}(u)
	}

	for remaining := len(candidates); remaining > 0; remaining-- {
		select {
		case res := <-results:
			if res.err == nil {
				metrics.CoverProbes.WithLabelValues("success").Inc()
				metrics.CoverResolutions.WithLabelValues("resolved").Inc()
				return Outcome{URL: res.url}
			}
			metrics.CoverProbes.WithLabelValues("failure").Inc()
			logging.Ctx(ctx).Debug().Str("url", res.url).Err(res.err).Msg("cover probe failed")
		case <-ctx.Done():
			metrics.CoverResolutions.WithLabelValues("cancelled").Inc()
			return FallbackOutcome
		}
	}

	metrics.CoverResolutions.WithLabelValues("fallback").Inc()
	return FallbackOutcome
}
