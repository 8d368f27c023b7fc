/*
Package extract converts raw daily input into candidate signals for the
fusion engine.

Two sources are provided: an NLP extractor over the free-text narrative,
emoji tokens, and checkbox selections, and a time-series extractor over
the day's metrics and their baseline deviations. Sources are pluggable
behind the Source interface and are always run through Run, which bounds
each call with a timeout and converts failures into an empty candidate
set with a recorded degradation reason. An extractor can degrade the
assessment; it can never fail it.
*/
package extract

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/hea-health/risk-engine/internal/input"
	"github.com/hea-health/risk-engine/internal/risk"
)

// Candidate is a raw detection produced by a source, before calibration.
type Candidate struct {
	// Category is the detector family.
	Category risk.Category

	// Key is a stable dedupe key shared by correlated detections of
	// the same condition.
	Key string

	// Description is a short human-readable explanation.
	Description string

	// Strength is the raw detection strength in [0, 1].
	Strength float64

	// Source names the extractor that produced the candidate.
	Source string
}

// BaselineContext carries the baseline tracker's view of the day's
// metrics into the time-series extractor.
type BaselineContext struct {
	// Deviations maps metric name to its clamped z-like score.
	Deviations map[string]float64

	// LowConfidence is set while the user's baseline is cold-starting;
	// deviation-derived candidates carry reduced strength.
	LowConfidence bool
}

// Source produces candidate signals from one view of the daily input.
type Source interface {
	// Name identifies the source in signals and degradation reasons.
	Name() string

	// Extract returns candidate signals. An empty slice is a valid
	// result and must not be treated as an error.
	Extract(ctx context.Context, in *input.DailyInput, bctx BaselineContext) ([]Candidate, error)
}

// Run invokes every source with a bounded timeout. A source that errors,
// panics, or exceeds the timeout contributes nothing; the reason is
// returned alongside the surviving candidates and logged. Candidates are
// returned in a deterministic order.
func Run(ctx context.Context, sources []Source, in *input.DailyInput, bctx BaselineContext, timeout time.Duration) ([]Candidate, []string) {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	var candidates []Candidate
	var degraded []string

	for _, src := range sources {
		cands, reason := runOne(ctx, src, in, bctx, timeout)
		if reason != "" {
			log.Printf("Warning: extractor %s degraded: %s", src.Name(), reason)
			degraded = append(degraded, fmt.Sprintf("%s: %s", src.Name(), reason))
			continue
		}
		candidates = append(candidates, cands...)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Category != candidates[j].Category {
			return candidates[i].Category < candidates[j].Category
		}
		return candidates[i].Key < candidates[j].Key
	})
	return candidates, degraded
}

// runOne executes a single source, recovering panics and enforcing the
// timeout.
func runOne(ctx context.Context, src Source, in *input.DailyInput, bctx BaselineContext, timeout time.Duration) (cands []Candidate, reason string) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		cands []Candidate
		err   error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		c, err := src.Extract(ctx, in, bctx)
		done <- result{cands: c, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, res.err.Error()
		}
		return res.cands, ""
	case <-ctx.Done():
		return nil, "timed out"
	}
}
