/*
Package fusion combines candidate signals from the extractors into a
single ranked, weighted risk assessment.

The engine is pure and deterministic: identical candidates and identical
calibration state always produce the same signals, confidence, and risk
level. Confidence uses a probabilistic-OR combination over the calibrated
signal weights, so several independent weak signals converging can cross
a risk threshold just as a single strong one can.
*/
package fusion

import (
	"sort"

	"github.com/hea-health/risk-engine/internal/extract"
	"github.com/hea-health/risk-engine/internal/risk"
)

const (
	// insufficientDataWeight is the weight of the synthesized signal
	// emitted when no extractor produced a candidate.
	insufficientDataWeight = 0.1

	// insufficientDataConfidence is the forced confidence in that case.
	insufficientDataConfidence = 0.1
)

// Engine fuses candidate signals under a calibration state.
type Engine struct {
	maxDisplayed int
	signalGain   float64
}

// NewEngine creates a fusion engine.
//
// maxDisplayed truncates the ranked signal list on the assessment;
// signalGain scales calibrated weights before the confidence
// combination so no single detection dominates the aggregate.
func NewEngine(maxDisplayed int, signalGain float64) *Engine {
	if maxDisplayed <= 0 {
		maxDisplayed = 6
	}
	if signalGain <= 0 || signalGain > 1 {
		signalGain = 0.5
	}
	return &Engine{maxDisplayed: maxDisplayed, signalGain: signalGain}
}

// Result is the fused outcome, before explanation and persistence.
type Result struct {
	// Signals is the ranked, truncated signal list. Never empty.
	Signals []risk.Signal

	// RiskLevel is the mapped level for Confidence.
	RiskLevel risk.Level

	// Confidence is the fused score in [0, 1], computed over all
	// surviving signals including any truncated from display.
	Confidence float64

	// InsufficientData is set when the single synthesized signal was
	// emitted in place of real detections.
	InsufficientData bool
}

// Assess fuses candidates into a result using the given calibration
// state. A nil state behaves as the default calibration.
func (e *Engine) Assess(candidates []extract.Candidate, state *risk.CalibrationState) Result {
	if state == nil {
		state = risk.DefaultCalibration()
	}

	signals := e.calibrate(candidates, state)
	signals = mergeDuplicates(signals)
	sortSignals(signals)

	if len(signals) == 0 {
		return Result{
			Signals: []risk.Signal{{
				Category:    risk.CategoryNLP,
				Key:         risk.InsufficientDataKey,
				Description: "Not enough data to detect meaningful patterns yet",
				Weight:      insufficientDataWeight,
				Source:      "fusion",
			}},
			RiskLevel:        risk.LevelLow,
			Confidence:       insufficientDataConfidence,
			InsufficientData: true,
		}
	}

	// Confidence over every retained signal; display truncation below
	// must not change the aggregate.
	confidence := combineConfidence(signals)

	displayed := signals
	if len(displayed) > e.maxDisplayed {
		displayed = displayed[:e.maxDisplayed]
	}

	return Result{
		Signals:    displayed,
		RiskLevel:  state.Thresholds.Level(confidence),
		Confidence: confidence,
	}
}

// calibrate applies per-category multipliers and the signal gain to the
// raw candidate strengths.
func (e *Engine) calibrate(candidates []extract.Candidate, state *risk.CalibrationState) []risk.Signal {
	signals := make([]risk.Signal, 0, len(candidates))
	for _, c := range candidates {
		w := c.Strength * state.Multiplier(c.Category) * e.signalGain
		if w < 0 {
			w = 0
		}
		if w > 1 {
			w = 1
		}
		if w == 0 {
			continue
		}
		signals = append(signals, risk.Signal{
			Category:    c.Category,
			Key:         c.Key,
			Description: c.Description,
			Weight:      w,
			Source:      c.Source,
		})
	}
	return signals
}

// mergeDuplicates collapses signals sharing a category and key, keeping
// the maximum weight rather than summing so correlated detections are
// not double-counted.
func mergeDuplicates(signals []risk.Signal) []risk.Signal {
	type dedupeKey struct {
		category risk.Category
		key      string
	}
	seen := make(map[dedupeKey]int, len(signals))
	out := signals[:0]
	for _, s := range signals {
		k := dedupeKey{s.Category, s.Key}
		if idx, ok := seen[k]; ok {
			if s.Weight > out[idx].Weight {
				out[idx] = s
			}
			continue
		}
		seen[k] = len(out)
		out = append(out, s)
	}
	return out
}

// sortSignals orders by weight descending, breaking ties by category
// then key so the ordering is fully deterministic.
func sortSignals(signals []risk.Signal) {
	sort.SliceStable(signals, func(i, j int) bool {
		if signals[i].Weight != signals[j].Weight {
			return signals[i].Weight > signals[j].Weight
		}
		if signals[i].Category != signals[j].Category {
			return signals[i].Category < signals[j].Category
		}
		return signals[i].Key < signals[j].Key
	})
}

// combineConfidence computes 1 - prod(1 - w) over the signal weights,
// clamped to [0, 1]. Adding a positive-weight signal can only raise it.
func combineConfidence(signals []risk.Signal) float64 {
	miss := 1.0
	for _, s := range signals {
		miss *= 1.0 - s.Weight
	}
	c := 1.0 - miss
	if c < 0 {
		c = 0
	}
	if c > 1 {
		c = 1
	}
	return c
}
