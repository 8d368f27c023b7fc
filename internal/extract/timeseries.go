package extract

import (
	"context"
	"fmt"
	"math"

	"github.com/hea-health/risk-engine/internal/input"
	"github.com/hea-health/risk-engine/internal/risk"
)

const (
	// deviationEmitThreshold is the |z| above which a metric deviation
	// becomes a candidate signal.
	deviationEmitThreshold = 1.5

	// deviationScale normalizes |z| into a raw strength; matches the
	// baseline tracker's clamp so strength saturates at 1.0.
	deviationScale = 4.0

	// coldStartFactor reduces deviation-derived strengths while the
	// user's baseline is still cold-starting.
	coldStartFactor = 0.5
)

// metricRule describes which deviation directions matter for a metric
// and how to phrase them.
type metricRule struct {
	lowKey   string
	lowDesc  string
	highKey  string
	highDesc string
}

// metricRules lists the deviation phrasing per metric. An empty key
// means that direction is not a health signal for the metric.
var metricRules = map[string]metricRule{
	input.MetricSleepHours: {
		lowKey: "sleep_low", lowDesc: "Your sleep was well below your usual amount",
		highKey: "sleep_high", highDesc: "You slept noticeably more than usual, which can accompany fatigue",
	},
	input.MetricMoodScore: {
		lowKey: "mood_low", lowDesc: "Your mood was below your usual range",
	},
	input.MetricEnergyLevel: {
		lowKey: "energy_low", lowDesc: "Your energy was below your usual range",
	},
	input.MetricStressLevel: {
		highKey: "stress_high", highDesc: "Your stress was well above your usual level",
	},
	input.MetricStepsCount: {
		lowKey: "activity_low", lowDesc: "Your activity was well below your usual level",
	},
	input.MetricWaterIntakeML: {
		lowKey: "hydration_low", lowDesc: "Your water intake was well below your usual amount",
	},
}

// absoluteRule flags a metric value that is concerning regardless of the
// user's personal baseline.
type absoluteRule struct {
	key      string
	desc     string
	strength float64
	match    func(v float64) bool
}

// absoluteRules are population-level floor checks. They share keys with
// the deviation rules so fusion keeps the stronger of the two.
var absoluteRules = map[string][]absoluteRule{
	input.MetricSleepHours: {
		{"sleep_low", "Critically short sleep (under 4 hours)", 0.7, func(v float64) bool { return v < 4 }},
		{"sleep_low", "Short sleep (under 6 hours)", 0.4, func(v float64) bool { return v >= 4 && v < 6 }},
		{"sleep_high", "Unusually long sleep (over 12 hours)", 0.5, func(v float64) bool { return v > 12 }},
	},
	input.MetricMoodScore: {
		{"mood_low", "Very low mood score", 0.6, func(v float64) bool { return v <= 2 }},
		{"mood_low", "Low mood score", 0.35, func(v float64) bool { return v > 2 && v <= 4 }},
	},
	input.MetricEnergyLevel: {
		{"energy_low", "Low energy level", 0.4, func(v float64) bool { return v <= 3 }},
	},
	input.MetricStressLevel: {
		{"stress_high", "High stress level", 0.5, func(v float64) bool { return v >= 8 }},
	},
}

// TimeSeriesExtractor turns baseline deviations and absolute metric
// floors into candidate signals. It stands in for the trained sequence
// model behind the same output contract.
type TimeSeriesExtractor struct{}

// NewTimeSeriesExtractor creates the metric deviation extractor.
func NewTimeSeriesExtractor() *TimeSeriesExtractor { return &TimeSeriesExtractor{} }

// Name implements Source.
func (e *TimeSeriesExtractor) Name() string { return "timeseries" }

// Extract implements Source.
func (e *TimeSeriesExtractor) Extract(ctx context.Context, in *input.DailyInput, bctx BaselineContext) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	values := in.Metrics.Values()
	var out []Candidate

	// Personal deviation signals.
	for _, metric := range input.MetricNames {
		z, ok := bctx.Deviations[metric]
		if !ok || math.Abs(z) < deviationEmitThreshold {
			continue
		}
		rule := metricRules[metric]
		key, desc := rule.lowKey, rule.lowDesc
		if z > 0 {
			key, desc = rule.highKey, rule.highDesc
		}
		if key == "" {
			continue
		}
		strength := math.Min(math.Abs(z), deviationScale) / deviationScale
		if bctx.LowConfidence {
			strength *= coldStartFactor
		}
		out = append(out, Candidate{
			Category:    risk.CategoryTimeSeries,
			Key:         key,
			Description: fmt.Sprintf("%s (%.1f standard deviations from your baseline)", desc, math.Abs(z)),
			Strength:    strength,
			Source:      e.Name(),
		})
	}

	// Absolute floor signals, independent of baseline history.
	for _, metric := range input.MetricNames {
		v, ok := values[metric]
		if !ok {
			continue
		}
		for _, rule := range absoluteRules[metric] {
			if rule.match(v) {
				out = append(out, Candidate{
					Category:    risk.CategoryTimeSeries,
					Key:         rule.key,
					Description: rule.desc,
					Strength:    rule.strength,
					Source:      e.Name(),
				})
			}
		}
	}

	return out, nil
}
