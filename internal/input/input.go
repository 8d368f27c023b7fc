/*
Package input defines the daily health input submitted by a user and the
validation applied before anything enters the fusion pipeline.

A DailyInput is immutable once submitted. Malformed or out-of-range fields
are rejected here; they never reach the extractors or the fusion engine.
*/
package input

import (
	"fmt"
	"time"
)

// MaxSymptomTextLength bounds the free-text narrative.
const MaxSymptomTextLength = 5000

// Source identifies where a daily input was submitted from.
type Source string

const (
	SourceWeb      Source = "web"
	SourceWhatsApp Source = "whatsapp"
	SourceVoice    Source = "voice"
)

// Valid reports whether s is a known input source.
func (s Source) Valid() bool {
	switch s {
	case SourceWeb, SourceWhatsApp, SourceVoice:
		return true
	}
	return false
}

// Metric names for the fixed numeric metric set.
const (
	MetricSleepHours    = "sleep_hours"
	MetricMoodScore     = "mood_score"
	MetricEnergyLevel   = "energy_level"
	MetricStressLevel   = "stress_level"
	MetricStepsCount    = "steps_count"
	MetricWaterIntakeML = "water_intake_ml"
)

// MetricNames lists all metrics in a fixed order.
var MetricNames = []string{
	MetricSleepHours,
	MetricMoodScore,
	MetricEnergyLevel,
	MetricStressLevel,
	MetricStepsCount,
	MetricWaterIntakeML,
}

// Metrics holds the day's numeric measurements. Nil fields were not
// reported.
type Metrics struct {
	SleepHours    *float64 `json:"sleep_hours,omitempty"`
	MoodScore     *int     `json:"mood_score,omitempty"`
	EnergyLevel   *int     `json:"energy_level,omitempty"`
	StressLevel   *int     `json:"stress_level,omitempty"`
	StepsCount    *int     `json:"steps_count,omitempty"`
	WaterIntakeML *int     `json:"water_intake_ml,omitempty"`
}

// Values returns the reported metrics as a name -> value map, omitting
// fields the user did not fill in.
func (m Metrics) Values() map[string]float64 {
	out := make(map[string]float64, 6)
	if m.SleepHours != nil {
		out[MetricSleepHours] = *m.SleepHours
	}
	if m.MoodScore != nil {
		out[MetricMoodScore] = float64(*m.MoodScore)
	}
	if m.EnergyLevel != nil {
		out[MetricEnergyLevel] = float64(*m.EnergyLevel)
	}
	if m.StressLevel != nil {
		out[MetricStressLevel] = float64(*m.StressLevel)
	}
	if m.StepsCount != nil {
		out[MetricStepsCount] = float64(*m.StepsCount)
	}
	if m.WaterIntakeML != nil {
		out[MetricWaterIntakeML] = float64(*m.WaterIntakeML)
	}
	return out
}

// DailyInput is one self-reported health submission.
type DailyInput struct {
	// UserID is the submitting user.
	UserID string `json:"user_id"`

	// SymptomText is the optional free-text symptom narrative,
	// sanitized before storage.
	SymptomText string `json:"symptom_text,omitempty"`

	// EmojiInputs holds descriptive emoji tokens (e.g. "tired face").
	EmojiInputs []string `json:"emoji_inputs,omitempty"`

	// CheckboxSelections holds predefined symptom category keys.
	CheckboxSelections []string `json:"checkbox_selections,omitempty"`

	// Metrics are the day's numeric measurements.
	Metrics Metrics `json:"metrics"`

	// Source is where the input came from.
	Source Source `json:"source"`

	// CreatedAt is when the input was submitted.
	CreatedAt time.Time `json:"created_at"`
}

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks field bounds and normalizes the narrative. It returns
// a *ValidationError for the first violation found.
func (in *DailyInput) Validate() error {
	if in.UserID == "" {
		return &ValidationError{Field: "user_id", Reason: "required"}
	}
	if in.Source == "" {
		in.Source = SourceWeb
	}
	if !in.Source.Valid() {
		return &ValidationError{Field: "source", Reason: fmt.Sprintf("unknown source %q", in.Source)}
	}
	if len(in.SymptomText) > MaxSymptomTextLength {
		return &ValidationError{Field: "symptom_text", Reason: fmt.Sprintf("exceeds %d characters", MaxSymptomTextLength)}
	}
	in.SymptomText = SanitizeText(in.SymptomText)

	m := in.Metrics
	if m.SleepHours != nil && (*m.SleepHours < 0 || *m.SleepHours > 24) {
		return &ValidationError{Field: MetricSleepHours, Reason: "must be between 0 and 24"}
	}
	if m.MoodScore != nil && (*m.MoodScore < 1 || *m.MoodScore > 10) {
		return &ValidationError{Field: MetricMoodScore, Reason: "must be between 1 and 10"}
	}
	if m.EnergyLevel != nil && (*m.EnergyLevel < 1 || *m.EnergyLevel > 10) {
		return &ValidationError{Field: MetricEnergyLevel, Reason: "must be between 1 and 10"}
	}
	if m.StressLevel != nil && (*m.StressLevel < 1 || *m.StressLevel > 10) {
		return &ValidationError{Field: MetricStressLevel, Reason: "must be between 1 and 10"}
	}
	if m.StepsCount != nil && *m.StepsCount < 0 {
		return &ValidationError{Field: MetricStepsCount, Reason: "must be non-negative"}
	}
	if m.WaterIntakeML != nil && *m.WaterIntakeML < 0 {
		return &ValidationError{Field: MetricWaterIntakeML, Reason: "must be non-negative"}
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now().UTC()
	}
	return nil
}
