/*
Package risk defines the value types shared across the fusion pipeline:
signals, risk levels, assessments, feedback, and per-user calibration state.

These are plain value objects. Signals have no identity of their own and
only exist inside an Assessment; an Assessment is immutable once created
except for its feedback field, which transitions exactly once.
*/
package risk

import "time"

// Category identifies which detector family produced a signal.
type Category string

const (
	// CategoryNLP marks signals derived from free-text, emoji, and
	// checkbox analysis.
	CategoryNLP Category = "nlp"

	// CategoryTimeSeries marks signals derived from numeric metric
	// deviation against the user's baseline.
	CategoryTimeSeries Category = "timeseries"
)

// Categories lists all known signal categories in a fixed order.
var Categories = []Category{CategoryNLP, CategoryTimeSeries}

// Level is the ordered risk level of an assessment.
type Level int

const (
	LevelLow Level = iota
	LevelWeak
	LevelModerate
	LevelHigh
)

// String returns the canonical upper-case name of the level.
func (l Level) String() string {
	switch l {
	case LevelLow:
		return "LOW"
	case LevelWeak:
		return "WEAK"
	case LevelModerate:
		return "MODERATE"
	case LevelHigh:
		return "HIGH"
	default:
		return "LOW"
	}
}

// ParseLevel converts a stored level name back to a Level.
// Unknown names map to LOW.
func ParseLevel(s string) Level {
	switch s {
	case "WEAK":
		return LevelWeak
	case "MODERATE":
		return LevelModerate
	case "HIGH":
		return LevelHigh
	default:
		return LevelLow
	}
}

// Signal is a single detected indicator contributing to an assessment.
type Signal struct {
	// Category is the detector family that produced the signal.
	Category Category `json:"category"`

	// Key is a stable identifier used to merge near-duplicate
	// detections of the same condition (e.g. "sleep_low", "fatigue").
	Key string `json:"key"`

	// Description is a short human-readable explanation of the signal.
	Description string `json:"description"`

	// Weight is the post-fusion calibrated weight in [0, 1].
	Weight float64 `json:"weight"`

	// Source identifies the extractor that produced the signal.
	Source string `json:"source"`
}

// InsufficientDataKey is the key of the signal synthesized when no
// extractor produced any candidate.
const InsufficientDataKey = "insufficient_data"

// FeedbackType is the user's verdict on an assessment.
type FeedbackType string

const (
	FeedbackNone    FeedbackType = "none"
	FeedbackConfirm FeedbackType = "confirm"
	FeedbackAdjust  FeedbackType = "adjust"
	FeedbackReject  FeedbackType = "reject"
)

// Valid reports whether t is a terminal feedback type a user may submit.
func (t FeedbackType) Valid() bool {
	switch t {
	case FeedbackConfirm, FeedbackAdjust, FeedbackReject:
		return true
	}
	return false
}

// Assessment is the fused risk evaluation for one daily input.
type Assessment struct {
	// ID is the unique assessment identifier (UUID).
	ID string `json:"id"`

	// UserID is the owning user.
	UserID string `json:"user_id"`

	// Signals is the ranked signal list, weight descending. Never empty.
	Signals []Signal `json:"signals"`

	// RiskLevel is the mapped risk level for Confidence.
	RiskLevel Level `json:"risk_level"`

	// Confidence is the fused confidence score in [0, 1].
	Confidence float64 `json:"confidence"`

	// Explanation is the generated human-readable paragraph.
	Explanation string `json:"explanation"`

	// Feedback is the user's verdict; starts at "none" and transitions
	// at most once.
	Feedback FeedbackType `json:"feedback"`

	// Degraded lists extractor degradation reasons recorded while
	// computing this assessment, if any.
	Degraded []string `json:"degraded,omitempty"`

	// CreatedAt is when the assessment was computed.
	CreatedAt time.Time `json:"created_at"`
}

// DominantCategory returns the category of the highest-weighted signal.
func (a *Assessment) DominantCategory() Category {
	if len(a.Signals) == 0 {
		return CategoryNLP
	}
	return a.Signals[0].Category
}

// FeedbackRecord captures one feedback submission against an assessment.
type FeedbackRecord struct {
	// ID is the unique record identifier (UUID).
	ID string `json:"id"`

	// AssessmentID references the assessment being judged.
	AssessmentID string `json:"assessment_id"`

	// UserID is the submitting user.
	UserID string `json:"user_id"`

	// Type is the feedback verdict.
	Type FeedbackType `json:"type"`

	// Comment is an optional free-text correction.
	Comment string `json:"comment,omitempty"`

	// CreatedAt is when the feedback was submitted.
	CreatedAt time.Time `json:"created_at"`
}
