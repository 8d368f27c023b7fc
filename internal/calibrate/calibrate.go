/*
Package calibrate adjusts per-user fusion calibration from accumulated
feedback, without touching the underlying extractors.

Confirmations nudge the multipliers of the categories that predicted the
risk upward; rejections nudge them down and, under sustained rejection of
a risk level, slowly raise the bar for that level. All adjustments are
bounded, so repeated confirm/reject cycles converge toward the limits
instead of diverging.
*/
package calibrate

import (
	"fmt"
	"log"
	"sync"

	"github.com/hea-health/risk-engine/internal/risk"
)

const (
	// confirmStep is added to each implicated category multiplier on a
	// confirmation.
	confirmStep = 0.05

	// rejectStep is subtracted on a rejection.
	rejectStep = 0.10

	// driftStep is how far a risk boundary rises per rejection once
	// the drift condition is met.
	driftStep = 0.02

	// driftMinFeedback is the minimum feedback count for a level
	// before its boundary may drift.
	driftMinFeedback = 4

	// driftRejectRate is the reject rate above which drift engages.
	driftRejectRate = 0.5
)

// Store is the persistence needed by the calibrator.
type Store interface {
	// LoadCalibration returns the user's state, or nil when the user
	// has none yet.
	LoadCalibration(userID string) (*risk.CalibrationState, error)

	// SaveCalibration persists the user's state.
	SaveCalibration(userID string, state *risk.CalibrationState) error
}

// Calibrator applies feedback to per-user calibration state. Mutations
// are serialized per user.
type Calibrator struct {
	store Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCalibrator creates a calibrator over the given store.
func NewCalibrator(store Store) *Calibrator {
	return &Calibrator{store: store, locks: make(map[string]*sync.Mutex)}
}

func (c *Calibrator) userLock(userID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[userID] = l
	}
	return l
}

// State returns the user's current calibration, initialized to defaults
// on first use.
func (c *Calibrator) State(userID string) (*risk.CalibrationState, error) {
	state, err := c.store.LoadCalibration(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load calibration for %s: %w", userID, err)
	}
	if state == nil {
		state = risk.DefaultCalibration()
	}
	return state, nil
}

// Apply folds one feedback event into the user's calibration state and
// persists the result. The caller guarantees the feedback record is
// fresh (the store's single-transition feedback write has succeeded),
// which makes the adjustment idempotent per record.
func (c *Calibrator) Apply(assessment *risk.Assessment, feedback risk.FeedbackType) (*risk.CalibrationState, error) {
	l := c.userLock(assessment.UserID)
	l.Lock()
	defer l.Unlock()

	state, err := c.State(assessment.UserID)
	if err != nil {
		return nil, err
	}

	stats := state.Stats(assessment.RiskLevel)
	stats.Feedback++

	switch feedback {
	case risk.FeedbackConfirm:
		for _, cat := range implicatedCategories(assessment) {
			state.SetMultiplier(cat, state.Multiplier(cat)+confirmStep)
		}

	case risk.FeedbackReject:
		stats.Rejects++
		for _, cat := range implicatedCategories(assessment) {
			state.SetMultiplier(cat, state.Multiplier(cat)-rejectStep)
		}
		if stats.Feedback >= driftMinFeedback &&
			float64(stats.Rejects)/float64(stats.Feedback) > driftRejectRate {
			raiseBoundary(&state.Thresholds, assessment.RiskLevel)
		}

	case risk.FeedbackAdjust:
		// Neutral: counted toward the retraining backlog only.
		state.AdjustBacklog++
		log.Printf("adjust feedback recorded for assessment %s (backlog now %d)",
			assessment.ID, state.AdjustBacklog)
	}

	state.Thresholds.Clamp()

	if err := c.store.SaveCalibration(assessment.UserID, state); err != nil {
		return nil, fmt.Errorf("failed to save calibration for %s: %w", assessment.UserID, err)
	}
	return state, nil
}

// implicatedCategories lists the distinct categories present in the
// assessment's ranked signals, skipping the synthesized
// insufficient-data signal.
func implicatedCategories(a *risk.Assessment) []risk.Category {
	seen := make(map[risk.Category]bool, 2)
	var out []risk.Category
	for _, s := range a.Signals {
		if s.Key == risk.InsufficientDataKey {
			continue
		}
		if !seen[s.Category] {
			seen[s.Category] = true
			out = append(out, s.Category)
		}
	}
	return out
}

// raiseBoundary raises the bar for a risk level by lifting the boundary
// below it. LOW has no lower boundary to lift.
func raiseBoundary(t *risk.Thresholds, level risk.Level) {
	switch level {
	case risk.LevelWeak:
		t.LowMax += driftStep
	case risk.LevelModerate:
		t.WeakMax += driftStep
	case risk.LevelHigh:
		t.ModerateMax += driftStep
	}
}
