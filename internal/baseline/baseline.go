/*
Package baseline maintains per-user rolling statistical profiles for the
fixed daily metric set, used to detect deviation from a user's own norm
rather than a population norm.

Profiles are updated with an exponentially weighted Welford-style
incremental mean/variance, weighted toward the trailing window, so they
adapt to gradual lifestyle change without storing full history. Users
with too little history fall back to population defaults and carry a
low-confidence flag upward.
*/
package baseline

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// epsilon guards the deviation denominator against a zero stddev.
const epsilon = 1e-6

// Profile is the rolling statistical profile for one user metric.
type Profile struct {
	// Metric is the metric name (see the input package constants).
	Metric string `json:"metric"`

	// Mean is the exponentially weighted rolling mean.
	Mean float64 `json:"mean"`

	// Variance is the exponentially weighted rolling variance.
	Variance float64 `json:"variance"`

	// Count is how many samples have been folded in.
	Count int `json:"count"`

	// WindowDays is the trailing window the decay is tuned to.
	WindowDays int `json:"window_days"`

	// UpdatedAt is when the profile last absorbed a sample.
	UpdatedAt time.Time `json:"updated_at"`
}

// Stddev returns the profile's standard deviation.
func (p Profile) Stddev() float64 {
	if p.Variance <= 0 {
		return 0
	}
	return math.Sqrt(p.Variance)
}

// populationDefault holds the population-level fallback used before a
// user has enough history of their own.
type populationDefault struct {
	mean   float64
	stddev float64
}

// populationDefaults mirrors typical adult ranges for each metric.
var populationDefaults = map[string]populationDefault{
	"sleep_hours":     {mean: 7.5, stddev: 1.5},
	"mood_score":      {mean: 6.0, stddev: 2.0},
	"energy_level":    {mean: 6.0, stddev: 2.0},
	"stress_level":    {mean: 4.0, stddev: 2.0},
	"steps_count":     {mean: 8000, stddev: 3000},
	"water_intake_ml": {mean: 2000, stddev: 700},
}

// Store is the persistence needed by the tracker.
type Store interface {
	// LoadBaselines returns all stored profiles for a user, keyed by
	// metric name.
	LoadBaselines(userID string) (map[string]Profile, error)

	// SaveBaseline persists one profile for a user.
	SaveBaseline(userID string, p Profile) error
}

// Tracker owns the per-user baseline profiles. Updates are serialized
// per user; reads are safe to run concurrently across users.
type Tracker struct {
	store      Store
	windowDays int
	minSamples int
	clamp      float64

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewTracker creates a tracker over the given store.
func NewTracker(store Store, windowDays, minSamples int, clamp float64) *Tracker {
	if windowDays <= 0 {
		windowDays = 30
	}
	if minSamples <= 0 {
		minSamples = 5
	}
	if clamp <= 0 {
		clamp = 4.0
	}
	return &Tracker{
		store:      store,
		windowDays: windowDays,
		minSamples: minSamples,
		clamp:      clamp,
		locks:      make(map[string]*sync.Mutex),
	}
}

// userLock returns the mutex serializing read-modify-write for one user.
func (t *Tracker) userLock(userID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[userID] = l
	}
	return l
}

// Update folds one day's metrics into the user's profiles and returns
// the updated profile set.
func (t *Tracker) Update(userID string, metrics map[string]float64) (map[string]Profile, error) {
	l := t.userLock(userID)
	l.Lock()
	defer l.Unlock()
	return t.updateLocked(userID, metrics, time.Now().UTC())
}

// Deviation returns a z-like score per reported metric, clamped to the
// configured bound, plus a low-confidence flag that is set when any
// metric is still in the cold-start regime.
func (t *Tracker) Deviation(userID string, metrics map[string]float64) (map[string]float64, bool, error) {
	profiles, err := t.store.LoadBaselines(userID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load baselines for %s: %w", userID, err)
	}
	dev, lowConf := t.deviationAgainst(profiles, metrics)
	return dev, lowConf, nil
}

// Observe computes deviations against the current baseline and then
// applies the day's update, all under the per-user lock, so concurrent
// submissions for the same user cannot race on the profile.
func (t *Tracker) Observe(userID string, metrics map[string]float64) (map[string]float64, bool, error) {
	l := t.userLock(userID)
	l.Lock()
	defer l.Unlock()

	profiles, err := t.store.LoadBaselines(userID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load baselines for %s: %w", userID, err)
	}
	dev, lowConf := t.deviationAgainst(profiles, metrics)
	if _, err := t.updateLocked(userID, metrics, time.Now().UTC()); err != nil {
		return nil, false, err
	}
	return dev, lowConf, nil
}

// updateLocked applies the exponentially weighted Welford update for
// each reported metric. Caller must hold the user lock.
func (t *Tracker) updateLocked(userID string, metrics map[string]float64, now time.Time) (map[string]Profile, error) {
	profiles, err := t.store.LoadBaselines(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load baselines for %s: %w", userID, err)
	}
	if profiles == nil {
		profiles = make(map[string]Profile)
	}

	lambda := 2.0 / (float64(t.windowDays) + 1.0)

	for metric, value := range metrics {
		p, ok := profiles[metric]
		if !ok {
			p = Profile{Metric: metric, WindowDays: t.windowDays}
		}

		if p.Count == 0 {
			p.Mean = value
			p.Variance = 0
		} else {
			diff := value - p.Mean
			incr := lambda * diff
			p.Mean += incr
			p.Variance = (1 - lambda) * (p.Variance + diff*incr)
		}
		p.Count++
		p.WindowDays = t.windowDays
		p.UpdatedAt = now

		if err := t.store.SaveBaseline(userID, p); err != nil {
			return nil, fmt.Errorf("failed to save baseline %s/%s: %w", userID, metric, err)
		}
		profiles[metric] = p
	}
	return profiles, nil
}

// deviationAgainst scores each reported metric against the profile set.
func (t *Tracker) deviationAgainst(profiles map[string]Profile, metrics map[string]float64) (map[string]float64, bool) {
	dev := make(map[string]float64, len(metrics))
	lowConfidence := false

	for metric, value := range metrics {
		mean, stddev, cold := t.reference(profiles, metric)
		if cold {
			lowConfidence = true
		}
		z := (value - mean) / math.Max(stddev, epsilon)
		if z > t.clamp {
			z = t.clamp
		}
		if z < -t.clamp {
			z = -t.clamp
		}
		dev[metric] = z
	}
	return dev, lowConfidence
}

// reference picks the mean/stddev to score a metric against: the user's
// own profile once warm, the population default while cold.
func (t *Tracker) reference(profiles map[string]Profile, metric string) (mean, stddev float64, cold bool) {
	if p, ok := profiles[metric]; ok && p.Count >= t.minSamples {
		return p.Mean, p.Stddev(), false
	}
	if d, ok := populationDefaults[metric]; ok {
		return d.mean, d.stddev, true
	}
	return 0, 1, true
}

// MinSamples returns the cold-start cutoff.
func (t *Tracker) MinSamples() int { return t.minSamples }

// Clamp returns the deviation bound.
func (t *Tracker) Clamp() float64 { return t.clamp }
