package baseline

import (
	"math"
	"sync"
	"testing"
)

// memStore is an in-memory baseline store for tests.
type memStore struct {
	mu       sync.Mutex
	profiles map[string]map[string]Profile
}

func newMemStore() *memStore {
	return &memStore{profiles: make(map[string]map[string]Profile)}
}

func (m *memStore) LoadBaselines(userID string) (map[string]Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]Profile)
	for k, v := range m.profiles[userID] {
		out[k] = v
	}
	return out, nil
}

func (m *memStore) SaveBaseline(userID string, p Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profiles[userID] == nil {
		m.profiles[userID] = make(map[string]Profile)
	}
	m.profiles[userID][p.Metric] = p
	return nil
}

func TestDeviation_ColdStartUsesPopulationDefaults(t *testing.T) {
	tracker := NewTracker(newMemStore(), 30, 5, 4.0)

	dev, lowConfidence, err := tracker.Deviation("u1", map[string]float64{"sleep_hours": 4.5})
	if err != nil {
		t.Fatalf("Deviation failed: %v", err)
	}

	if !lowConfidence {
		t.Error("expected low confidence flag with no history")
	}
	// Population default for sleep is 7.5 +/- 1.5 -> z = -2.
	if math.Abs(dev["sleep_hours"]-(-2.0)) > 1e-9 {
		t.Errorf("expected deviation -2.0, got %f", dev["sleep_hours"])
	}
}

func TestDeviation_ClampedToBound(t *testing.T) {
	tracker := NewTracker(newMemStore(), 30, 5, 4.0)

	dev, _, err := tracker.Deviation("u1", map[string]float64{"sleep_hours": 24})
	if err != nil {
		t.Fatalf("Deviation failed: %v", err)
	}
	if dev["sleep_hours"] != 4.0 {
		t.Errorf("expected deviation clamped to 4.0, got %f", dev["sleep_hours"])
	}

	dev, _, err = tracker.Deviation("u1", map[string]float64{"mood_score": -100})
	if err != nil {
		t.Fatalf("Deviation failed: %v", err)
	}
	if dev["mood_score"] != -4.0 {
		t.Errorf("expected deviation clamped to -4.0, got %f", dev["mood_score"])
	}
}

func TestUpdate_IncrementalMeanAndVariance(t *testing.T) {
	tracker := NewTracker(newMemStore(), 30, 5, 4.0)

	for _, v := range []float64{6, 8, 6, 8, 6, 8} {
		if _, err := tracker.Update("u1", map[string]float64{"sleep_hours": v}); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}

	profiles, err := tracker.store.LoadBaselines("u1")
	if err != nil {
		t.Fatalf("LoadBaselines failed: %v", err)
	}
	p := profiles["sleep_hours"]

	if p.Count != 6 {
		t.Errorf("expected 6 samples, got %d", p.Count)
	}
	if p.Mean <= 6 || p.Mean >= 8 {
		t.Errorf("expected mean between samples, got %f", p.Mean)
	}
	if p.Variance <= 0 {
		t.Errorf("expected positive variance for alternating samples, got %f", p.Variance)
	}
}

func TestDeviation_WarmAfterMinSamples(t *testing.T) {
	tracker := NewTracker(newMemStore(), 30, 5, 4.0)

	for _, v := range []float64{6.5, 7.5, 6.5, 7.5, 6.5} {
		if _, err := tracker.Update("u1", map[string]float64{"sleep_hours": v}); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}

	dev, lowConfidence, err := tracker.Deviation("u1", map[string]float64{"sleep_hours": 5.5})
	if err != nil {
		t.Fatalf("Deviation failed: %v", err)
	}

	if lowConfidence {
		t.Error("expected warm baseline after min samples")
	}
	if dev["sleep_hours"] >= 0 {
		t.Errorf("expected negative deviation for short sleep, got %f", dev["sleep_hours"])
	}
}

func TestObserve_DeviationAgainstPreUpdateBaseline(t *testing.T) {
	store := newMemStore()
	tracker := NewTracker(store, 30, 5, 4.0)

	for _, v := range []float64{6.5, 7.5, 6.5, 7.5, 6.5} {
		if _, err := tracker.Update("u1", map[string]float64{"sleep_hours": v}); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}
	before, _ := store.LoadBaselines("u1")

	dev, _, err := tracker.Observe("u1", map[string]float64{"sleep_hours": 5.5})
	if err != nil {
		t.Fatalf("Observe failed: %v", err)
	}

	// The deviation must be scored against the profile as it was
	// before today's value was folded in.
	expected := (5.5 - before["sleep_hours"].Mean) / math.Max(before["sleep_hours"].Stddev(), 1e-6)
	if expected < -4 {
		expected = -4
	}
	if math.Abs(dev["sleep_hours"]-expected) > 1e-9 {
		t.Errorf("expected deviation %f against pre-update mean, got %f", expected, dev["sleep_hours"])
	}

	after, _ := store.LoadBaselines("u1")
	if after["sleep_hours"].Count != before["sleep_hours"].Count+1 {
		t.Error("expected Observe to fold the sample into the baseline")
	}
}

func TestObserve_ConcurrentSameUser(t *testing.T) {
	tracker := NewTracker(newMemStore(), 30, 5, 4.0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := tracker.Observe("u1", map[string]float64{"sleep_hours": 7}); err != nil {
				t.Errorf("Observe failed: %v", err)
			}
		}()
	}
	wg.Wait()

	profiles, _ := tracker.store.LoadBaselines("u1")
	if profiles["sleep_hours"].Count != 20 {
		t.Errorf("expected 20 samples after concurrent submissions, got %d", profiles["sleep_hours"].Count)
	}
}

func TestDeviation_UnknownMetricStaysBounded(t *testing.T) {
	tracker := NewTracker(newMemStore(), 30, 5, 4.0)

	dev, lowConfidence, err := tracker.Deviation("u1", map[string]float64{"mystery": 3})
	if err != nil {
		t.Fatalf("Deviation failed: %v", err)
	}
	if !lowConfidence {
		t.Error("expected low confidence for unknown metric")
	}
	if dev["mystery"] > 4 || dev["mystery"] < -4 {
		t.Errorf("deviation out of clamp range: %f", dev["mystery"])
	}
}
