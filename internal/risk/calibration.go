package risk

const (
	// MultiplierFloor is the lowest allowed per-category weight multiplier.
	MultiplierFloor = 0.25

	// MultiplierCap is the highest allowed per-category weight multiplier.
	MultiplierCap = 2.0

	// thresholdGap is the minimum separation kept between adjacent
	// risk thresholds when clamping.
	thresholdGap = 0.01

	// thresholdCeiling is the highest value ModerateMax may drift to,
	// keeping HIGH reachable.
	thresholdCeiling = 0.98
)

// Thresholds holds the confidence upper bounds for each risk level.
// A confidence c maps to the first level whose bound is >= c, so a value
// sitting exactly on a boundary resolves to the lower level.
type Thresholds struct {
	LowMax      float64 `json:"low_max"`
	WeakMax     float64 `json:"weak_max"`
	ModerateMax float64 `json:"moderate_max"`
}

// DefaultThresholds returns the initial risk boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{LowMax: 0.25, WeakMax: 0.50, ModerateMax: 0.75}
}

// Level maps a confidence score to a risk level under t.
func (t Thresholds) Level(confidence float64) Level {
	switch {
	case confidence <= t.LowMax:
		return LevelLow
	case confidence <= t.WeakMax:
		return LevelWeak
	case confidence <= t.ModerateMax:
		return LevelModerate
	default:
		return LevelHigh
	}
}

// Clamp restores the LowMax < WeakMax < ModerateMax < 1 ordering after a
// calibration update. Violations are corrected silently.
func (t *Thresholds) Clamp() {
	if t.LowMax < thresholdGap {
		t.LowMax = thresholdGap
	}
	if t.ModerateMax > thresholdCeiling {
		t.ModerateMax = thresholdCeiling
	}
	if t.WeakMax <= t.LowMax {
		t.WeakMax = t.LowMax + thresholdGap
	}
	if t.ModerateMax <= t.WeakMax {
		t.ModerateMax = t.WeakMax + thresholdGap
	}
	if t.ModerateMax > thresholdCeiling {
		t.ModerateMax = thresholdCeiling
		if t.WeakMax >= t.ModerateMax {
			t.WeakMax = t.ModerateMax - thresholdGap
		}
		if t.LowMax >= t.WeakMax {
			t.LowMax = t.WeakMax - thresholdGap
		}
	}
}

// LevelStats counts feedback outcomes for one risk level, driving the
// slow threshold drift on sustained rejection.
type LevelStats struct {
	Feedback int `json:"feedback"`
	Rejects  int `json:"rejects"`
}

// CalibrationState is the per-user calibration snapshot read by the
// fusion engine on every assessment and updated by the calibrator after
// each feedback event.
type CalibrationState struct {
	// Multipliers maps a signal category to its weight multiplier,
	// always within [MultiplierFloor, MultiplierCap].
	Multipliers map[Category]float64 `json:"multipliers"`

	// Thresholds are the current risk level boundaries.
	Thresholds Thresholds `json:"thresholds"`

	// Levels tracks feedback counts per risk level name.
	Levels map[string]*LevelStats `json:"levels,omitempty"`

	// AdjustBacklog counts "adjust" feedback held for future model
	// retraining.
	AdjustBacklog int `json:"adjust_backlog,omitempty"`
}

// DefaultCalibration returns the initial calibration state for a user.
func DefaultCalibration() *CalibrationState {
	m := make(map[Category]float64, len(Categories))
	for _, c := range Categories {
		m[c] = 1.0
	}
	return &CalibrationState{
		Multipliers: m,
		Thresholds:  DefaultThresholds(),
		Levels:      make(map[string]*LevelStats),
	}
}

// Multiplier returns the weight multiplier for a category, defaulting
// to 1.0 for categories the state has never seen.
func (s *CalibrationState) Multiplier(c Category) float64 {
	if s == nil || s.Multipliers == nil {
		return 1.0
	}
	m, ok := s.Multipliers[c]
	if !ok {
		return 1.0
	}
	return m
}

// SetMultiplier stores a multiplier for a category, clamped to the
// allowed range.
func (s *CalibrationState) SetMultiplier(c Category, m float64) {
	if s.Multipliers == nil {
		s.Multipliers = make(map[Category]float64)
	}
	if m < MultiplierFloor {
		m = MultiplierFloor
	}
	if m > MultiplierCap {
		m = MultiplierCap
	}
	s.Multipliers[c] = m
}

// Stats returns the feedback counters for a level, creating them on
// first use.
func (s *CalibrationState) Stats(l Level) *LevelStats {
	if s.Levels == nil {
		s.Levels = make(map[string]*LevelStats)
	}
	st, ok := s.Levels[l.String()]
	if !ok {
		st = &LevelStats{}
		s.Levels[l.String()] = st
	}
	return st
}
