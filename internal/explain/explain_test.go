package explain

import (
	"strings"
	"testing"

	"github.com/hea-health/risk-engine/internal/risk"
)

func TestExplain_NamesTopSignals(t *testing.T) {
	signals := []risk.Signal{
		{Category: risk.CategoryTimeSeries, Key: "sleep_low",
			Description: "Your sleep was well below your usual amount", Weight: 0.31},
		{Category: risk.CategoryNLP, Key: "fatigue",
			Description: "You mentioned feeling tired or low on energy", Weight: 0.30},
	}

	text := Explain(risk.LevelModerate, signals)

	if !strings.Contains(text, "sleep was well below your usual amount") {
		t.Errorf("explanation should mention the sleep signal: %q", text)
	}
	if !strings.Contains(text, "feeling tired or low on energy") {
		t.Errorf("explanation should mention the fatigue signal: %q", text)
	}
	if !strings.Contains(text, "changes in your daily metrics") {
		t.Errorf("explanation should attribute the strongest signal's category: %q", text)
	}
}

func TestExplain_LimitsNamedSignals(t *testing.T) {
	signals := []risk.Signal{
		{Category: risk.CategoryNLP, Key: "a", Description: "first finding", Weight: 0.5},
		{Category: risk.CategoryNLP, Key: "b", Description: "second finding", Weight: 0.4},
		{Category: risk.CategoryNLP, Key: "c", Description: "third finding", Weight: 0.3},
		{Category: risk.CategoryNLP, Key: "d", Description: "fourth finding", Weight: 0.2},
	}

	text := Explain(risk.LevelWeak, signals)

	if !strings.Contains(text, "third finding") {
		t.Errorf("expected third signal named: %q", text)
	}
	if strings.Contains(text, "fourth finding") {
		t.Errorf("expected at most three signals named: %q", text)
	}
}

func TestExplain_FramingMatchesLevel(t *testing.T) {
	signals := []risk.Signal{
		{Category: risk.CategoryNLP, Key: "fatigue", Description: "You mentioned feeling tired", Weight: 0.3},
	}

	weak := Explain(risk.LevelWeak, signals)
	high := Explain(risk.LevelHigh, signals)

	if weak == high {
		t.Error("expected different framing per risk level")
	}
	if !strings.Contains(high, "healthcare professional") {
		t.Errorf("HIGH explanation should suggest professional review: %q", high)
	}
	if strings.Contains(weak, "healthcare professional") {
		t.Errorf("WEAK explanation should stay low-key: %q", weak)
	}
}

func TestExplain_NonClinicalLanguage(t *testing.T) {
	signals := []risk.Signal{
		{Category: risk.CategoryTimeSeries, Key: "sleep_low",
			Description: "Your sleep was well below your usual amount", Weight: 0.6},
	}

	for _, level := range []risk.Level{risk.LevelLow, risk.LevelWeak, risk.LevelModerate, risk.LevelHigh} {
		text := strings.ToLower(Explain(level, signals))
		for _, banned := range []string{"diagnos", "disease", "z-score", "probability"} {
			// "not a diagnosis" disclaimer is the one allowed use.
			if strings.Contains(text, banned) && !strings.Contains(text, "not a diagnosis") {
				t.Errorf("%s explanation uses clinical term %q: %q", level, banned, text)
			}
		}
	}
}

func TestExplain_InsufficientData(t *testing.T) {
	signals := []risk.Signal{
		{Category: risk.CategoryTimeSeries, Key: risk.InsufficientDataKey,
			Description: "Not enough data to assess today", Weight: 0.1},
	}

	text := Explain(risk.LevelLow, signals)

	if !strings.Contains(text, "enough information") {
		t.Errorf("expected insufficient-data wording: %q", text)
	}
	if !strings.Contains(text, "Keep logging") {
		t.Errorf("expected encouragement to keep logging: %q", text)
	}
}

func TestExplain_EmptySignals(t *testing.T) {
	text := Explain(risk.LevelLow, nil)
	if text == "" {
		t.Fatal("expected a fallback explanation for empty signals")
	}
	if !strings.Contains(text, "enough information") {
		t.Errorf("expected insufficient-data wording: %q", text)
	}
}

func TestExplain_Deterministic(t *testing.T) {
	signals := []risk.Signal{
		{Category: risk.CategoryNLP, Key: "fatigue", Description: "You mentioned feeling tired", Weight: 0.3},
		{Category: risk.CategoryTimeSeries, Key: "sleep_low", Description: "Your sleep dipped", Weight: 0.25},
	}

	if Explain(risk.LevelWeak, signals) != Explain(risk.LevelWeak, signals) {
		t.Error("expected identical output for identical input")
	}
}
