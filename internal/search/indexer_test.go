package search

import (
	"testing"
	"time"

	"github.com/hea-health/risk-engine/internal/risk"
)

func indexedAssessment(id, explanation string, signals ...string) *risk.Assessment {
	a := &risk.Assessment{
		ID:          id,
		UserID:      "u1",
		RiskLevel:   risk.LevelWeak,
		Confidence:  0.3,
		Explanation: explanation,
		CreatedAt:   time.Now().UTC(),
	}
	for _, desc := range signals {
		a.Signals = append(a.Signals, risk.Signal{
			Category:    risk.CategoryNLP,
			Key:         "k",
			Description: desc,
			Weight:      0.3,
		})
	}
	return a
}

func TestSearch_MatchesExplanationText(t *testing.T) {
	idx, err := NewIndexer()
	if err != nil {
		t.Fatalf("NewIndexer failed: %v", err)
	}
	defer idx.Close()

	err = idx.IndexAssessments([]*risk.Assessment{
		indexedAssessment("a1", "Your sleep was well below your usual amount"),
		indexedAssessment("a2", "Your stress was well above your usual level"),
	})
	if err != nil {
		t.Fatalf("IndexAssessments failed: %v", err)
	}

	matches, err := idx.Search("sleep", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(matches) != 1 {
		t.Fatalf("expected 1 match for 'sleep', got %d", len(matches))
	}
	if matches[0].AssessmentID != "a1" {
		t.Errorf("expected a1, got %s", matches[0].AssessmentID)
	}
}

func TestSearch_MatchesSignalDescriptions(t *testing.T) {
	idx, err := NewIndexer()
	if err != nil {
		t.Fatalf("NewIndexer failed: %v", err)
	}
	defer idx.Close()

	err = idx.IndexAssessments([]*risk.Assessment{
		indexedAssessment("a1", "Some subtle signals were noticed",
			"You mentioned feeling tired or low on energy"),
		indexedAssessment("a2", "Some subtle signals were noticed",
			"Your water intake was well below your usual amount"),
	})
	if err != nil {
		t.Fatalf("IndexAssessments failed: %v", err)
	}

	matches, err := idx.Search("tired", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(matches) != 1 || matches[0].AssessmentID != "a1" {
		t.Errorf("expected only a1 for 'tired', got %v", matches)
	}
}

func TestSearch_NoMatches(t *testing.T) {
	idx, err := NewIndexer()
	if err != nil {
		t.Fatalf("NewIndexer failed: %v", err)
	}
	defer idx.Close()

	err = idx.IndexAssessments([]*risk.Assessment{
		indexedAssessment("a1", "Your sleep was well below your usual amount"),
	})
	if err != nil {
		t.Fatalf("IndexAssessments failed: %v", err)
	}

	matches, err := idx.Search("unicorn", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches, got %v", matches)
	}
}

func TestSearch_HonorsLimit(t *testing.T) {
	idx, err := NewIndexer()
	if err != nil {
		t.Fatalf("NewIndexer failed: %v", err)
	}
	defer idx.Close()

	var docs []*risk.Assessment
	for _, id := range []string{"a1", "a2", "a3", "a4", "a5"} {
		docs = append(docs, indexedAssessment(id, "Your sleep was short today"))
	}
	if err := idx.IndexAssessments(docs); err != nil {
		t.Fatalf("IndexAssessments failed: %v", err)
	}

	matches, err := idx.Search("sleep", 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("expected 2 matches with limit 2, got %d", len(matches))
	}
}
