package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hea-health/risk-engine/internal/baseline"
	"github.com/hea-health/risk-engine/internal/input"
	"github.com/hea-health/risk-engine/internal/risk"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s := NewStorage(filepath.Join(t.TempDir(), "test.db"))
	if err := s.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestAssessment(userID string, createdAt time.Time) *risk.Assessment {
	return &risk.Assessment{
		ID:     uuid.NewString(),
		UserID: userID,
		Signals: []risk.Signal{{
			Category:    risk.CategoryNLP,
			Key:         "fatigue",
			Description: "You mentioned feeling tired",
			Weight:      0.3,
			Source:      "nlp",
		}},
		RiskLevel:   risk.LevelWeak,
		Confidence:  0.3,
		Explanation: "We picked up a few subtle signals.",
		Feedback:    risk.FeedbackNone,
		CreatedAt:   createdAt,
	}
}

func TestAppendAndGetAssessment(t *testing.T) {
	s := newTestStorage(t)
	a := newTestAssessment("u1", time.Now().UTC())

	if err := s.AppendAssessment(a); err != nil {
		t.Fatalf("AppendAssessment failed: %v", err)
	}

	got, err := s.GetAssessment(a.ID)
	if err != nil {
		t.Fatalf("GetAssessment failed: %v", err)
	}

	if got.UserID != "u1" || got.RiskLevel != risk.LevelWeak {
		t.Errorf("assessment fields lost: %+v", got)
	}
	if got.Confidence != 0.3 {
		t.Errorf("expected confidence 0.3, got %f", got.Confidence)
	}
	if len(got.Signals) != 1 || got.Signals[0].Key != "fatigue" {
		t.Errorf("signals lost: %+v", got.Signals)
	}
	if got.Feedback != risk.FeedbackNone {
		t.Errorf("expected feedback none, got %s", got.Feedback)
	}
}

func TestAppendAssessment_DuplicateID(t *testing.T) {
	s := newTestStorage(t)
	a := newTestAssessment("u1", time.Now().UTC())

	if err := s.AppendAssessment(a); err != nil {
		t.Fatalf("AppendAssessment failed: %v", err)
	}

	dup := newTestAssessment("u1", time.Now().UTC())
	dup.ID = a.ID
	dup.Confidence = 0.9

	if err := s.AppendAssessment(dup); !errors.Is(err, ErrDuplicateAssessment) {
		t.Errorf("expected ErrDuplicateAssessment, got %v", err)
	}

	got, err := s.GetAssessment(a.ID)
	if err != nil {
		t.Fatalf("GetAssessment failed: %v", err)
	}
	if got.Confidence != 0.3 {
		t.Errorf("duplicate append mutated the original: confidence %f", got.Confidence)
	}
}

func TestGetAssessment_NotFound(t *testing.T) {
	s := newTestStorage(t)

	if _, err := s.GetAssessment("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListAssessments_NewestFirstWithLimit(t *testing.T) {
	s := newTestStorage(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 5; i++ {
		a := newTestAssessment("u1", base.AddDate(0, 0, i))
		ids = append(ids, a.ID)
		if err := s.AppendAssessment(a); err != nil {
			t.Fatalf("AppendAssessment failed: %v", err)
		}
	}
	// Another user's assessment must not leak into the listing.
	if err := s.AppendAssessment(newTestAssessment("u2", base)); err != nil {
		t.Fatalf("AppendAssessment failed: %v", err)
	}

	got, err := s.ListAssessments("u1", 3)
	if err != nil {
		t.Fatalf("ListAssessments failed: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 assessments, got %d", len(got))
	}
	for i, a := range got {
		if a.ID != ids[4-i] {
			t.Errorf("position %d: expected %s, got %s", i, ids[4-i], a.ID)
		}
		if a.UserID != "u1" {
			t.Errorf("foreign user's assessment leaked: %s", a.UserID)
		}
	}
}

func TestListAssessmentsRange(t *testing.T) {
	s := newTestStorage(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		if err := s.AppendAssessment(newTestAssessment("u1", base.AddDate(0, 0, i))); err != nil {
			t.Fatalf("AppendAssessment failed: %v", err)
		}
	}

	got, err := s.ListAssessmentsRange("u1", base.AddDate(0, 0, 2), base.AddDate(0, 0, 5), 20)
	if err != nil {
		t.Fatalf("ListAssessmentsRange failed: %v", err)
	}
	if len(got) != 4 {
		t.Errorf("expected 4 assessments in range, got %d", len(got))
	}
	for _, a := range got {
		if a.CreatedAt.Before(base.AddDate(0, 0, 2)) || a.CreatedAt.After(base.AddDate(0, 0, 5)) {
			t.Errorf("assessment outside range: %s", a.CreatedAt)
		}
	}
}

func TestSetFeedback_SingleTransition(t *testing.T) {
	s := newTestStorage(t)
	a := newTestAssessment("u1", time.Now().UTC())
	if err := s.AppendAssessment(a); err != nil {
		t.Fatalf("AppendAssessment failed: %v", err)
	}

	if err := s.SetFeedback(a.ID, risk.FeedbackConfirm); err != nil {
		t.Fatalf("SetFeedback failed: %v", err)
	}

	if err := s.SetFeedback(a.ID, risk.FeedbackReject); !errors.Is(err, ErrFeedbackAlreadySet) {
		t.Errorf("expected ErrFeedbackAlreadySet, got %v", err)
	}

	got, err := s.GetAssessment(a.ID)
	if err != nil {
		t.Fatalf("GetAssessment failed: %v", err)
	}
	if got.Feedback != risk.FeedbackConfirm {
		t.Errorf("second submission mutated feedback: %s", got.Feedback)
	}
}

func TestSetFeedback_MissingAssessment(t *testing.T) {
	s := newTestStorage(t)

	if err := s.SetFeedback("missing", risk.FeedbackConfirm); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetFeedback_InvalidType(t *testing.T) {
	s := newTestStorage(t)

	if err := s.SetFeedback("whatever", risk.FeedbackType("maybe")); err == nil {
		t.Error("expected error for invalid feedback type")
	}
}

func TestBaselineRoundtrip(t *testing.T) {
	s := newTestStorage(t)

	p := baseline.Profile{
		Metric:     input.MetricSleepHours,
		Mean:       7.2,
		Variance:   1.44,
		Count:      12,
		WindowDays: 30,
		UpdatedAt:  time.Now().UTC(),
	}
	if err := s.SaveBaseline("u1", p); err != nil {
		t.Fatalf("SaveBaseline failed: %v", err)
	}

	// Upsert replaces the row.
	p.Mean = 7.0
	p.Count = 13
	if err := s.SaveBaseline("u1", p); err != nil {
		t.Fatalf("SaveBaseline upsert failed: %v", err)
	}

	got, err := s.LoadBaselines("u1")
	if err != nil {
		t.Fatalf("LoadBaselines failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(got))
	}
	loaded := got[input.MetricSleepHours]
	if loaded.Mean != 7.0 || loaded.Count != 13 {
		t.Errorf("upsert did not replace: %+v", loaded)
	}

	other, err := s.LoadBaselines("u2")
	if err != nil {
		t.Fatalf("LoadBaselines failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected no profiles for other user, got %d", len(other))
	}
}

func TestCalibrationRoundtrip(t *testing.T) {
	s := newTestStorage(t)

	got, err := s.LoadCalibration("u1")
	if err != nil {
		t.Fatalf("LoadCalibration failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil state for new user, got %+v", got)
	}

	state := risk.DefaultCalibration()
	state.SetMultiplier(risk.CategoryNLP, 1.35)
	state.Thresholds.WeakMax = 0.54
	state.Stats(risk.LevelModerate).Feedback = 3
	if err := s.SaveCalibration("u1", state); err != nil {
		t.Fatalf("SaveCalibration failed: %v", err)
	}

	got, err = s.LoadCalibration("u1")
	if err != nil {
		t.Fatalf("LoadCalibration failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected stored state")
	}
	if got.Multiplier(risk.CategoryNLP) != 1.35 {
		t.Errorf("expected multiplier 1.35, got %f", got.Multiplier(risk.CategoryNLP))
	}
	if got.Thresholds.WeakMax != 0.54 {
		t.Errorf("expected WeakMax 0.54, got %f", got.Thresholds.WeakMax)
	}
	if got.Stats(risk.LevelModerate).Feedback != 3 {
		t.Errorf("level stats lost: %+v", got.Levels)
	}
}

func TestRecordInputAndFeedback(t *testing.T) {
	s := newTestStorage(t)

	sleep := 6.5
	in := &input.DailyInput{
		UserID:             "u1",
		SymptomText:        "feeling tired",
		EmojiInputs:        []string{"tired face"},
		CheckboxSelections: []string{"fatigue"},
		Metrics:            input.Metrics{SleepHours: &sleep},
		Source:             input.SourceWeb,
		CreatedAt:          time.Now().UTC(),
	}
	if err := s.RecordInput(in); err != nil {
		t.Fatalf("RecordInput failed: %v", err)
	}

	rec := &risk.FeedbackRecord{
		ID:           uuid.NewString(),
		AssessmentID: uuid.NewString(),
		UserID:       "u1",
		Type:         risk.FeedbackConfirm,
		Comment:      "spot on",
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.RecordFeedback(rec); err != nil {
		t.Fatalf("RecordFeedback failed: %v", err)
	}
}

func TestCleanup_RemovesOnlyAgedRows(t *testing.T) {
	s := newTestStorage(t)

	old := &input.DailyInput{
		UserID:    "u1",
		Source:    input.SourceWeb,
		CreatedAt: time.Now().UTC().AddDate(-2, 0, 0),
	}
	fresh := &input.DailyInput{
		UserID:    "u1",
		Source:    input.SourceWeb,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.RecordInput(old); err != nil {
		t.Fatalf("RecordInput failed: %v", err)
	}
	if err := s.RecordInput(fresh); err != nil {
		t.Fatalf("RecordInput failed: %v", err)
	}
	// Assessments survive cleanup regardless of age.
	a := newTestAssessment("u1", time.Now().UTC().AddDate(-2, 0, 0))
	if err := s.AppendAssessment(a); err != nil {
		t.Fatalf("AppendAssessment failed: %v", err)
	}

	if err := s.Cleanup(365 * 24 * time.Hour); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(1) FROM daily_inputs").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 surviving daily input, got %d", count)
	}

	if _, err := s.GetAssessment(a.ID); err != nil {
		t.Errorf("cleanup removed an assessment: %v", err)
	}
}

func TestInit_Idempotent(t *testing.T) {
	s := newTestStorage(t)
	if err := s.Init(); err != nil {
		t.Errorf("second Init failed: %v", err)
	}
}
