/*
Package engine orchestrates the assessment pipeline: validate the daily
input, update the baseline, run the extractors, fuse the candidate
signals, generate the explanation, and persist the result. It also owns
the feedback path that drives recalibration.

The pipeline is degrade-not-fail: for a well-formed input it always
produces an assessment, worst case a LOW-risk, low-confidence one with
an insufficient-data explanation.
*/
package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/hea-health/risk-engine/internal/baseline"
	"github.com/hea-health/risk-engine/internal/calibrate"
	"github.com/hea-health/risk-engine/internal/config"
	"github.com/hea-health/risk-engine/internal/explain"
	"github.com/hea-health/risk-engine/internal/extract"
	"github.com/hea-health/risk-engine/internal/fusion"
	"github.com/hea-health/risk-engine/internal/input"
	"github.com/hea-health/risk-engine/internal/risk"
	"github.com/hea-health/risk-engine/internal/search"
	"github.com/hea-health/risk-engine/internal/storage"
)

// Engine wires the fusion pipeline together.
type Engine struct {
	store      storage.Storage
	tracker    *baseline.Tracker
	calibrator *calibrate.Calibrator
	fuser      *fusion.Engine
	sources    []extract.Source
	timeout    time.Duration
}

// New builds an engine over an initialized store using the given
// configuration.
func New(cfg *config.Config, store storage.Storage) *Engine {
	return &Engine{
		store:      store,
		tracker:    baseline.NewTracker(store, cfg.BaselineWindowDays, cfg.BaselineMinSamples, cfg.DeviationClamp),
		calibrator: calibrate.NewCalibrator(store),
		fuser:      fusion.NewEngine(cfg.MaxDisplayedSignals, cfg.SignalGain),
		sources: []extract.Source{
			extract.NewNLPExtractor(),
			extract.NewTimeSeriesExtractor(),
		},
		timeout: time.Duration(cfg.ExtractorTimeoutSeconds) * time.Second,
	}
}

// Submit runs the full pipeline for one daily input.
//
// Validation errors are returned with no assessment. After validation
// the pipeline never fails outright: extractor and baseline problems
// degrade the result, and if persisting the assessment is rejected the
// computed assessment is still returned alongside the error.
func (e *Engine) Submit(ctx context.Context, in *input.DailyInput) (*risk.Assessment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if err := e.store.RecordInput(in); err != nil {
		log.Printf("Warning: failed to record daily input: %v", err)
	}

	metrics := in.Metrics.Values()
	bctx := extract.BaselineContext{LowConfidence: true}
	if len(metrics) > 0 {
		deviations, lowConf, err := e.tracker.Observe(in.UserID, metrics)
		if err != nil {
			log.Printf("Warning: baseline unavailable for %s: %v", in.UserID, err)
		} else {
			bctx = extract.BaselineContext{Deviations: deviations, LowConfidence: lowConf}
		}
	}

	candidates, degraded := extract.Run(ctx, e.sources, in, bctx, e.timeout)

	state, err := e.calibrator.State(in.UserID)
	if err != nil {
		log.Printf("Warning: using default calibration for %s: %v", in.UserID, err)
		state = risk.DefaultCalibration()
	}

	result := e.fuser.Assess(candidates, state)

	assessment := &risk.Assessment{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		Signals:     result.Signals,
		RiskLevel:   result.RiskLevel,
		Confidence:  result.Confidence,
		Explanation: explain.Explain(result.RiskLevel, result.Signals),
		Feedback:    risk.FeedbackNone,
		Degraded:    degraded,
		CreatedAt:   time.Now().UTC(),
	}

	if err := e.store.AppendAssessment(assessment); err != nil {
		// The computed assessment stays valid even when the write is
		// rejected; the caller gets both.
		return assessment, fmt.Errorf("failed to persist assessment: %w", err)
	}
	return assessment, nil
}

// ApplyFeedback records the user's verdict on an assessment and updates
// their calibration. The store enforces the single none-to-terminal
// transition; calibration only runs once that transition succeeds, so a
// feedback record can calibrate at most once.
func (e *Engine) ApplyFeedback(userID, assessmentID string, fb risk.FeedbackType, comment string) (*risk.CalibrationState, error) {
	if !fb.Valid() {
		return nil, fmt.Errorf("invalid feedback type %q", fb)
	}

	assessment, err := e.store.GetAssessment(assessmentID)
	if err != nil {
		return nil, err
	}
	if assessment.UserID != userID {
		return nil, storage.ErrNotFound
	}

	if err := e.store.SetFeedback(assessmentID, fb); err != nil {
		return nil, err
	}

	record := &risk.FeedbackRecord{
		ID:           uuid.NewString(),
		AssessmentID: assessmentID,
		UserID:       userID,
		Type:         fb,
		Comment:      comment,
		CreatedAt:    time.Now().UTC(),
	}
	if err := e.store.RecordFeedback(record); err != nil {
		log.Printf("Warning: failed to record feedback trail: %v", err)
	}

	return e.calibrator.Apply(assessment, fb)
}

// History returns a user's assessments newest-first, up to limit.
func (e *Engine) History(userID string, limit int) ([]*risk.Assessment, error) {
	return e.store.ListAssessments(userID, limit)
}

// SearchHistory returns the user's assessments matching the query,
// best match first.
func (e *Engine) SearchHistory(userID, query string, limit int) ([]*risk.Assessment, error) {
	// Index only the user's own assessments so every hit is theirs.
	assessments, err := e.store.ListAssessments(userID, 200)
	if err != nil {
		return nil, err
	}
	if len(assessments) == 0 {
		return nil, nil
	}

	indexer, err := search.NewIndexer()
	if err != nil {
		return nil, err
	}
	defer indexer.Close()

	if err := indexer.IndexAssessments(assessments); err != nil {
		return nil, err
	}
	matches, err := indexer.Search(query, limit)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*risk.Assessment, len(assessments))
	for _, a := range assessments {
		byID[a.ID] = a
	}
	out := make([]*risk.Assessment, 0, len(matches))
	for _, m := range matches {
		if a, ok := byID[m.AssessmentID]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// Baselines returns the user's current baseline profiles by metric.
func (e *Engine) Baselines(userID string) (map[string]baseline.Profile, error) {
	return e.store.LoadBaselines(userID)
}

// Calibration returns the user's calibration state, defaults included.
func (e *Engine) Calibration(userID string) (*risk.CalibrationState, error) {
	return e.calibrator.State(userID)
}

// Cleanup removes aged raw inputs and feedback.
func (e *Engine) Cleanup(retention time.Duration) error {
	return e.store.Cleanup(retention)
}
