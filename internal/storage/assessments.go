package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hea-health/risk-engine/internal/risk"
)

// AppendAssessment stores a new assessment. Assessments are write-once:
// a duplicate id fails with ErrDuplicateAssessment and leaves the
// existing row untouched.
func (s *SQLiteStorage) AppendAssessment(a *risk.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err := s.db.QueryRow("SELECT COUNT(1) FROM assessments WHERE id = ?", a.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check assessment id: %w", err)
	}
	if exists > 0 {
		return ErrDuplicateAssessment
	}

	signals, err := json.Marshal(a.Signals)
	if err != nil {
		return fmt.Errorf("failed to marshal signals: %w", err)
	}
	degraded, err := json.Marshal(a.Degraded)
	if err != nil {
		return fmt.Errorf("failed to marshal degradation reasons: %w", err)
	}

	feedback := a.Feedback
	if feedback == "" {
		feedback = risk.FeedbackNone
	}

	_, err = s.db.Exec(`
		INSERT INTO assessments (id, user_id, risk_level, confidence, explanation, signals, degraded, feedback, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.ID,
		a.UserID,
		a.RiskLevel.String(),
		a.Confidence,
		a.Explanation,
		string(signals),
		string(degraded),
		string(feedback),
		a.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert assessment: %w", err)
	}
	return nil
}

// GetAssessment fetches one assessment by id.
func (s *SQLiteStorage) GetAssessment(id string) (*risk.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(`
		SELECT id, user_id, risk_level, confidence, explanation, signals, degraded, feedback, created_at
		FROM assessments WHERE id = ?
	`, id)

	a, err := scanAssessment(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return a, err
}

// ListAssessments returns a user's assessments newest-first, up to limit.
func (s *SQLiteStorage) ListAssessments(userID string, limit int) ([]*risk.Assessment, error) {
	return s.ListAssessmentsRange(userID, time.Time{}, time.Now().UTC().Add(time.Hour), limit)
}

// ListAssessmentsRange returns a user's assessments within [from, to],
// newest-first, up to limit.
func (s *SQLiteStorage) ListAssessmentsRange(userID string, from, to time.Time, limit int) ([]*risk.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, user_id, risk_level, confidence, explanation, signals, degraded, feedback, created_at
		FROM assessments
		WHERE user_id = ? AND created_at >= ? AND created_at <= ?
		ORDER BY created_at DESC
		LIMIT ?
	`,
		userID,
		from.UTC().Format(time.RFC3339Nano),
		to.UTC().Format(time.RFC3339Nano),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	var out []*risk.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			log.Printf("Warning: failed to scan assessment row: %v", err)
			continue
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SetFeedback transitions the feedback field from "none" to a terminal
// value. A second transition fails with ErrFeedbackAlreadySet without
// mutating the first.
func (s *SQLiteStorage) SetFeedback(assessmentID string, fb risk.FeedbackType) error {
	if !fb.Valid() {
		return fmt.Errorf("invalid feedback type %q", fb)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		"UPDATE assessments SET feedback = ? WHERE id = ? AND feedback = 'none'",
		string(fb), assessmentID,
	)
	if err != nil {
		return fmt.Errorf("failed to set feedback: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}

	var exists int
	if err := s.db.QueryRow("SELECT COUNT(1) FROM assessments WHERE id = ?", assessmentID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check assessment id: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}
	return ErrFeedbackAlreadySet
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanAssessment decodes one assessment row.
func scanAssessment(row rowScanner) (*risk.Assessment, error) {
	var (
		a         risk.Assessment
		level     string
		signals   string
		degraded  string
		feedback  string
		createdAt string
	)
	if err := row.Scan(&a.ID, &a.UserID, &level, &a.Confidence, &a.Explanation,
		&signals, &degraded, &feedback, &createdAt); err != nil {
		return nil, err
	}

	a.RiskLevel = risk.ParseLevel(level)
	a.Feedback = risk.FeedbackType(feedback)

	if err := json.Unmarshal([]byte(signals), &a.Signals); err != nil {
		return nil, fmt.Errorf("failed to parse signals: %w", err)
	}
	if err := json.Unmarshal([]byte(degraded), &a.Degraded); err != nil {
		return nil, fmt.Errorf("failed to parse degradation reasons: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timestamp: %w", err)
	}
	a.CreatedAt = ts
	return &a, nil
}
