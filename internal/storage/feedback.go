package storage

import (
	"fmt"
	"time"

	"github.com/hea-health/risk-engine/internal/risk"
)

// RecordFeedback appends one feedback record. The single-transition
// invariant lives on the assessment row (see SetFeedback); this table
// is the analytics trail.
func (s *SQLiteStorage) RecordFeedback(rec *risk.FeedbackRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO feedback (id, assessment_id, user_id, feedback_type, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.AssessmentID,
		rec.UserID,
		string(rec.Type),
		rec.Comment,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert feedback record: %w", err)
	}
	return nil
}
