package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hea-health/risk-engine/internal/input"
)

// RecordInput appends one immutable daily input.
func (s *SQLiteStorage) RecordInput(in *input.DailyInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	emoji, err := json.Marshal(in.EmojiInputs)
	if err != nil {
		return fmt.Errorf("failed to marshal emoji inputs: %w", err)
	}
	checkboxes, err := json.Marshal(in.CheckboxSelections)
	if err != nil {
		return fmt.Errorf("failed to marshal checkbox selections: %w", err)
	}
	metrics, err := json.Marshal(in.Metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO daily_inputs (user_id, symptom_text, emoji_inputs, checkbox_selections, metrics, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		in.UserID,
		in.SymptomText,
		string(emoji),
		string(checkboxes),
		string(metrics),
		string(in.Source),
		in.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert daily input: %w", err)
	}
	return nil
}

// Cleanup removes raw inputs and feedback records older than the
// retention period, then compacts the database. Assessments and
// baseline/calibration state are kept.
func (s *SQLiteStorage) Cleanup(retention time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-retention).Format(time.RFC3339Nano)

	if _, err := s.db.Exec("DELETE FROM daily_inputs WHERE created_at < ?", cutoff); err != nil {
		log.Printf("Warning: failed to clean up daily_inputs: %v", err)
	}
	if _, err := s.db.Exec("DELETE FROM feedback WHERE created_at < ?", cutoff); err != nil {
		log.Printf("Warning: failed to clean up feedback: %v", err)
	}
	if _, err := s.db.Exec("VACUUM"); err != nil {
		log.Printf("Warning: failed to vacuum database: %v", err)
	}
	return nil
}
