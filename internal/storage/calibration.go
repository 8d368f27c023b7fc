package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hea-health/risk-engine/internal/risk"
)

// LoadCalibration returns the user's calibration state, or nil when the
// user has never been calibrated.
func (s *SQLiteStorage) LoadCalibration(userID string) (*risk.CalibrationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw string
	err := s.db.QueryRow("SELECT state FROM calibration_state WHERE user_id = ?", userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query calibration state: %w", err)
	}

	state := &risk.CalibrationState{}
	if err := json.Unmarshal([]byte(raw), state); err != nil {
		return nil, fmt.Errorf("failed to parse calibration state: %w", err)
	}
	return state, nil
}

// SaveCalibration upserts a user's calibration state.
func (s *SQLiteStorage) SaveCalibration(userID string, state *risk.CalibrationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal calibration state: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO calibration_state (user_id, state, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			state = excluded.state,
			updated_at = excluded.updated_at
	`,
		userID,
		string(raw),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save calibration state: %w", err)
	}
	return nil
}
