package storage

import (
	"fmt"
	"time"

	"github.com/hea-health/risk-engine/internal/baseline"
)

// LoadBaselines returns all baseline profiles for a user, keyed by
// metric name. A user with no history yields an empty map.
func (s *SQLiteStorage) LoadBaselines(userID string) (map[string]baseline.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT metric, mean, variance, sample_count, window_days, updated_at
		FROM baseline_profiles WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query baseline profiles: %w", err)
	}
	defer rows.Close()

	profiles := make(map[string]baseline.Profile)
	for rows.Next() {
		var p baseline.Profile
		var updatedAt string
		if err := rows.Scan(&p.Metric, &p.Mean, &p.Variance, &p.Count, &p.WindowDays, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan baseline row: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
			p.UpdatedAt = ts
		}
		profiles[p.Metric] = p
	}
	return profiles, rows.Err()
}

// SaveBaseline upserts one baseline profile for a user.
func (s *SQLiteStorage) SaveBaseline(userID string, p baseline.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO baseline_profiles (user_id, metric, mean, variance, sample_count, window_days, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, metric) DO UPDATE SET
			mean = excluded.mean,
			variance = excluded.variance,
			sample_count = excluded.sample_count,
			window_days = excluded.window_days,
			updated_at = excluded.updated_at
	`,
		userID,
		p.Metric,
		p.Mean,
		p.Variance,
		p.Count,
		p.WindowDays,
		p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save baseline profile: %w", err)
	}
	return nil
}
