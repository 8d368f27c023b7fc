package storage

import (
	"fmt"
	"log"
)

// runMigrations executes database schema migrations in order.
func (s *SQLiteStorage) runMigrations() error {
	if err := s.createMigrationsTable(); err != nil {
		return err
	}

	version, err := s.currentMigrationVersion()
	if err != nil {
		return err
	}

	migrations := []migration{
		{version: 1, name: "initial_schema", up: s.migration001InitialSchema},
	}

	for _, m := range migrations {
		if version < m.version {
			log.Printf("Running migration %d: %s", m.version, m.name)
			if err := m.up(); err != nil {
				return fmt.Errorf("migration %d failed: %w", m.version, err)
			}
			if err := s.setMigrationVersion(m.version, m.name); err != nil {
				return err
			}
		}
	}
	return nil
}

// migration is a single database migration.
type migration struct {
	version int
	name    string
	up      func() error
}

func (s *SQLiteStorage) createMigrationsTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`)
	return err
}

func (s *SQLiteStorage) currentMigrationVersion() (int, error) {
	var version int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

func (s *SQLiteStorage) setMigrationVersion(version int, name string) error {
	_, err := s.db.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", version, name)
	return err
}

// migration001InitialSchema creates the initial schema: daily inputs,
// assessments, baseline profiles, calibration state, and feedback.
func (s *SQLiteStorage) migration001InitialSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS daily_inputs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			symptom_text TEXT,
			emoji_inputs TEXT NOT NULL DEFAULT '[]',
			checkbox_selections TEXT NOT NULL DEFAULT '[]',
			metrics TEXT NOT NULL DEFAULT '{}',
			source TEXT NOT NULL DEFAULT 'web',
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_inputs_user
			ON daily_inputs(user_id, created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS assessments (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			risk_level TEXT NOT NULL,
			confidence REAL NOT NULL,
			explanation TEXT NOT NULL,
			signals TEXT NOT NULL DEFAULT '[]',
			degraded TEXT NOT NULL DEFAULT '[]',
			feedback TEXT NOT NULL DEFAULT 'none',
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assessments_user
			ON assessments(user_id, created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS baseline_profiles (
			user_id TEXT NOT NULL,
			metric TEXT NOT NULL,
			mean REAL NOT NULL,
			variance REAL NOT NULL,
			sample_count INTEGER NOT NULL,
			window_days INTEGER NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (user_id, metric)
		)`,

		`CREATE TABLE IF NOT EXISTS calibration_state (
			user_id TEXT PRIMARY KEY,
			state TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS feedback (
			id TEXT PRIMARY KEY,
			assessment_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			feedback_type TEXT NOT NULL,
			comment TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_assessment
			ON feedback(assessment_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply initial schema: %w", err)
		}
	}
	return nil
}
