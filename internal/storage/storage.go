/*
Package storage implements the persistence layer for the risk engine.

It provides SQLite-backed storage (modernc.org/sqlite, pure Go, CGo-free)
for daily inputs, append-only assessments, per-user baseline profiles,
calibration state, and feedback records. Assessments are write-once and
their feedback field transitions exactly once; both invariants are
enforced here.
*/
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hea-health/risk-engine/internal/baseline"
	"github.com/hea-health/risk-engine/internal/input"
	"github.com/hea-health/risk-engine/internal/risk"
)

// Sentinel errors surfaced to callers.
var (
	// ErrDuplicateAssessment is returned when appending an assessment
	// whose id already exists. Assessments are write-once.
	ErrDuplicateAssessment = errors.New("assessment id already exists")

	// ErrFeedbackAlreadySet is returned on a second feedback
	// submission for the same assessment.
	ErrFeedbackAlreadySet = errors.New("feedback already set")

	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")
)

// Storage defines the persistence operations used by the engine.
type Storage interface {
	// Init opens the database and runs migrations.
	Init() error

	// RecordInput appends one immutable daily input.
	RecordInput(in *input.DailyInput) error

	// AppendAssessment stores a new assessment; fails with
	// ErrDuplicateAssessment if the id exists.
	AppendAssessment(a *risk.Assessment) error

	// GetAssessment fetches one assessment by id.
	GetAssessment(id string) (*risk.Assessment, error)

	// ListAssessments returns a user's assessments newest-first, up to
	// limit.
	ListAssessments(userID string, limit int) ([]*risk.Assessment, error)

	// ListAssessmentsRange returns a user's assessments within
	// [from, to], newest-first, up to limit.
	ListAssessmentsRange(userID string, from, to time.Time, limit int) ([]*risk.Assessment, error)

	// SetFeedback transitions an assessment's feedback field from
	// "none" to a terminal value, exactly once.
	SetFeedback(assessmentID string, fb risk.FeedbackType) error

	// RecordFeedback appends a feedback record.
	RecordFeedback(rec *risk.FeedbackRecord) error

	// LoadBaselines returns a user's baseline profiles by metric.
	LoadBaselines(userID string) (map[string]baseline.Profile, error)

	// SaveBaseline upserts one baseline profile.
	SaveBaseline(userID string, p baseline.Profile) error

	// LoadCalibration returns a user's calibration state, or nil if
	// none is stored yet.
	LoadCalibration(userID string) (*risk.CalibrationState, error)

	// SaveCalibration upserts a user's calibration state.
	SaveCalibration(userID string, state *risk.CalibrationState) error

	// Cleanup removes raw inputs and feedback older than retention.
	Cleanup(retention time.Duration) error

	// Close closes the database connection.
	Close() error
}

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db       *sql.DB
	dbPath   string
	mu       sync.Mutex
	initOnce sync.Once
}

// NewStorage creates a storage instance at the given database path. The
// parent directory is created on Init if needed.
func NewStorage(dbPath string) *SQLiteStorage {
	return &SQLiteStorage{dbPath: dbPath}
}

// Init opens the database, verifies the connection, and runs migrations.
func (s *SQLiteStorage) Init() error {
	var initErr error
	s.initOnce.Do(func() {
		if dir := filepath.Dir(s.dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				initErr = fmt.Errorf("failed to create db directory: %w", err)
				return
			}
		}

		db, err := sql.Open("sqlite", s.dbPath)
		if err != nil {
			initErr = fmt.Errorf("failed to open database: %w", err)
			return
		}

		if err := db.Ping(); err != nil {
			db.Close()
			initErr = fmt.Errorf("failed to ping database: %w", err)
			return
		}
		s.db = db

		if err := s.runMigrations(); err != nil {
			initErr = fmt.Errorf("failed to run migrations: %w", err)
		}
	})
	return initErr
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.db = nil
	return nil
}
