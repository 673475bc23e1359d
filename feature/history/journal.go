package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrRunNotFound is returned when no run has the requested id.
var ErrRunNotFound = errors.New("run not found")

// Recorder stores finished runs.
type Recorder interface {
	Record(ctx context.Context, run *Run) error
}

// NopRecorder discards runs. It is used when no database is configured.
type NopRecorder struct{}

// Record does nothing.
func (NopRecorder) Record(context.Context, *Run) error { return nil }

// Journal stores runs in the database.
type Journal struct {
	db *gorm.DB
}

// NewJournal creates a journal on db.
func NewJournal(db *gorm.DB) *Journal {
	return &Journal{db: db}
}

// NewRecorder returns a migrated journal, or a NopRecorder when db is nil
// or the migration fails.
func NewRecorder(db *gorm.DB, logger *zap.Logger) Recorder {
	if db == nil {
		return NopRecorder{}
	}
	j := NewJournal(db)
	if err := j.Migrate(); err != nil {
		logger.Warn("Run journal disabled", zap.Error(err))
		return NopRecorder{}
	}
	return j
}

// Migrate creates or updates the journal tables.
func (j *Journal) Migrate() error {
	if err := j.db.AutoMigrate(&Run{}, &RunEvent{}); err != nil {
		return fmt.Errorf("failed to migrate run journal: %w", err)
	}
	return nil
}

// Record stores the run and its events in one transaction. A missing id is
// filled with a new UUID.
func (j *Journal) Record(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	for i := range run.Events {
		run.Events[i].RunID = run.ID
	}

	return j.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(run).Error; err != nil {
			return fmt.Errorf("failed to record run: %w", err)
		}
		if len(run.Events) == 0 {
			return nil
		}
		if err := tx.Create(&run.Events).Error; err != nil {
			return fmt.Errorf("failed to record run events: %w", err)
		}
		return nil
	})
}

// ListRuns returns the latest runs, newest first, optionally of one kind.
func (j *Journal) ListRuns(ctx context.Context, kind string, limit int) ([]Run, error) {
	q := j.db.WithContext(ctx).Order("started_at desc")
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var runs []Run
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// GetRun returns a run with its events.
func (j *Journal) GetRun(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := j.db.WithContext(ctx).Preload("Events").First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return &run, nil
}
