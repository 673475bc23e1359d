package history

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrJournalDisabled is returned when no database backs the journal.
var ErrJournalDisabled = errors.New("run journal is not configured")

const (
	defaultLimit = 20
	maxLimit     = 200
)

// Service reads the run journal.
type Service struct {
	journal *Journal
	logger  *zap.Logger
}

// NewService creates the service. A nil db disables it.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	s := &Service{logger: logger}
	if db != nil {
		s.journal = NewJournal(db)
	}
	return s
}

// Enabled reports whether a journal is configured.
func (s *Service) Enabled() bool {
	return s.journal != nil
}

// ListRuns returns the latest runs. The limit is clamped to a sane range.
func (s *Service) ListRuns(ctx context.Context, kind string, limit int) ([]Run, error) {
	if s.journal == nil {
		return nil, ErrJournalDisabled
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return s.journal.ListRuns(ctx, kind, limit)
}

// GetRun returns one run with its events.
func (s *Service) GetRun(ctx context.Context, id string) (*Run, error) {
	if s.journal == nil {
		return nil, ErrJournalDisabled
	}
	return s.journal.GetRun(ctx, id)
}
