package db

import (
	"context"
	"sync"

	"github.com/prasetyowira/cardgen/constant"
	"github.com/prasetyowira/cardgen/domain/card"
	appLogger "github.com/prasetyowira/cardgen/infrastructure/logger"
)

// LazyRepository opens the SQLite history on first use, so runs rejected
// during validation never create the database file. An open failure is
// remembered and returned by every call.
type LazyRepository struct {
	path string
	once sync.Once
	repo *SQLiteRepository
	err  error
}

// NewLazyRepository creates a repository for the database at dbPath without
// touching the file system.
func NewLazyRepository(dbPath string) *LazyRepository {
	return &LazyRepository{path: dbPath}
}

// Open opens and migrates the database if that has not happened yet
func (l *LazyRepository) Open() (*SQLiteRepository, error) {
	l.once.Do(func() {
		l.repo, l.err = NewSQLiteRepository(l.path)
		if l.err != nil {
			appLogger.Warn("Run history unavailable", appLogger.LoggerInfo{
				ContextFunction: constant.CtxDB,
				Error: &appLogger.CustomError{
					Code:    constant.ErrCodeDBOpen,
					Message: l.err.Error(),
					Type:    constant.ErrTypeDB,
				},
				Data: map[string]interface{}{
					constant.DataPath: l.path,
				},
			})
		}
	})
	return l.repo, l.err
}

// StartRun implements card.RunRepository
func (l *LazyRepository) StartRun(ctx context.Context, run *card.Run) error {
	repo, err := l.Open()
	if err != nil {
		return err
	}
	return repo.StartRun(ctx, run)
}

// FinishRun implements card.RunRepository
func (l *LazyRepository) FinishRun(ctx context.Context, run *card.Run) error {
	repo, err := l.Open()
	if err != nil {
		return err
	}
	return repo.FinishRun(ctx, run)
}

// ListRuns implements card.RunRepository
func (l *LazyRepository) ListRuns(ctx context.Context, limit int) ([]card.Run, error) {
	repo, err := l.Open()
	if err != nil {
		return nil, err
	}
	return repo.ListRuns(ctx, limit)
}

// Close closes the database if it was opened
func (l *LazyRepository) Close() error {
	if l.repo == nil {
		return nil
	}
	return l.repo.Close()
}
