package db

import (
	"context"
	"errors"
	"time"

	"github.com/prasetyowira/cardgen/constant"
	"github.com/prasetyowira/cardgen/domain/card"
	appLogger "github.com/prasetyowira/cardgen/infrastructure/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// SQLiteRepository implements card.RunRepository
type SQLiteRepository struct {
	db *gorm.DB
}

// RunModel is the GORM model for a generation run
type RunModel struct {
	ID         string `gorm:"primaryKey"`
	Template   string
	OutputDir  string `gorm:"not null"`
	FontSize   int
	Total      int
	Written    int
	Status     string `gorm:"index;not null"`
	Error      string
	StartedAt  time.Time `gorm:"index"`
	FinishedAt *time.Time
}

// TableName keeps the table name stable if the struct is renamed
func (RunModel) TableName() string {
	return "runs"
}

// GormLogger implements GORM's logger.Interface
type GormLogger struct{}

// LogMode implements the log.Interface method
func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	return l
}

// Info logs info messages
func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	appLogger.CtxInfo(ctx, msg, appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataData: data,
		},
	})
}

// Warn logs warn messages
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	appLogger.CtxWarn(ctx, msg, appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataData: data,
		},
	})
}

// Error logs error messages
func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	appLogger.CtxError(ctx, msg, appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Error: &appLogger.CustomError{
			Code:    constant.ErrCodeDBGeneral,
			Message: msg,
			Type:    constant.ErrTypeDB,
		},
		Data: map[string]interface{}{
			constant.DataData: data,
		},
	})
}

// Trace logs SQL operations
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		appLogger.CtxError(ctx, "SQL error", appLogger.LoggerInfo{
			ContextFunction: constant.CtxDB,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBGeneral,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
			Data: map[string]interface{}{
				constant.DataElapsed: elapsed.String(),
				constant.DataRows:    rows,
				constant.DataSQL:     sql,
			},
		})
		return
	}

	appLogger.CtxDebug(ctx, "SQL query", appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataElapsed: elapsed.String(),
			constant.DataRows:    rows,
			constant.DataSQL:     sql,
		},
	})
}

// NewSQLiteRepository opens the history database at dbPath and migrates it
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	ctx := appLogger.NewRequestContext()

	appLogger.CtxDebug(ctx, "Opening SQLite database", appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataPath: dbPath,
		},
	})

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: &GormLogger{},
	})
	if err != nil {
		appLogger.CtxError(ctx, "Failed to open database", appLogger.LoggerInfo{
			ContextFunction: constant.CtxDB,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBOpen,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
			Data: map[string]interface{}{
				constant.DataPath: dbPath,
			},
		})
		return nil, err
	}

	if err := db.AutoMigrate(&RunModel{}); err != nil {
		appLogger.CtxError(ctx, "Failed to migrate database schema", appLogger.LoggerInfo{
			ContextFunction: constant.CtxDB,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBMigrate,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
		})
		return nil, err
	}

	appLogger.CtxInfo(ctx, "Database initialized successfully", appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataPath: dbPath,
		},
	})

	return &SQLiteRepository{db: db}, nil
}

// StartRun inserts a new run record
func (r *SQLiteRepository) StartRun(ctx context.Context, run *card.Run) error {
	model := toModel(run)

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		appLogger.CtxError(ctx, "Failed to insert run", appLogger.LoggerInfo{
			ContextFunction: constant.CtxStartRun,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBInsert,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
			Data: map[string]interface{}{
				constant.DataRunID: run.ID,
			},
		})
		return err
	}

	appLogger.CtxDebug(ctx, "Run recorded", appLogger.LoggerInfo{
		ContextFunction: constant.CtxStartRun,
		Data: map[string]interface{}{
			constant.DataRunID: run.ID,
			constant.DataTotal: run.Total,
		},
	})
	return nil
}

// FinishRun stores the outcome of a run
func (r *SQLiteRepository) FinishRun(ctx context.Context, run *card.Run) error {
	result := r.db.WithContext(ctx).Model(&RunModel{}).
		Where("id = ?", run.ID).
		Updates(map[string]interface{}{
			"status":      run.Status,
			"written":     run.Written,
			"error":       run.Error,
			"finished_at": run.FinishedAt,
		})

	if result.Error != nil {
		appLogger.CtxError(ctx, "Failed to update run", appLogger.LoggerInfo{
			ContextFunction: constant.CtxFinish,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBUpdate,
				Message: result.Error.Error(),
				Type:    constant.ErrTypeDB,
			},
			Data: map[string]interface{}{
				constant.DataRunID: run.ID,
			},
		})
		return result.Error
	}

	if result.RowsAffected == 0 {
		appLogger.CtxWarn(ctx, "No run updated", appLogger.LoggerInfo{
			ContextFunction: constant.CtxFinish,
			Data: map[string]interface{}{
				constant.DataRunID:        run.ID,
				constant.DataRowsAffected: 0,
			},
		})
		return gorm.ErrRecordNotFound
	}

	return nil
}

// ListRuns returns up to limit runs, newest first
func (r *SQLiteRepository) ListRuns(ctx context.Context, limit int) ([]card.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	var models []RunModel
	err := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&models).Error
	if err != nil {
		appLogger.CtxError(ctx, "Failed to list runs", appLogger.LoggerInfo{
			ContextFunction: constant.CtxListRuns,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBList,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
		})
		return nil, err
	}

	runs := make([]card.Run, 0, len(models))
	for _, m := range models {
		runs = append(runs, fromModel(m))
	}
	return runs, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	ctx := context.Background()
	sqlDB, err := r.db.DB()
	if err != nil {
		appLogger.CtxError(ctx, "Failed to get database connection", appLogger.LoggerInfo{
			ContextFunction: constant.CtxClose,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBClose,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
		})
		return err
	}

	appLogger.CtxInfo(ctx, "Closing database connection", appLogger.LoggerInfo{
		ContextFunction: constant.CtxClose,
	})

	return sqlDB.Close()
}

func toModel(run *card.Run) RunModel {
	m := RunModel{
		ID:        run.ID,
		Template:  run.Template,
		OutputDir: run.OutputDir,
		FontSize:  run.FontSize,
		Total:     run.Total,
		Written:   run.Written,
		Status:    run.Status,
		Error:     run.Error,
		StartedAt: run.StartedAt,
	}
	if run.FinishedAt != nil {
		finished := *run.FinishedAt
		m.FinishedAt = &finished
	}
	return m
}

func fromModel(m RunModel) card.Run {
	run := card.Run{
		ID:        m.ID,
		Template:  m.Template,
		OutputDir: m.OutputDir,
		FontSize:  m.FontSize,
		Total:     m.Total,
		Written:   m.Written,
		Status:    m.Status,
		Error:     m.Error,
		StartedAt: m.StartedAt,
	}
	if m.FinishedAt != nil {
		finished := *m.FinishedAt
		run.FinishedAt = &finished
	}
	return run
}
