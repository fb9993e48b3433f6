package card

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/prasetyowira/cardgen/constant"
	"github.com/prasetyowira/cardgen/infrastructure/logger"
	"golang.org/x/image/font"
)

// QREncoder renders the redemption QR symbol for a code.
type QREncoder interface {
	Image(code string) (image.Image, error)
}

// FaceSource resolves the label typeface at a pixel size.
type FaceSource interface {
	Face(size int) (font.Face, error)
}

// CardStore persists finished cards.
type CardStore interface {
	CheckDir(dir string) error
	Write(ctx context.Context, dir, name string, img image.Image) (string, error)
}

// RunRepository records run history.
type RunRepository interface {
	StartRun(ctx context.Context, run *Run) error
	FinishRun(ctx context.Context, run *Run) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}

// ProgressFunc is called after each card is written.
type ProgressFunc func(done, total int)

// Result describes a completed run.
type Result struct {
	RunID     string   `json:"run_id"`
	OutputDir string   `json:"output_dir"`
	Total     int      `json:"total"`
	Files     []string `json:"files"`
}

// Service generates card batches
type Service struct {
	qr    QREncoder
	fonts FaceSource
	store CardStore
	runs  RunRepository
}

// NewService creates a new card service. runs may be nil to disable history.
func NewService(qr QREncoder, fonts FaceSource, store CardStore, runs RunRepository) *Service {
	logger.Debug("Creating card service", logger.LoggerInfo{
		ContextFunction: constant.CtxDomain,
		Data: map[string]interface{}{
			constant.DataService: "card",
			"history":            runs != nil,
		},
	})

	return &Service{
		qr:    qr,
		fonts: fonts,
		store: store,
		runs:  runs,
	}
}

// Generate validates job and writes one card per code, in order. The first
// failure aborts the run; cards written before it are left in place.
// ctx only carries logging values; a started run is not cancelled.
func (s *Service) Generate(ctx context.Context, job Job, progress ProgressFunc) (*Result, error) {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	ctx = logger.WithRunID(ctx, job.ID)

	logger.CtxDebug(ctx, "Starting card generation", logger.LoggerInfo{
		ContextFunction: constant.CtxGenerate,
		Data: map[string]interface{}{
			constant.DataTemplate:  job.TemplatePath,
			constant.DataOutputDir: job.OutputDir,
			constant.DataFontSize:  job.FontSize,
			constant.DataTotal:     len(job.Codes),
		},
	})

	tmpl, face, err := s.prepare(ctx, job)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	run := &Run{
		ID:        job.ID,
		Template:  job.TemplatePath,
		OutputDir: job.OutputDir,
		FontSize:  job.FontSize,
		Total:     len(job.Codes),
		Status:    constant.RunStatusRunning,
		StartedAt: time.Now(),
	}
	s.startRun(ctx, run)

	result := &Result{
		RunID:     job.ID,
		OutputDir: job.OutputDir,
		Total:     len(job.Codes),
		Files:     make([]string, 0, len(job.Codes)),
	}

	for i, code := range job.Codes {
		path, err := s.generateOne(ctx, tmpl, face, job.OutputDir, code)
		if err != nil {
			run.Written = i
			s.finishRun(ctx, run, err)
			return nil, err
		}
		result.Files = append(result.Files, path)

		if progress != nil {
			progress(i+1, len(job.Codes))
		}
	}

	run.Written = len(job.Codes)
	s.finishRun(ctx, run, nil)

	logger.CtxInfo(ctx, "Cards generated successfully", logger.LoggerInfo{
		ContextFunction: constant.CtxGenerate,
		Data: map[string]interface{}{
			constant.DataOutputDir: job.OutputDir,
			constant.DataTotal:     len(result.Files),
		},
	})

	return result, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Service) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if s.runs == nil {
		return nil, ErrHistoryDisabled
	}
	return s.runs.ListRuns(ctx, limit)
}

// prepare runs every check that must pass before the first card is written
// and returns the canvas-sized template and the label face.
func (s *Service) prepare(ctx context.Context, job Job) (image.Image, font.Face, error) {
	if err := job.Validate(); err != nil {
		s.warnInvalid(ctx, err)
		return nil, nil, err
	}

	tmpl := job.Template
	if tmpl == nil {
		img, err := LoadTemplate(job.TemplatePath)
		if err != nil {
			s.warnInvalid(ctx, err)
			return nil, nil, err
		}
		tmpl = img
	}

	original := tmpl.Bounds().Size()
	tmpl, err := PrepareTemplate(tmpl)
	if err != nil {
		s.warnInvalid(ctx, err)
		return nil, nil, err
	}
	if original != tmpl.Bounds().Size() {
		logger.CtxInfo(ctx, "Template resized to canvas size", logger.LoggerInfo{
			ContextFunction: constant.CtxValidate,
			Data: map[string]interface{}{
				constant.DataWidth:  original.X,
				constant.DataHeight: original.Y,
			},
		})
	}

	if err := s.store.CheckDir(job.OutputDir); err != nil {
		err = fmt.Errorf("%w: %v", ErrOutputDir, err)
		logger.CtxError(ctx, "Output directory unusable", logger.LoggerInfo{
			ContextFunction: constant.CtxValidate,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeOutputDirInvalid,
				Message: err.Error(),
				Type:    constant.ErrTypeStorage,
			},
			Data: map[string]interface{}{
				constant.DataOutputDir: job.OutputDir,
			},
		})
		return nil, nil, err
	}

	face, err := s.fonts.Face(job.FontSize)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrFontLoad, err)
		logger.CtxError(ctx, "Failed to load font", logger.LoggerInfo{
			ContextFunction: constant.CtxGenerate,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeFontLoad,
				Message: err.Error(),
				Type:    constant.ErrTypeRender,
			},
			Data: map[string]interface{}{
				constant.DataFontSize: job.FontSize,
			},
		})
		return nil, nil, err
	}

	return tmpl, face, nil
}

func (s *Service) generateOne(ctx context.Context, tmpl image.Image, face font.Face, dir, code string) (string, error) {
	qr, err := s.qr.Image(code)
	if err != nil {
		logger.CtxError(ctx, "Failed to encode QR code", logger.LoggerInfo{
			ContextFunction: constant.CtxGenerate,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeQREncode,
				Message: err.Error(),
				Type:    constant.ErrTypeRender,
			},
			Data: map[string]interface{}{
				constant.DataCode: code,
			},
		})
		return "", err
	}

	path, err := s.store.Write(ctx, dir, code, Compose(tmpl, qr, code, face))
	if err != nil {
		logger.CtxError(ctx, "Failed to write card", logger.LoggerInfo{
			ContextFunction: constant.CtxGenerate,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeWriteCard,
				Message: err.Error(),
				Type:    constant.ErrTypeStorage,
			},
			Data: map[string]interface{}{
				constant.DataCode:      code,
				constant.DataOutputDir: dir,
			},
		})
		return "", err
	}

	logger.CtxInfo(ctx, "Image saved", logger.LoggerInfo{
		ContextFunction: constant.CtxGenerate,
		Data: map[string]interface{}{
			constant.DataCode: code,
			constant.DataFile: path,
		},
	})
	return path, nil
}

func (s *Service) warnInvalid(ctx context.Context, err error) {
	logger.CtxWarn(ctx, "Generation request rejected", logger.LoggerInfo{
		ContextFunction: constant.CtxValidate,
		Error: &logger.CustomError{
			Code:    validationCode(err),
			Message: err.Error(),
			Type:    constant.ErrTypeValidation,
		},
	})
}

// startRun and finishRun never fail the run; history problems are logged.
func (s *Service) startRun(ctx context.Context, run *Run) {
	if s.runs == nil {
		return
	}
	if err := s.runs.StartRun(ctx, run); err != nil {
		logger.CtxWarn(ctx, "Failed to record run start", logger.LoggerInfo{
			ContextFunction: constant.CtxGenerate,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeHistoryStart,
				Message: err.Error(),
				Type:    constant.ErrTypeHistory,
			},
		})
	}
}

func (s *Service) finishRun(ctx context.Context, run *Run, runErr error) {
	if s.runs == nil {
		return
	}

	finished := time.Now()
	run.FinishedAt = &finished
	run.Status = constant.RunStatusSucceeded
	if runErr != nil {
		run.Status = constant.RunStatusFailed
		run.Error = runErr.Error()
	}

	if err := s.runs.FinishRun(ctx, run); err != nil {
		logger.CtxWarn(ctx, "Failed to record run result", logger.LoggerInfo{
			ContextFunction: constant.CtxGenerate,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeHistoryFinish,
				Message: err.Error(),
				Type:    constant.ErrTypeHistory,
			},
		})
	}
}
