package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prasetyowira/cardgen/constant"
	"github.com/prasetyowira/cardgen/domain/card"
	"github.com/prasetyowira/cardgen/infrastructure/cache"
	appLogger "github.com/prasetyowira/cardgen/infrastructure/logger"
)

const defaultRunsLimit = 20

// BatchService is the part of card.Service the handlers use
type BatchService interface {
	Generate(ctx context.Context, job card.Job, progress card.ProgressFunc) (*card.Result, error)
	ListRuns(ctx context.Context, limit int) ([]card.Run, error)
}

// QRRenderer renders the redemption QR code of a code as PNG bytes
type QRRenderer interface {
	PNG(code string) ([]byte, error)
}

// Options holds handler settings taken from the configuration
type Options struct {
	OutputDir       string
	MaxUploadSize   int64
	DefaultFontSize int
}

// Handler contains service dependencies for API handlers
type Handler struct {
	service BatchService
	qr      QRRenderer
	qrCache *cache.NamespaceLRU[[]byte]
	opts    Options
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// NewHandler creates a new API handler
func NewHandler(service BatchService, qr QRRenderer, qrCache *cache.NamespaceLRU[[]byte], opts Options) *Handler {
	if opts.DefaultFontSize == 0 {
		opts.DefaultFontSize = constant.DefaultFontSize
	}
	return &Handler{
		service: service,
		qr:      qr,
		qrCache: qrCache,
		opts:    opts,
	}
}

// CreateBatch generates one card per code from a multipart form with the
// fields template (file), codes (text) and font_size (optional). Each batch
// is written to its own directory under the configured output root.
func (h *Handler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	appLogger.CtxDebug(ctx, constant.MsgHandlingBatchRequest, appLogger.LoggerInfo{
		ContextFunction: constant.CtxCreateBatch,
	})

	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadSize)
	if err := r.ParseMultipartForm(h.opts.MaxUploadSize); err != nil {
		appLogger.CtxWarn(ctx, "Error parsing multipart form", appLogger.LoggerInfo{
			ContextFunction: constant.CtxCreateBatch,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAPIDecodeRequest,
				Message: err.Error(),
				Type:    constant.ErrTypeAPI,
			},
		})

		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteJSONError(w, fmt.Sprintf("Upload exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		WriteJSONError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	job, form := h.jobFromForm(r)
	err := job.Validate()
	if err != nil && form.sizeErr != nil && errors.Is(err, card.ErrFontSize) {
		err = form.sizeErr
	}
	if err == nil {
		err = form.templateErr
	}
	if err != nil {
		appLogger.CtxWarn(ctx, "Rejected batch request", appLogger.LoggerInfo{
			ContextFunction: constant.CtxCreateBatch,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAPIDecodeRequest,
				Message: err.Error(),
				Type:    constant.ErrTypeAPI,
			},
		})

		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := os.MkdirAll(job.OutputDir, 0o755); err != nil {
		appLogger.CtxError(ctx, "Error creating batch directory", appLogger.LoggerInfo{
			ContextFunction: constant.CtxCreateBatch,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAPIServiceError,
				Message: err.Error(),
				Type:    constant.ErrTypeAPI,
			},
			Data: map[string]interface{}{
				constant.DataOutputDir: job.OutputDir,
			},
		})

		WriteJSONError(w, "Failed to create output folder", http.StatusInternalServerError)
		return
	}

	result, err := h.service.Generate(ctx, job, nil)
	if err != nil {
		if card.IsInputError(err) {
			// Nothing was written, drop the empty batch directory.
			_ = os.Remove(job.OutputDir)
			WriteJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}

		appLogger.CtxError(ctx, "Error generating cards", appLogger.LoggerInfo{
			ContextFunction: constant.CtxCreateBatch,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAPIServiceError,
				Message: err.Error(),
				Type:    constant.ErrTypeAPI,
			},
			Data: map[string]interface{}{
				constant.DataRunID: job.ID,
			},
		})

		WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	appLogger.CtxInfo(ctx, "Batch generated successfully", appLogger.LoggerInfo{
		ContextFunction: constant.CtxCreateBatch,
		Data: map[string]interface{}{
			constant.DataRunID:     result.RunID,
			constant.DataOutputDir: result.OutputDir,
			constant.DataTotal:     result.Total,
		},
	})

	WriteJSON(w, result, http.StatusCreated)
}

// formErrors holds form problems that are reported only once the job checks
// before them have passed.
type formErrors struct {
	sizeErr     error
	templateErr error
}

// jobFromForm builds a job from a parsed multipart form. An unreadable font
// size or template leaves the job failing at that step of validation, so
// errors keep the order of the job checks.
func (h *Handler) jobFromForm(r *http.Request) (card.Job, formErrors) {
	var form formErrors
	runID := uuid.New().String()
	job := card.Job{
		ID:        runID,
		Codes:     card.ParseCodes(r.FormValue("codes")),
		OutputDir: filepath.Join(h.opts.OutputDir, runID),
		FontSize:  h.opts.DefaultFontSize,
	}

	if raw := r.FormValue("font_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			form.sizeErr = fmt.Errorf("%w (got %q)", card.ErrFontSize, raw)
		}
		job.FontSize = size
	}

	file, header, err := r.FormFile("template")
	if errors.Is(err, http.ErrMissingFile) {
		return job, form
	}
	job.TemplatePath = "template"
	if err != nil {
		form.templateErr = fmt.Errorf("%w: %v", card.ErrTemplateDecode, err)
		return job, form
	}
	defer file.Close()
	if header.Filename != "" {
		job.TemplatePath = header.Filename
	}

	img, err := imaging.Decode(file)
	if err != nil {
		form.templateErr = fmt.Errorf("%w: %v", card.ErrTemplateDecode, err)
		return job, form
	}
	job.Template = img

	return job, form
}

// GetQRCode serves the redemption QR code of a code as a PNG
func (h *Handler) GetQRCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := chi.URLParam(r, "code")

	appLogger.CtxDebug(ctx, constant.MsgHandlingQRCodeRequest, appLogger.LoggerInfo{
		ContextFunction: constant.CtxQRCode,
		Data: map[string]interface{}{
			constant.DataCode: code,
		},
	})

	if code == "" {
		WriteJSONError(w, constant.ErrNoCodes, http.StatusBadRequest)
		return
	}

	png, err := h.qrCache.GetOrLoad(constant.QRNamespace, code, func() ([]byte, error) {
		return h.qr.PNG(code)
	})
	if err != nil {
		appLogger.CtxError(ctx, "Error generating QR code", appLogger.LoggerInfo{
			ContextFunction: constant.CtxQRCode,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAPIQRCode,
				Message: err.Error(),
				Type:    constant.ErrTypeAPI,
			},
			Data: map[string]interface{}{
				constant.DataCode: code,
			},
		})

		WriteJSONError(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// ListRuns returns the most recent generation runs
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			WriteJSONError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := h.service.ListRuns(ctx, limit)
	if err != nil {
		if errors.Is(err, card.ErrHistoryDisabled) {
			WriteJSONError(w, err.Error(), http.StatusNotFound)
			return
		}

		appLogger.CtxError(ctx, "Error listing runs", appLogger.LoggerInfo{
			ContextFunction: constant.CtxRuns,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAPIRuns,
				Message: err.Error(),
				Type:    constant.ErrTypeAPI,
			},
		})

		WriteJSONError(w, "Failed to list runs", http.StatusInternalServerError)
		return
	}

	WriteJSON(w, runs, http.StatusOK)
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		return
	}
}

// WriteJSONError writes a JSON error response
func WriteJSONError(w http.ResponseWriter, message string, statusCode int) {
	WriteJSON(w, ErrorResponse{
		Error: message,
		Code:  statusCode,
	}, statusCode)
}
