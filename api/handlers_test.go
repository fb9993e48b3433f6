package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"
	"github.com/prasetyowira/cardgen/constant"
	"github.com/prasetyowira/cardgen/domain/card"
	"github.com/prasetyowira/cardgen/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock service for testing
type MockService struct {
	mock.Mock
}

func (m *MockService) Generate(ctx context.Context, job card.Job, progress card.ProgressFunc) (*card.Result, error) {
	args := m.Called(ctx, job, progress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*card.Result), args.Error(1)
}

func (m *MockService) ListRuns(ctx context.Context, limit int) ([]card.Run, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]card.Run), args.Error(1)
}

// Mock QR code renderer for testing
type MockQRRenderer struct {
	mock.Mock
}

func (m *MockQRRenderer) PNG(code string) ([]byte, error) {
	args := m.Called(code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Helper function to create a handler backed by mocks and a temp output root
func createTestHandler(t *testing.T) (*Handler, *MockService, *MockQRRenderer, string) {
	t.Helper()
	mockService := new(MockService)
	mockQR := new(MockQRRenderer)
	root := t.TempDir()
	handler := NewHandler(mockService, mockQR, cache.NewNamespaceLRU[[]byte](8), Options{
		OutputDir:     root,
		MaxUploadSize: 1 << 20,
	})
	return handler, mockService, mockQR, root
}

// batchRequest builds a multipart batch request. fields with empty values are
// left out; a nil template omits the file part.
func batchRequest(t *testing.T, template []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, value := range fields {
		require.NoError(t, mw.WriteField(name, value))
	}
	if template != nil {
		part, err := mw.CreateFormFile("template", "template.png")
		require.NoError(t, err)
		_, err = part.Write(template)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, constant.RouteCreateBatch, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func templatePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(width, height, color.White), imaging.PNG))
	return buf.Bytes()
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestNewHandler(t *testing.T) {
	// Arrange
	mockService := new(MockService)
	mockQR := new(MockQRRenderer)
	qrCache := cache.NewNamespaceLRU[[]byte](4)

	// Act
	handler := NewHandler(mockService, mockQR, qrCache, Options{OutputDir: "out"})

	// Assert
	assert.NotNil(t, handler)
	assert.Equal(t, mockService, handler.service)
	assert.Equal(t, mockQR, handler.qr)
	assert.Same(t, qrCache, handler.qrCache)
	assert.Equal(t, constant.DefaultFontSize, handler.opts.DefaultFontSize)
}

func TestCreateBatch_Success(t *testing.T) {
	// Arrange
	handler, mockService, _, root := createTestHandler(t)

	var captured card.Job
	mockService.On("Generate", mock.Anything, mock.AnythingOfType("card.Job"), mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(card.Job) }).
		Return(&card.Result{RunID: "run", Total: 2, Files: []string{"a.png", "b.png"}}, nil)

	req := batchRequest(t, templatePNG(t, 1050, 600), map[string]string{
		"codes":     "ABC123,\nXYZ789",
		"font_size": "32",
	})
	w := httptest.NewRecorder()

	// Act
	handler.CreateBatch(w, req)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp card.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, []string{"a.png", "b.png"}, resp.Files)

	assert.Equal(t, []string{"ABC123", "XYZ789"}, captured.Codes)
	assert.Equal(t, 32, captured.FontSize)
	assert.Equal(t, "template.png", captured.TemplatePath)
	require.NotNil(t, captured.Template)
	assert.Equal(t, 1050, captured.Template.Bounds().Dx())
	assert.Len(t, captured.ID, 36)
	assert.Equal(t, filepath.Join(root, captured.ID), captured.OutputDir)
	assert.DirExists(t, captured.OutputDir)
	mockService.AssertExpectations(t)
}

func TestCreateBatch_DefaultFontSize(t *testing.T) {
	handler, mockService, _, _ := createTestHandler(t)
	mockService.On("Generate", mock.Anything, mock.MatchedBy(func(job card.Job) bool {
		return job.FontSize == constant.DefaultFontSize
	}), mock.Anything).Return(&card.Result{}, nil)

	req := batchRequest(t, templatePNG(t, 1050, 600), map[string]string{"codes": "ABC123"})
	w := httptest.NewRecorder()

	handler.CreateBatch(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestCreateBatch_InputErrors(t *testing.T) {
	tests := []struct {
		name     string
		template []byte
		fields   map[string]string
		wantMsg  string
	}{
		{
			name:     "no codes",
			template: []byte{},
			fields:   map[string]string{"codes": " , \n "},
			wantMsg:  constant.ErrNoCodes,
		},
		{
			name:    "no template",
			fields:  map[string]string{"codes": "ABC123"},
			wantMsg: constant.ErrNoTemplate,
		},
		{
			name:     "font size not a number",
			template: []byte{},
			fields:   map[string]string{"codes": "ABC123", "font_size": "big"},
			wantMsg:  constant.ErrFontSize,
		},
		{
			name:     "font size out of range",
			template: []byte{},
			fields:   map[string]string{"codes": "ABC123", "font_size": "51"},
			wantMsg:  constant.ErrFontSize,
		},
		{
			name:     "unsafe code",
			template: []byte{},
			fields:   map[string]string{"codes": "../etc"},
			wantMsg:  constant.ErrUnsafeCode,
		},
		{
			name:     "template not an image",
			template: []byte("not an image"),
			fields:   map[string]string{"codes": "ABC123"},
			wantMsg:  constant.ErrTemplateDecode,
		},
		{
			name:     "no codes reported before template and font size",
			template: []byte("not an image"),
			fields:   map[string]string{"codes": " , ", "font_size": "big"},
			wantMsg:  constant.ErrNoCodes,
		},
		{
			name:     "font size not a number reported before template",
			template: []byte("not an image"),
			fields:   map[string]string{"codes": "ABC123", "font_size": "big"},
			wantMsg:  `(got "big")`,
		},
		{
			name:     "unsafe code reported before template",
			template: []byte("not an image"),
			fields:   map[string]string{"codes": "../etc"},
			wantMsg:  constant.ErrUnsafeCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			handler, mockService, _, root := createTestHandler(t)
			template := tt.template
			if template != nil && len(template) == 0 {
				template = templatePNG(t, 1050, 600)
			}
			req := batchRequest(t, template, tt.fields)
			w := httptest.NewRecorder()

			// Act
			handler.CreateBatch(w, req)

			// Assert
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeError(t, w).Error, tt.wantMsg)
			mockService.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)

			entries, err := os.ReadDir(root)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestCreateBatch_TemplateRejectedByService(t *testing.T) {
	// Arrange
	handler, mockService, _, root := createTestHandler(t)
	mockService.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, card.ErrTemplateSize)

	req := batchRequest(t, templatePNG(t, 800, 800), map[string]string{"codes": "ABC123"})
	w := httptest.NewRecorder()

	// Act
	handler.CreateBatch(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, constant.ErrTemplateSize, decodeError(t, w).Error)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "empty batch directory is removed")
}

func TestCreateBatch_ResourceError(t *testing.T) {
	handler, mockService, _, _ := createTestHandler(t)
	mockService.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("disk full"))

	req := batchRequest(t, templatePNG(t, 1050, 600), map[string]string{"codes": "ABC123"})
	w := httptest.NewRecorder()

	handler.CreateBatch(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "disk full", decodeError(t, w).Error)
}

func TestCreateBatch_UploadTooLarge(t *testing.T) {
	// Arrange
	handler, mockService, _, root := createTestHandler(t)
	handler.opts.MaxUploadSize = 1024
	req := batchRequest(t, bytes.Repeat([]byte{0xAB}, 4096), map[string]string{"codes": "ABC123"})
	w := httptest.NewRecorder()

	// Act
	handler.CreateBatch(w, req)

	// Assert
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, decodeError(t, w).Error, "1024")
	mockService.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateBatch_NotMultipart(t *testing.T) {
	handler, mockService, _, _ := createTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, constant.RouteCreateBatch, bytes.NewBufferString(`{"codes":"A"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.CreateBatch(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

// qrRequest routes through chi so the URL parameter is populated
func qrRequest(handler *Handler, code string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get(constant.RouteQRCode, handler.GetQRCode)
	req := httptest.NewRequest(http.MethodGet, "/api/qr/"+code, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetQRCode_CachesPNG(t *testing.T) {
	// Arrange
	handler, _, mockQR, _ := createTestHandler(t)
	png := []byte("\x89PNG fake")
	mockQR.On("PNG", "ABC123").Return(png, nil).Once()

	// Act
	first := qrRequest(handler, "ABC123")
	second := qrRequest(handler, "ABC123")

	// Assert
	for _, w := range []*httptest.ResponseRecorder{first, second} {
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.Equal(t, png, w.Body.Bytes())
	}
	mockQR.AssertNumberOfCalls(t, "PNG", 1)
}

func TestGetQRCode_Error(t *testing.T) {
	handler, _, mockQR, _ := createTestHandler(t)
	mockQR.On("PNG", "TOOLONG").Return(nil, errors.New("content too long to encode")).Twice()

	w := qrRequest(handler, "TOOLONG")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	// Failures are not cached
	w = qrRequest(handler, "TOOLONG")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	mockQR.AssertExpectations(t)
}

func TestListRuns(t *testing.T) {
	// Arrange
	handler, mockService, _, _ := createTestHandler(t)
	runs := []card.Run{
		{ID: "b", Status: constant.RunStatusSucceeded, Total: 2, Written: 2},
		{ID: "a", Status: constant.RunStatusFailed, Total: 3, Written: 1, Error: "disk full"},
	}
	mockService.On("ListRuns", mock.Anything, 5).Return(runs, nil)

	req := httptest.NewRequest(http.MethodGet, constant.RouteRuns+"?limit=5", nil)
	w := httptest.NewRecorder()

	// Act
	handler.ListRuns(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	var got []card.Run
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "disk full", got[1].Error)
	mockService.AssertExpectations(t)
}

func TestListRuns_DefaultLimit(t *testing.T) {
	handler, mockService, _, _ := createTestHandler(t)
	mockService.On("ListRuns", mock.Anything, defaultRunsLimit).Return([]card.Run{}, nil)

	w := httptest.NewRecorder()
	handler.ListRuns(w, httptest.NewRequest(http.MethodGet, constant.RouteRuns, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestListRuns_Errors(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		serviceErr error
		wantStatus int
	}{
		{"invalid limit", "?limit=abc", nil, http.StatusBadRequest},
		{"zero limit", "?limit=0", nil, http.StatusBadRequest},
		{"history disabled", "", card.ErrHistoryDisabled, http.StatusNotFound},
		{"database error", "", errors.New("database is locked"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mockService, _, _ := createTestHandler(t)
			if tt.serviceErr != nil {
				mockService.On("ListRuns", mock.Anything, mock.Anything).Return(nil, tt.serviceErr)
			}

			w := httptest.NewRecorder()
			handler.ListRuns(w, httptest.NewRequest(http.MethodGet, constant.RouteRuns+tt.query, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantStatus, decodeError(t, w).Code)
		})
	}
}

func TestWriteJSONError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteJSONError(w, "boom", http.StatusTeapot)

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, ErrorResponse{Error: "boom", Code: http.StatusTeapot}, decodeError(t, w))
}
