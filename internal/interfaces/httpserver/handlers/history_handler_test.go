package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	domain "github.com/vidcrunch/vidcrunch/internal/domain/history"
	"github.com/vidcrunch/vidcrunch/internal/infrastructure/auth"
	"github.com/vidcrunch/vidcrunch/internal/interfaces/httpserver/handlers"
	"github.com/vidcrunch/vidcrunch/internal/utils/platformerrors"
)

// MockHistoryService is a function-field mock of handlers.HistoryService.
type MockHistoryService struct {
	ListFunc   func(ctx context.Context, ownerID string, params domain.ListParams) ([]domain.CompressionRecord, int64, error)
	CreateFunc func(ctx context.Context, ownerID string, params domain.CreateParams) (*domain.CompressionRecord, error)
	DeleteFunc func(ctx context.Context, ownerID, id string) (string, error)
}

func (m *MockHistoryService) List(ctx context.Context, ownerID string, params domain.ListParams) ([]domain.CompressionRecord, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, ownerID, params)
	}
	return nil, 0, nil
}

func (m *MockHistoryService) Create(ctx context.Context, ownerID string, params domain.CreateParams) (*domain.CompressionRecord, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, ownerID, params)
	}
	return nil, nil
}

func (m *MockHistoryService) Delete(ctx context.Context, ownerID, id string) (string, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, ownerID, id)
	}
	return "", nil
}

func setupHistoryRouter(service handlers.HistoryService, principal string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if principal != "" {
		r.Use(func(c *gin.Context) {
			auth.SetPrincipal(c, principal)
			c.Next()
		})
	}
	handler := handlers.NewHistoryHandler(service, zerolog.Nop())
	r.GET("/history", handler.List)
	r.POST("/history", handler.Create)
	r.DELETE("/history", handler.Delete)
	return r
}

func TestListWithoutPrincipalIsUnauthorized(t *testing.T) {
	router := setupHistoryRouter(&MockHistoryService{}, "")

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/history", nil),
		httptest.NewRequest(http.MethodPost, "/history", strings.NewReader("{}")),
		httptest.NewRequest(http.MethodDelete, "/history?id=vid_x", nil),
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", req.Method, req.URL, rec.Code)
		}
	}
}

func TestListParsesQueryAndShapesResponse(t *testing.T) {
	created := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	var seenOwner string
	var seenParams domain.ListParams
	service := &MockHistoryService{
		ListFunc: func(_ context.Context, ownerID string, params domain.ListParams) ([]domain.CompressionRecord, int64, error) {
			seenOwner = ownerID
			seenParams = params
			return []domain.CompressionRecord{
				{ID: "vid_1", UserID: ownerID, Filename: "a.mp4", OriginalSize: 1000, CompressedSize: 400, CreatedAt: created},
			}, 25, nil
		},
	}
	router := setupHistoryRouter(service, "user-1")

	req := httptest.NewRequest(http.MethodGet, "/history?limit=5&offset=10&search=vac&sort=biggest-saving", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if seenOwner != "user-1" {
		t.Errorf("owner = %q, want user-1", seenOwner)
	}
	if seenParams.Limit != 5 || seenParams.Offset != 10 || seenParams.Search != "vac" || seenParams.Sort != domain.SortBiggestSaving {
		t.Errorf("params = %+v", seenParams)
	}

	var body struct {
		Data  []domain.CompressionRecord `json:"data"`
		Total int64                      `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Total != 25 || len(body.Data) != 1 || body.Data[0].ID != "vid_1" {
		t.Errorf("body = %+v", body)
	}
}

func TestListMalformedPagingFallsBackToDefaults(t *testing.T) {
	var seenParams domain.ListParams
	service := &MockHistoryService{
		ListFunc: func(_ context.Context, _ string, params domain.ListParams) ([]domain.CompressionRecord, int64, error) {
			seenParams = params
			return nil, 0, nil
		},
	}
	router := setupHistoryRouter(service, "user-1")

	req := httptest.NewRequest(http.MethodGet, "/history?limit=abc&offset=xyz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if seenParams.Limit != domain.DefaultPageSize || seenParams.Offset != 0 {
		t.Errorf("params = %+v, want default limit %d offset 0", seenParams, domain.DefaultPageSize)
	}
}

func TestCreateCoercesBodyAndReturns201(t *testing.T) {
	var seenParams domain.CreateParams
	service := &MockHistoryService{
		CreateFunc: func(_ context.Context, ownerID string, params domain.CreateParams) (*domain.CompressionRecord, error) {
			seenParams = params
			return &domain.CompressionRecord{ID: "vid_new", UserID: ownerID, Filename: params.Filename}, nil
		},
	}
	router := setupHistoryRouter(service, "user-1")

	// Sizes and quality arrive as loosely typed JSON; malformed values must
	// resolve to the documented defaults instead of failing the request.
	payload := `{
		"filename": "a.mp4",
		"cloudinary_url": "https://x",
		"original_size": "1000",
		"compressed_size": -5,
		"quality": "abc"
	}`
	req := httptest.NewRequest(http.MethodPost, "/history", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	if seenParams.OriginalSize != 1000 {
		t.Errorf("original size = %d, want 1000", seenParams.OriginalSize)
	}
	if seenParams.CompressedSize != 0 {
		t.Errorf("negative compressed size should coerce to 0, got %d", seenParams.CompressedSize)
	}
	if seenParams.Quality != domain.DefaultQuality {
		t.Errorf("quality = %d, want default %d", seenParams.Quality, domain.DefaultQuality)
	}

	var body struct {
		Data *domain.CompressionRecord `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Data == nil {
		t.Fatalf("expected {data: record} body, got %s", rec.Body.String())
	}
	if body.Data.ID != "vid_new" {
		t.Errorf("data.id = %q, want vid_new", body.Data.ID)
	}
}

func TestCreateValidationErrorIsBadRequest(t *testing.T) {
	service := &MockHistoryService{
		CreateFunc: func(ctx context.Context, _ string, _ domain.CreateParams) (*domain.CompressionRecord, error) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeValidation, "filename and cloudinary_url are required", nil, "test-001")
		},
	}
	router := setupHistoryRouter(service, "user-1")

	req := httptest.NewRequest(http.MethodPost, "/history", strings.NewReader(`{"quality": 80}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
		t.Fatalf("expected {error: message} body, got %s", rec.Body.String())
	}
}

func TestDeleteStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", platformerrors.NewError(context.Background(), platformerrors.LayerDomain,
			platformerrors.ErrorTypeNotFound, "record not found", nil, "test-002"), http.StatusNotFound},
		{"forbidden", platformerrors.NewError(context.Background(), platformerrors.LayerDomain,
			platformerrors.ErrorTypeForbidden, "record belongs to another user", nil, "test-003"), http.StatusForbidden},
		{"validation", platformerrors.NewError(context.Background(), platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "id parameter is required", nil, "test-004"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &MockHistoryService{
				DeleteFunc: func(_ context.Context, _, _ string) (string, error) {
					return "", tt.err
				},
			}
			router := setupHistoryRouter(service, "user-1")

			req := httptest.NewRequest(http.MethodDelete, "/history?id=vid_x", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestDeleteSuccessShape(t *testing.T) {
	service := &MockHistoryService{
		DeleteFunc: func(_ context.Context, ownerID, id string) (string, error) {
			if ownerID != "user-1" || id != "vid_gone" {
				t.Errorf("delete called with (%q, %q)", ownerID, id)
			}
			return id, nil
		},
	}
	router := setupHistoryRouter(service, "user-1")

	req := httptest.NewRequest(http.MethodDelete, "/history?id=vid_gone", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Success   bool   `json:"success"`
		DeletedID string `json:"deletedId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Success || body.DeletedID != "vid_gone" {
		t.Errorf("body = %+v, want {success:true, deletedId:vid_gone}", body)
	}
}
