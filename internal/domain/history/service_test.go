package history_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	history "github.com/vidcrunch/vidcrunch/internal/domain/history"
	"github.com/vidcrunch/vidcrunch/internal/utils/platformerrors"
)

// MockRepository is a function-field mock of history.Repository.
type MockRepository struct {
	ListByOwnerFunc func(ctx context.Context, ownerID string, q history.ListParams) ([]history.CompressionRecord, int64, error)
	CreateFunc      func(ctx context.Context, rec *history.CompressionRecord) error
	GetByIDFunc     func(ctx context.Context, id string) (*history.CompressionRecord, error)
	DeleteFunc      func(ctx context.Context, id string) error
}

func (m *MockRepository) ListByOwner(ctx context.Context, ownerID string, q history.ListParams) ([]history.CompressionRecord, int64, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID, q)
	}
	return nil, 0, nil
}

func (m *MockRepository) Create(ctx context.Context, rec *history.CompressionRecord) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rec)
	}
	return nil
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*history.CompressionRecord, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func newService(repo history.Repository) *history.Service {
	return history.NewService(repo, zerolog.Nop())
}

func TestListClampsPaging(t *testing.T) {
	var seen history.ListParams
	repo := &MockRepository{
		ListByOwnerFunc: func(_ context.Context, _ string, q history.ListParams) ([]history.CompressionRecord, int64, error) {
			seen = q
			return nil, 0, nil
		},
	}
	svc := newService(repo)

	if _, _, err := svc.List(context.Background(), "user-1", history.ListParams{Limit: 999, Offset: -3, Sort: "bogus"}); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if seen.Limit != history.MaxPageSize {
		t.Errorf("limit = %d, want clamped to %d", seen.Limit, history.MaxPageSize)
	}
	if seen.Offset != 0 {
		t.Errorf("offset = %d, want 0", seen.Offset)
	}
	if seen.Sort != history.SortNewest {
		t.Errorf("sort = %q, want fallback to %q", seen.Sort, history.SortNewest)
	}

	if _, _, err := svc.List(context.Background(), "user-1", history.ListParams{}); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if seen.Limit != history.DefaultPageSize {
		t.Errorf("default limit = %d, want %d", seen.Limit, history.DefaultPageSize)
	}
}

func TestListBiggestSavingOrder(t *testing.T) {
	records := []history.CompressionRecord{
		{ID: "a", OriginalSize: 1000, CompressedSize: 900},  // 10%
		{ID: "b", OriginalSize: 1000, CompressedSize: 400},  // 60%
		{ID: "c", OriginalSize: 0, CompressedSize: 100},     // original=0 counts as 0
		{ID: "d", OriginalSize: 1000, CompressedSize: 400},  // 60%, ties keep order
		{ID: "e", OriginalSize: 1000, CompressedSize: 2000}, // grew, -100%
		{ID: "f", OriginalSize: 1000, CompressedSize: 1100}, // grew, -10%
	}
	repo := &MockRepository{
		ListByOwnerFunc: func(_ context.Context, _ string, _ history.ListParams) ([]history.CompressionRecord, int64, error) {
			return append([]history.CompressionRecord(nil), records...), int64(len(records)), nil
		},
	}
	svc := newService(repo)

	got, total, err := svc.List(context.Background(), "user-1", history.ListParams{Sort: history.SortBiggestSaving})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if total != 6 {
		t.Fatalf("total = %d, want 6", total)
	}

	order := make([]string, len(got))
	for i, rec := range got {
		order[i] = rec.ID
	}
	// Records that grew order strictly after every real saving and after the
	// original=0 sentinel, least bloated first.
	want := []string{"b", "d", "a", "c", "f", "e"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("savings order = %v, want %v", order, want)
		}
	}
}

func TestCreateStampsAndDefaults(t *testing.T) {
	var stored *history.CompressionRecord
	repo := &MockRepository{
		CreateFunc: func(_ context.Context, rec *history.CompressionRecord) error {
			stored = rec
			return nil
		},
	}
	svc := newService(repo)

	before := time.Now().UTC()
	rec, err := svc.Create(context.Background(), "user-1", history.CreateParams{
		Filename:      "a.mp4",
		CloudinaryURL: "https://x",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if stored == nil || stored != rec {
		t.Fatal("record was not handed to the repository")
	}
	if rec.ID == "" {
		t.Error("id was not assigned")
	}
	if rec.UserID != "user-1" {
		t.Errorf("owner = %q, want user-1", rec.UserID)
	}
	if rec.OriginalSize != 0 || rec.CompressedSize != 0 {
		t.Errorf("sizes = %d/%d, want 0/0", rec.OriginalSize, rec.CompressedSize)
	}
	if rec.Quality != history.DefaultQuality {
		t.Errorf("quality = %d, want %d", rec.Quality, history.DefaultQuality)
	}
	if rec.Resolution != history.ResolutionOriginal {
		t.Errorf("resolution = %q, want %q", rec.Resolution, history.ResolutionOriginal)
	}
	if rec.CreatedAt.Before(before) || rec.CreatedAt.After(time.Now().UTC()) {
		t.Errorf("createdAt %v not stamped server-side", rec.CreatedAt)
	}
}

func TestCreateRejectsMissingFields(t *testing.T) {
	svc := newService(&MockRepository{})

	for _, params := range []history.CreateParams{
		{CloudinaryURL: "https://x"},
		{Filename: "a.mp4"},
		{Filename: "   ", CloudinaryURL: "https://x"},
	} {
		_, err := svc.Create(context.Background(), "user-1", params)
		if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
			t.Errorf("Create(%+v) error = %v, want validation error", params, err)
		}
	}
}

func TestCreateTruncatesFilename(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	svc := newService(&MockRepository{})

	rec, err := svc.Create(context.Background(), "user-1", history.CreateParams{
		Filename:      string(long),
		CloudinaryURL: "https://x",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if len(rec.Filename) != history.MaxFilenameLen {
		t.Errorf("filename length = %d, want %d", len(rec.Filename), history.MaxFilenameLen)
	}
}

func TestCreateTruncatesResolution(t *testing.T) {
	svc := newService(&MockRepository{})

	rec, err := svc.Create(context.Background(), "user-1", history.CreateParams{
		Filename:      "a.mp4",
		CloudinaryURL: "https://x",
		Resolution:    strings.Repeat("9", 100) + "x1080",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if len(rec.Resolution) != history.MaxResolutionLen {
		t.Errorf("resolution length = %d, want %d", len(rec.Resolution), history.MaxResolutionLen)
	}
}

func TestDeleteOwnershipAndIdempotence(t *testing.T) {
	store := map[string]*history.CompressionRecord{
		"vid_mine":   {ID: "vid_mine", UserID: "user-1"},
		"vid_theirs": {ID: "vid_theirs", UserID: "user-2"},
	}
	repo := &MockRepository{
		GetByIDFunc: func(_ context.Context, id string) (*history.CompressionRecord, error) {
			return store[id], nil
		},
		DeleteFunc: func(_ context.Context, id string) error {
			delete(store, id)
			return nil
		},
	}
	svc := newService(repo)
	ctx := context.Background()

	if _, err := svc.Delete(ctx, "user-1", ""); !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
		t.Errorf("empty id error = %v, want validation", err)
	}

	// Someone else's record is forbidden, not not-found and not silent.
	if _, err := svc.Delete(ctx, "user-1", "vid_theirs"); !platformerrors.IsErrorType(err, platformerrors.ErrorTypeForbidden) {
		t.Errorf("foreign record error = %v, want forbidden", err)
	}
	if _, ok := store["vid_theirs"]; !ok {
		t.Error("forbidden delete must not remove the record")
	}

	deletedID, err := svc.Delete(ctx, "user-1", "vid_mine")
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if deletedID != "vid_mine" {
		t.Errorf("deletedID = %q, want vid_mine", deletedID)
	}

	// Second attempt on the same id is not-found.
	if _, err := svc.Delete(ctx, "user-1", "vid_mine"); !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Errorf("second delete error = %v, want not found", err)
	}
}

func TestSavingsRatio(t *testing.T) {
	if got := history.SavingsRatio(1000, 400); got < 0.599 || got > 0.601 {
		t.Errorf("SavingsRatio(1000, 400) = %v, want 0.6", got)
	}
	if got := history.SavingsRatio(0, 100); got != 0 {
		t.Errorf("SavingsRatio(0, 100) = %v, want 0", got)
	}
	if got := history.SavingsRatio(1000, 1500); got > -0.499 || got < -0.501 {
		t.Errorf("SavingsRatio(1000, 1500) = %v, want -0.5", got)
	}
}
