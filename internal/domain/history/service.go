package history

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vidcrunch/vidcrunch/internal/utils/coerce"
	"github.com/vidcrunch/vidcrunch/internal/utils/platformerrors"
	"github.com/vidcrunch/vidcrunch/internal/utils/recordid"
)

// Repository defines persistence operations needed by the service.
type Repository interface {
	// ListByOwner returns the page matching q plus the exact total count,
	// both scoped to ownerID.
	ListByOwner(ctx context.Context, ownerID string, q ListParams) ([]CompressionRecord, int64, error)
	Create(ctx context.Context, rec *CompressionRecord) error
	// GetByID returns (nil, nil) when the record does not exist.
	GetByID(ctx context.Context, id string) (*CompressionRecord, error)
	Delete(ctx context.Context, id string) error
}

// Service owns the authorization-scoped history operations.
type Service struct {
	repo  Repository
	log   zerolog.Logger
	now   func() time.Time
	newID func() string
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{
		repo:  repo,
		log:   log.With().Str("component", "history-service").Logger(),
		now:   time.Now,
		newID: recordid.New,
	}
}

// List returns the owner's page of records plus the total count.
//
// biggest-saving cannot be expressed as a database ordering over the derived
// ratio, so the repository fetches that page newest-first and the page is
// stable-sorted here by savings descending; records with original size 0
// sort as savings 0.
func (s *Service) List(ctx context.Context, ownerID string, params ListParams) ([]CompressionRecord, int64, error) {
	if params.Limit == 0 {
		params.Limit = DefaultPageSize
	}
	params.Limit = coerce.Clamp(params.Limit, 1, MaxPageSize)
	if params.Offset < 0 {
		params.Offset = 0
	}
	params.Search = strings.TrimSpace(params.Search)
	params.Sort = ParseSortKey(string(params.Sort))

	records, total, err := s.repo.ListByOwner(ctx, ownerID, params)
	if err != nil {
		return nil, 0, err
	}

	if params.Sort == SortBiggestSaving {
		sort.SliceStable(records, func(i, j int) bool {
			return SavingsRatio(records[i].OriginalSize, records[i].CompressedSize) >
				SavingsRatio(records[j].OriginalSize, records[j].CompressedSize)
		})
	}

	return records, total, nil
}

// Create persists a new record for ownerID. Owner and creation time are
// stamped here and never trusted from the caller.
func (s *Service) Create(ctx context.Context, ownerID string, params CreateParams) (*CompressionRecord, error) {
	filename := strings.TrimSpace(params.Filename)
	remoteURL := strings.TrimSpace(params.CloudinaryURL)
	if filename == "" || remoteURL == "" {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"filename and cloudinary_url are required",
			nil,
			"history-create-validation-001",
		)
	}

	resolution := coerce.Truncate(strings.TrimSpace(params.Resolution), MaxResolutionLen)
	if resolution == "" {
		resolution = ResolutionOriginal
	}
	quality := params.Quality
	if quality == 0 {
		quality = DefaultQuality
	}
	quality = coerce.Clamp(quality, 1, 100)

	rec := &CompressionRecord{
		ID:             s.newID(),
		UserID:         ownerID,
		Filename:       coerce.Truncate(filename, MaxFilenameLen),
		OriginalSize:   maxInt64(params.OriginalSize, 0),
		CompressedSize: maxInt64(params.CompressedSize, 0),
		CloudinaryURL:  remoteURL,
		Resolution:     resolution,
		Quality:        quality,
		PublicID:       params.PublicID,
		CreatedAt:      s.now().UTC(),
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes the record with the given id after verifying ownership.
// A missing record yields NotFound; a record owned by someone else yields
// Forbidden without leaking further detail. Re-deleting an already deleted
// id therefore yields NotFound.
func (s *Service) Delete(ctx context.Context, ownerID, id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"id parameter is required",
			nil,
			"history-delete-validation-001",
		)
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if existing == nil {
		return "", platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeNotFound,
			"record not found",
			nil,
			"history-delete-notfound-001",
		)
	}
	if existing.UserID != ownerID {
		return "", platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeForbidden,
			"record belongs to another user",
			nil,
			"history-delete-forbidden-001",
		)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}

func maxInt64(n, floor int64) int64 {
	if n < floor {
		return floor
	}
	return n
}
