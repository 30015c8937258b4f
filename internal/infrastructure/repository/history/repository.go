package history

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "github.com/vidcrunch/vidcrunch/internal/domain/history"
	"github.com/vidcrunch/vidcrunch/internal/infrastructure/database/entities"
	"github.com/vidcrunch/vidcrunch/internal/utils/platformerrors"
)

// Repository handles compression record persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByOwner returns the requested page plus an exact total, both restricted
// to ownerID by an equality filter applied here, never by client input.
func (r *Repository) ListByOwner(ctx context.Context, ownerID string, q domain.ListParams) ([]domain.CompressionRecord, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&entities.CompressionRecord{}).
		Where("user_id = ?", ownerID)

	if q.Search != "" {
		query = query.Where("filename ILIKE ?", "%"+q.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to count compression records",
			err,
			"history-list-count-001",
		)
	}

	switch q.Sort {
	case domain.SortOldest:
		query = query.Order("created_at ASC")
	case domain.SortBiggestFile:
		query = query.Order("original_size DESC")
	default:
		// newest, and biggest-saving which is re-sorted in memory by the
		// caller because the ratio is not a stored column.
		query = query.Order("created_at DESC")
	}

	var rows []entities.CompressionRecord
	if err := query.Limit(q.Limit).Offset(q.Offset).Find(&rows).Error; err != nil {
		return nil, 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list compression records",
			err,
			"history-list-db-001",
		)
	}

	records := make([]domain.CompressionRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, mapEntity(row))
	}
	return records, total, nil
}

func (r *Repository) Create(ctx context.Context, rec *domain.CompressionRecord) error {
	entity := entities.CompressionRecord{
		ID:             rec.ID,
		UserID:         rec.UserID,
		Filename:       rec.Filename,
		OriginalSize:   rec.OriginalSize,
		CompressedSize: rec.CompressedSize,
		CloudinaryURL:  rec.CloudinaryURL,
		Resolution:     rec.Resolution,
		Quality:        rec.Quality,
		PublicID:       rec.PublicID,
		CreatedAt:      rec.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create compression record",
			err,
			"history-create-db-001",
		)
	}
	rec.CreatedAt = entity.CreatedAt
	return nil
}

// GetByID returns (nil, nil) when no record exists.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.CompressionRecord, error) {
	var entity entities.CompressionRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to get compression record",
			err,
			"history-get-db-001",
		)
	}
	rec := mapEntity(entity)
	return &rec, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&entities.CompressionRecord{}).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete compression record",
			err,
			"history-delete-db-001",
		)
	}
	return nil
}

func mapEntity(entity entities.CompressionRecord) domain.CompressionRecord {
	return domain.CompressionRecord{
		ID:             entity.ID,
		UserID:         entity.UserID,
		Filename:       entity.Filename,
		OriginalSize:   entity.OriginalSize,
		CompressedSize: entity.CompressedSize,
		CloudinaryURL:  entity.CloudinaryURL,
		Resolution:     entity.Resolution,
		Quality:        entity.Quality,
		PublicID:       entity.PublicID,
		CreatedAt:      entity.CreatedAt,
	}
}
