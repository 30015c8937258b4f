package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/vidcrunch/vidcrunch/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(&entities.CompressionRecord{}); err != nil {
		return err
	}
	log.Info().Msg("applied compression record migrations")
	return nil
}
