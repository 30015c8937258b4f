//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/vidcrunch/vidcrunch/internal/config"
	domain "github.com/vidcrunch/vidcrunch/internal/domain/history"
	"github.com/vidcrunch/vidcrunch/internal/domain/signer"
	"github.com/vidcrunch/vidcrunch/internal/infrastructure/auth"
	"github.com/vidcrunch/vidcrunch/internal/infrastructure/database"
	"github.com/vidcrunch/vidcrunch/internal/infrastructure/logger"
	repo "github.com/vidcrunch/vidcrunch/internal/infrastructure/repository/history"
	"github.com/vidcrunch/vidcrunch/internal/interfaces/httpserver"
	"github.com/vidcrunch/vidcrunch/internal/interfaces/httpserver/handlers"
)

var historySet = wire.NewSet(
	repo.NewRepository,
	wire.Bind(new(domain.Repository), new(*repo.Repository)),
	domain.NewService,
	wire.Bind(new(handlers.HistoryService), new(*domain.Service)),
)

var signSet = wire.NewSet(
	newSignerCredentials,
	signer.NewService,
	wire.Bind(new(handlers.SignService), new(*signer.Service)),
)

// BuildApplication assembles the compress API with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		auth.NewValidator,
		newGormDB,
		historySet,
		signSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newGormDB(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func newSignerCredentials(cfg *config.Config) signer.Credentials {
	return signer.Credentials{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
	}
}
