package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vidcrunch/vidcrunch/internal/config"
)

// Connect opens the compression history database described by cfg. The
// target database is created on first boot, so a fresh environment only
// needs a reachable Postgres server.
func Connect(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	dsn := cfg.DBPostgresqlWriteDSN
	if dsn == "" {
		return nil, fmt.Errorf("database DSN is empty")
	}

	if err := createIfMissing(dsn, log); err != nil {
		return nil, fmt.Errorf("create database: %w", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt: true,
		Logger:      gormlogger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access connection pool: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnLifetime)

	return db, nil
}

// gormLogLevel keeps query logging quiet unless the whole service runs at
// debug level.
func gormLogLevel(level string) gormlogger.LogLevel {
	if strings.EqualFold(strings.TrimSpace(level), "debug") {
		return gormlogger.Info
	}
	return gormlogger.Warn
}

// createIfMissing issues CREATE DATABASE through the maintenance database
// when the DSN names one that does not exist yet. DSNs in keyword/value
// form are left for the operator to provision.
func createIfMissing(dsn string, log zerolog.Logger) error {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return nil
	}

	name := strings.TrimPrefix(u.Path, "/")
	if name == "" || name == "postgres" {
		return nil
	}

	admin := *u
	admin.Path = "/postgres"

	adminDB, err := sql.Open("postgres", admin.String())
	if err != nil {
		return err
	}
	defer adminDB.Close()

	var exists bool
	if err := adminDB.QueryRow("SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", name).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return nil
	}

	log.Info().Str("database", name).Msg("creating history database")
	_, err = adminDB.Exec("CREATE DATABASE " + quoteIdentifier(name))
	return err
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
