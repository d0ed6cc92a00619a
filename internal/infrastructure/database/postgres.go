package database

import (
	"context"
	"fmt"
	"time"

	migrate "github.com/rubenv/sql-migrate"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"go.uber.org/zap"

	"github.com/johnquangdev/voice-guard/pkg/config"
	"github.com/johnquangdev/voice-guard/pkg/ready"
)

// MigrationsDir holds the sql-migrate files for the analyses schema
const MigrationsDir = "migrations"

// dialect is the sql-migrate dialect name for the history store
const dialect = "postgres"

// NewPostgresDB opens the analysis history store. SQL statements are only
// logged outside production, since result rows carry full transcripts.
func NewPostgresDB(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.Server.Environment == "production" {
		level = gormlogger.Error
	}

	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseDSN()), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(level),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open history store %s/%s: %w", cfg.Database.Host, cfg.Database.Name, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("history store handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MinConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping history store: %w", err)
	}

	if logger != nil {
		logger.Info("✅ Analysis history store connected",
			zap.String("host", cfg.Database.Host),
			zap.String("database", cfg.Database.Name),
			zap.Int("max_conns", cfg.Database.MaxConns),
		)
	}
	return db, nil
}

// ConnectWithRetry waits for the history store to accept connections at
// startup
func ConnectWithRetry(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	var db *gorm.DB
	err := ready.Wait(ctx, "postgres", ready.DefaultOptions(), logger, func(ctx context.Context) error {
		conn, err := NewPostgresDB(ctx, cfg, logger)
		if err != nil {
			return err
		}
		db = conn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// ApplyMigrations runs at most limit migrations from dir in direction; 0
// means all pending ones. It returns how many were applied.
func ApplyMigrations(db *gorm.DB, dir string, direction migrate.MigrationDirection, limit int) (int, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return 0, fmt.Errorf("history store handle: %w", err)
	}
	n, err := migrate.ExecMax(sqlDB, dialect, &migrate.FileMigrationSource{Dir: dir}, direction, limit)
	if err != nil {
		return n, fmt.Errorf("apply analyses schema from %s: %w", dir, err)
	}
	return n, nil
}

// MigrationStatus lists the applied migrations in order
func MigrationStatus(db *gorm.DB) ([]*migrate.MigrationRecord, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("history store handle: %w", err)
	}
	records, err := migrate.GetMigrationRecords(sqlDB, dialect)
	if err != nil {
		return nil, fmt.Errorf("read migration records: %w", err)
	}
	return records, nil
}

// AutoMigrate brings the analyses schema up to date at startup
func AutoMigrate(db *gorm.DB, logger *zap.Logger) error {
	n, err := ApplyMigrations(db, MigrationsDir, migrate.Up, 0)
	if err != nil {
		return err
	}
	if logger != nil {
		logger.Info("✅ Analyses schema up to date", zap.Int("applied", n))
	}
	return nil
}

// CloseDB releases the history store connections
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("history store handle: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close history store: %w", err)
	}
	return nil
}
