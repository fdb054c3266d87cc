// Package postgres implements the repository interfaces on PostgreSQL through
// gorm. Connection pooling, schema migration and transaction management live
// here alongside the repository implementations.
package postgres

import (
	"context"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/trackops/riskregistry/internal/config"
	"github.com/trackops/riskregistry/internal/domain/models"
	"github.com/trackops/riskregistry/pkg/logger"
)

// NewDBConnection opens a pooled gorm connection and verifies it with a ping.
func NewDBConnection(cfg *config.DatabaseConfig, log logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		log.Error(context.Background(), "Failed to open database connection", err,
			logger.String("host", cfg.Host),
			logger.String("database", cfg.Database),
		)
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxConnLifetime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		log.Error(context.Background(), "Database ping failed", err)
		return nil, err
	}

	log.Info(context.Background(), "Database connection established",
		logger.String("host", cfg.Host),
		logger.String("database", cfg.Database),
		logger.Int("max_conns", cfg.MaxConns),
	)

	return db, nil
}

// AutoMigrate creates or updates the schema for all registry tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.RiskTheme{},
		&models.RiskCategory{},
		&models.Risk{},
		&models.ControlLibrary{},
		&models.RiskControl{},
		&models.RiskAction{},
	)
}
