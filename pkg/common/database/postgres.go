package database

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/synaptica-ai/trialmatch/pkg/common/config"
	"github.com/synaptica-ai/trialmatch/pkg/common/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	db     *gorm.DB
	dbOnce sync.Once
)

// PostgresDSN renders the key/value connection string for the configured database.
func PostgresDSN(cfg *config.Config) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s application_name=trialmatch",
		cfg.PostgresHost,
		cfg.PostgresUser,
		cfg.PostgresPassword,
		cfg.PostgresDB,
		cfg.PostgresPort,
		cfg.PostgresSSLMode,
	)
}

// GetPostgres opens the shared connection holding the derived profile table.
// Writes only happen in the rebuild transaction, so gorm's per-statement
// default transaction is skipped.
func GetPostgres() (*gorm.DB, error) {
	var err error
	dbOnce.Do(func() {
		cfg := config.Load()
		db, err = gorm.Open(postgres.Open(PostgresDSN(cfg)), &gorm.Config{
			Logger:                 gormlogger.Default.LogMode(gormlogger.Warn),
			SkipDefaultTransaction: true,
		})
		if err != nil {
			logger.Log.WithError(err).Error("Failed to connect to PostgreSQL")
			db = nil
			return
		}

		if sqlDB, poolErr := db.DB(); poolErr == nil {
			sqlDB.SetMaxOpenConns(20)
			sqlDB.SetMaxIdleConns(5)
			sqlDB.SetConnMaxLifetime(30 * time.Minute)
		}

		logger.Log.WithField("database", cfg.PostgresDB).Info("Connected to PostgreSQL")
	})

	if db == nil && err == nil {
		err = errors.New("postgres unavailable")
	}
	return db, err
}

func ClosePostgres() error {
	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
