package pg

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultDSN = "host=localhost user=postgres dbname=postgres port=5432 sslmode=disable TimeZone=UTC"

// CreateDSN returns databaseURL, or the local development database when
// it is empty.
func CreateDSN(databaseURL string) string {
	if databaseURL != "" {
		return databaseURL
	}
	return defaultDSN
}

func CloseGORM(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get underlying sql.DB from GORM: %w", err)
	}
	return sqlDB.Close()
}

// InitPostgresGORM opens a GORM connection and pings it. GORM's own
// logger reports slow queries and errors through log.
func InitPostgresGORM(dsn string, log *slog.Logger) (*gorm.DB, error) {
	gormLogger := logger.New(
		slog.NewLogLogger(log.Handler(), slog.LevelWarn),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
