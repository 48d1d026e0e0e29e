package db

import (
	"fmt"

	"github.com/fsdevblog/linktrack/internal/models"

	"gorm.io/gorm"
)

type StorageType string

const (
	StorageTypePostgres StorageType = "postgres"
	StorageTypeSQLite   StorageType = "sqlite"
)

type FactoryConfig struct {
	StorageType StorageType
	PostgresDSN string
	SQLitePath  string
}

// NewConnectionFactory открывает подключение к базе и прогоняет миграцию схемы.
func NewConnectionFactory(config FactoryConfig) (*gorm.DB, error) {
	switch config.StorageType {
	case StorageTypePostgres:
		if config.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres dsn is empty")
		}
		return NewPostgres(config.PostgresDSN)
	case StorageTypeSQLite:
		if config.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite path is empty")
		}
		return NewSQLite(config.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", config.StorageType)
	}
}

// migrateSchema пока обходимся автомиграцией, без версионируемых миграций.
func migrateSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.ShortURL{}, &models.Click{}); err != nil {
		return fmt.Errorf("migrating sql: %w", err)
	}
	return nil
}
