package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewSQLite открывает файловую базу и накатывает схему. Подходит для
// локальной разработки, в продакшене ожидается postgres.
func NewSQLite(dbPath string) (*gorm.DB, error) {
	// Редирект пишет клик на каждый переход, без busy_timeout конкурентные
	// записи в один файл падают с SQLITE_BUSY.
	if !strings.Contains(dbPath, "?") {
		dbPath += "?_busy_timeout=5000"
	}
	conn, connErr := gorm.Open(sqlite.Open(dbPath), &gorm.Config{TranslateError: true})
	if connErr != nil {
		return nil, fmt.Errorf("connect database with path %s error: %w", dbPath, connErr)
	}
	if migrateErr := migrateSchema(conn); migrateErr != nil {
		return nil, fmt.Errorf("migrate database error: %w", migrateErr)
	}
	return conn, nil
}
