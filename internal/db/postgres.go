package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewPostgres(dsn string) (*gorm.DB, error) {
	conn, connErr := connectPostgres(dsn)
	if connErr != nil {
		return nil, fmt.Errorf("init database error: %w", connErr)
	}
	if migrateErr := migrateSchema(conn); migrateErr != nil {
		return nil, fmt.Errorf("migrate database error: %w", migrateErr)
	}
	return conn, nil
}

func connectPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect database error: %w", err)
	}
	return db, nil
}
