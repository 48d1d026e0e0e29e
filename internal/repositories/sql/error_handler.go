package sql

import (
	"github.com/fsdevblog/linktrack/internal/repositories"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// convertErrType приводит ошибки gorm к общим ошибкам уровня репозитория.
func convertErrType(err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repositories.ErrDuplicateKey
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repositories.ErrNotFound
	default:
		return repositories.ErrUnknown
	}
}
