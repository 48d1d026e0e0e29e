package services

import "errors"

// Сентинельные ошибки сервисного слоя, по ним контроллеры выбирают статус
// ответа. Состояния заблокированной ссылки передает BlockedError.
var (
	ErrUnknown        = errors.New("[service]: unknown error")
	ErrRecordNotFound = errors.New("[service]: record not found")
	ErrDuplicateKey   = errors.New("[service]: duplicate key")
)
