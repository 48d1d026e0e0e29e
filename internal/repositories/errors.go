package repositories

import "errors"

// Сентинельные ошибки хранилища. Бэкенды приводят ошибки драйверов к этим
// трем, сервисный слой различает их через errors.Is.
var (
	ErrNotFound     = errors.New("[repository]: record not found")
	ErrDuplicateKey = errors.New("[repository]: duplicate key")
	ErrUnknown      = errors.New("[repository]: unknown error")
)
