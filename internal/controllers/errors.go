package controllers

import "errors"

// Ошибки.
var (
	ErrRecordNotFound = errors.New("record not found") // Запись не найдена
	ErrLinkGone       = errors.New("link is gone")     // Ссылка недоступна
	ErrBadRequest     = errors.New("bad request")      // Некорректный запрос
	ErrInternal       = errors.New("internal error")   // Прочая ошибка
)
