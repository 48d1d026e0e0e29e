package services

import (
	"fmt"
	"time"

	"github.com/fsdevblog/linktrack/internal/models"
)

// LifecycleState состояние короткой ссылки с точки зрения редиректа.
type LifecycleState string

const (
	StateActive       LifecycleState = "active"
	StateNotFound     LifecycleState = "not_found"
	StateInactive     LifecycleState = "inactive"
	StateExpired      LifecycleState = "expired"
	StateLimitReached LifecycleState = "limit_reached"
)

// BlockedError ссылка существует, но редирект по ней запрещен. Клик в этом
// случае не записывается и счетчик не растет.
type BlockedError struct {
	State LifecycleState
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("[service]: link is not available: %s", e.State)
}

// ValidateLifecycle проверяет доступность ссылки. Порядок проверок
// фиксированный: отсутствие записи, флаг активности, срок жизни, лимит
// переходов. Возвращается первое сработавшее состояние. Срок жизни
// сравнивается строго: в момент expiresAt ссылка еще жива.
func ValidateLifecycle(sURL *models.ShortURL, now time.Time) LifecycleState {
	if sURL == nil {
		return StateNotFound
	}
	if !sURL.IsActive {
		return StateInactive
	}
	if sURL.ExpiresAt != nil && now.After(*sURL.ExpiresAt) {
		return StateExpired
	}
	if sURL.MaxClicks != nil && sURL.ClickCount >= *sURL.MaxClicks {
		return StateLimitReached
	}
	return StateActive
}
