package middlewares

import (
	"github.com/fsdevblog/linktrack/internal/repositories"

	"github.com/gin-gonic/gin"
)

const (
	// ScopeKey ключ области видимости в контексте gin.
	ScopeKey = "visibilityScope"

	UserIDHeader         = "X-User-ID"
	OrganizationIDHeader = "X-Organization-ID"
)

// ScopeMiddleware извлекает область видимости из заголовков. Сами заголовки
// выставляет внешний аутентифицирующий прокси, здесь им доверяем.
// Организация имеет приоритет над пользователем.
func ScopeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var scope repositories.Scope
		if orgID := c.GetHeader(OrganizationIDHeader); orgID != "" {
			scope.OrganizationID = &orgID
		} else if userID := c.GetHeader(UserIDHeader); userID != "" {
			scope.UserID = &userID
		}
		c.Set(ScopeKey, scope)
		c.Next()
	}
}

// ScopeFrom возвращает область видимости запроса. Пустая область не дает
// доступа ни к одной записи.
func ScopeFrom(c *gin.Context) repositories.Scope {
	if v, ok := c.Get(ScopeKey); ok {
		if scope, castOK := v.(repositories.Scope); castOK {
			return scope
		}
	}
	return repositories.Scope{}
}
