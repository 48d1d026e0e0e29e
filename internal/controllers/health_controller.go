package controllers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ConnectionChecker проверка соединения с базой данных.
type ConnectionChecker interface {
	PingContext(ctx context.Context) error
}

// HealthController контроллер для проверки работоспособности сервиса.
type HealthController struct {
	conn ConnectionChecker
}

func NewHealthController(conn ConnectionChecker) *HealthController {
	return &HealthController{conn: conn}
}

// Ping обрабатывает GET /ping запрос.
func (c *HealthController) Ping(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, DefaultRequestTimeout)
	defer cancel()
	if err := c.conn.PingContext(pingCtx); err != nil {
		_ = ctx.Error(fmt.Errorf("ping error: %w", err))
		ctx.Status(http.StatusInternalServerError)
		return
	}
	ctx.String(http.StatusOK, "pong")
}
