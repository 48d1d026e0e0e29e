package controllers

import (
	"context"
	"net/http"

	"github.com/fsdevblog/linktrack/internal/fingerprint"
	"github.com/fsdevblog/linktrack/internal/models"
	"github.com/fsdevblog/linktrack/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// Redirector разрешает переход по слагу и фиксирует клик.
type Redirector interface {
	Resolve(ctx context.Context, slug string, fp fingerprint.Fingerprint) (*services.RedirectResult, error)
}

type RedirectController struct {
	redirects Redirector
}

func NewRedirectController(redirects Redirector) *RedirectController {
	return &RedirectController{redirects: redirects}
}

// Redirect обрабатывает GET /s/:slug. Несуществующий слаг дает 404,
// неактивная, истекшая или исчерпавшая лимит ссылка дает 410. Если клик
// записать не удалось, отвечаем 500 и редирект не выполняем.
func (c *RedirectController) Redirect(ctx *gin.Context) {
	slug := ctx.Param("slug")
	if slug == "" || len(slug) > models.SlugMaxLength {
		jsonError(ctx, http.StatusNotFound, ErrRecordNotFound)
		return
	}

	fp := fingerprint.Extract(ctx.Request)

	result, err := c.redirects.Resolve(ctx.Request.Context(), slug, fp)
	if err != nil {
		var blocked *services.BlockedError
		switch {
		case errors.Is(err, services.ErrRecordNotFound):
			jsonError(ctx, http.StatusNotFound, ErrRecordNotFound)
		case errors.As(err, &blocked):
			ctx.AbortWithStatusJSON(http.StatusGone, gin.H{
				"error":  ErrLinkGone.Error(),
				"reason": string(blocked.State),
			})
		default:
			_ = ctx.Error(err)
			jsonError(ctx, http.StatusInternalServerError, ErrInternal)
		}
		return
	}

	ctx.Redirect(http.StatusTemporaryRedirect, result.Target)
}
