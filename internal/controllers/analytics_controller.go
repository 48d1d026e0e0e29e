package controllers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fsdevblog/linktrack/internal/controllers/middlewares"
	"github.com/fsdevblog/linktrack/internal/models"
	"github.com/fsdevblog/linktrack/internal/repositories"
	"github.com/fsdevblog/linktrack/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// defaultDailyDays длина ряда по дням по умолчанию.
const defaultDailyDays = 30

// AnalyticsProvider отчеты по кликам в границах области видимости.
type AnalyticsProvider interface {
	Overview(ctx context.Context, scope repositories.Scope) (*services.Overview, error)
	DailyClicks(ctx context.Context, scope repositories.Scope, urlID *string, days int) ([]services.DailyPoint, error)
	TopURLs(ctx context.Context, scope repositories.Scope, limit int) ([]models.ShortURL, error)
	TopCountries(ctx context.Context, scope repositories.Scope, urlID *string, limit int) ([]services.NamedCount, error)
	TopDevices(ctx context.Context, scope repositories.Scope, urlID *string, limit int) ([]services.NamedCount, error)
	TopBrowsers(ctx context.Context, scope repositories.Scope, urlID *string, limit int) ([]services.NamedCount, error)
	TopReferrers(ctx context.Context, scope repositories.Scope, urlID *string, limit int) ([]services.RefererStat, error)
	Clicks(ctx context.Context, scope repositories.Scope, filter repositories.ClickFilter, page, pageSize int) (*services.ClickPage, error)
	ExportCSV(ctx context.Context, w io.Writer, scope repositories.Scope, filter repositories.ClickFilter) error
	Rollup(ctx context.Context, scope repositories.Scope, urlID string, days int) (*services.URLRollup, error)
}

type AnalyticsController struct {
	analytics AnalyticsProvider
}

func NewAnalyticsController(analytics AnalyticsProvider) *AnalyticsController {
	return &AnalyticsController{analytics: analytics}
}

// Query обрабатывает GET /api/analytics. Вид отчета выбирается query-параметром
// `type`, неизвестный тип дает 400.
func (c *AnalyticsController) Query(ctx *gin.Context) {
	scope := middlewares.ScopeFrom(ctx)

	switch ctx.Query("type") {
	case "overview":
		c.overview(ctx, scope)
	case "daily":
		c.daily(ctx, scope)
	case "top-urls":
		c.topURLs(ctx, scope)
	case "countries":
		c.named(ctx, scope, c.analytics.TopCountries)
	case "devices":
		c.named(ctx, scope, c.analytics.TopDevices)
	case "browsers":
		c.named(ctx, scope, c.analytics.TopBrowsers)
	case "referrers":
		c.referrers(ctx, scope)
	case "clicks":
		c.clicks(ctx, scope)
	case "export":
		c.export(ctx, scope)
	default:
		jsonError(ctx, http.StatusBadRequest, ErrBadRequest)
	}
}

// URLAnalytics обрабатывает GET /api/urls/:id/analytics. Чужая или
// несуществующая ссылка дает 404.
func (c *AnalyticsController) URLAnalytics(ctx *gin.Context) {
	scope := middlewares.ScopeFrom(ctx)
	days := queryInt(ctx, "days", defaultDailyDays, 1, 365)

	rollup, err := c.analytics.Rollup(ctx.Request.Context(), scope, ctx.Param("id"), days)
	if err != nil {
		if errors.Is(err, services.ErrRecordNotFound) {
			jsonError(ctx, http.StatusNotFound, ErrRecordNotFound)
			return
		}
		_ = ctx.Error(err)
		jsonError(ctx, http.StatusInternalServerError, ErrInternal)
		return
	}
	ctx.JSON(http.StatusOK, rollup)
}

func (c *AnalyticsController) overview(ctx *gin.Context, scope repositories.Scope) {
	overview, err := c.analytics.Overview(ctx.Request.Context(), scope)
	if err != nil {
		_ = ctx.Error(err)
		jsonError(ctx, http.StatusInternalServerError, ErrInternal)
		return
	}
	ctx.JSON(http.StatusOK, overview)
}

func (c *AnalyticsController) daily(ctx *gin.Context, scope repositories.Scope) {
	days := queryInt(ctx, "days", defaultDailyDays, 1, 365)
	series, err := c.analytics.DailyClicks(ctx.Request.Context(), scope, urlIDParam(ctx), days)
	if err != nil {
		_ = ctx.Error(err)
		jsonError(ctx, http.StatusInternalServerError, ErrInternal)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"series": series})
}

func (c *AnalyticsController) topURLs(ctx *gin.Context, scope repositories.Scope) {
	limit := queryInt(ctx, "limit", defaultTopLimit, 1, maxTopLimit)
	urls, err := c.analytics.TopURLs(ctx.Request.Context(), scope, limit)
	if err != nil {
		_ = ctx.Error(err)
		jsonError(ctx, http.StatusInternalServerError, ErrInternal)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"items": urls})
}

func (c *AnalyticsController) named(
	ctx *gin.Context,
	scope repositories.Scope,
	fetch func(context.Context, repositories.Scope, *string, int) ([]services.NamedCount, error),
) {
	limit := queryInt(ctx, "limit", defaultTopLimit, 1, maxTopLimit)
	counts, err := fetch(ctx.Request.Context(), scope, urlIDParam(ctx), limit)
	if err != nil {
		_ = ctx.Error(err)
		jsonError(ctx, http.StatusInternalServerError, ErrInternal)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"items": counts})
}

func (c *AnalyticsController) referrers(ctx *gin.Context, scope repositories.Scope) {
	limit := queryInt(ctx, "limit", defaultTopLimit, 1, maxTopLimit)
	stats, err := c.analytics.TopReferrers(ctx.Request.Context(), scope, urlIDParam(ctx), limit)
	if err != nil {
		_ = ctx.Error(err)
		jsonError(ctx, http.StatusInternalServerError, ErrInternal)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"items": stats})
}

func (c *AnalyticsController) clicks(ctx *gin.Context, scope repositories.Scope) {
	page := queryInt(ctx, "page", 1, 1, 1<<30)
	pageSize := queryInt(ctx, "pageSize", defaultPageSize, 1, maxPageSize)

	result, err := c.analytics.Clicks(ctx.Request.Context(), scope, clickFilter(ctx), page, pageSize)
	if err != nil {
		_ = ctx.Error(err)
		jsonError(ctx, http.StatusInternalServerError, ErrInternal)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

func (c *AnalyticsController) export(ctx *gin.Context, scope repositories.Scope) {
	filename := fmt.Sprintf("clicks-%s.csv", time.Now().UTC().Format("2006-01-02"))
	ctx.Header("Content-Type", "text/csv; charset=utf-8")
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := c.analytics.ExportCSV(ctx.Request.Context(), ctx.Writer, scope, clickFilter(ctx)); err != nil {
		// Заголовки уже могли уйти клиенту, статус менять поздно.
		_ = ctx.Error(err)
		return
	}
	ctx.Status(http.StatusOK)
}

// urlIDParam необязательное сужение отчета до одной ссылки.
func urlIDParam(ctx *gin.Context) *string {
	if urlID := ctx.Query("urlId"); urlID != "" {
		return &urlID
	}
	return nil
}

// clickFilter собирает фильтры листинга кликов из query-параметров.
func clickFilter(ctx *gin.Context) repositories.ClickFilter {
	var filter repositories.ClickFilter

	if urlID := ctx.Query("urlId"); urlID != "" {
		filter.ShortURLID = &urlID
	}
	if country := ctx.Query("country"); country != "" {
		filter.Country = &country
	}
	if device := ctx.Query("device"); device != "" {
		filter.Device = &device
	}
	if from := ctx.Query("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filter.From = &t
		}
	}
	if to := ctx.Query("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filter.To = &t
		}
	}
	return filter
}
