package controllers

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/fsdevblog/linktrack/internal/controllers/middlewares"
	"github.com/fsdevblog/linktrack/internal/models"
	"github.com/fsdevblog/linktrack/internal/repositories"
	"github.com/fsdevblog/linktrack/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// ShortURLStore CRUD коротких ссылок в границах области видимости.
type ShortURLStore interface {
	Create(ctx context.Context, scope repositories.Scope, params services.CreateShortURLParams) (*models.ShortURL, error)
	GetByID(ctx context.Context, scope repositories.Scope, id string) (*models.ShortURL, error)
	List(ctx context.Context, scope repositories.Scope, page, pageSize int) ([]models.ShortURL, int64, error)
	Update(ctx context.Context, scope repositories.Scope, id string, params services.UpdateShortURLParams) (*models.ShortURL, error)
	Delete(ctx context.Context, scope repositories.Scope, id string) error
}

// hostnameRegex в соответствии с `RFC 1123` за исключением - исключает корневые доменные имена (без зоны).
var hostnameRegex = regexp.MustCompile(`^([a-zA-Z0-9](-?[a-zA-Z0-9])*\.)+([a-zA-Z0-9](-?[a-zA-Z0-9])*)$`)

// slugRegex допустимые слаги: латиница, цифры, дефис и подчеркивание.
var slugRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type ShortURLController struct {
	urls ShortURLStore
}

func NewShortURLController(urls ShortURLStore) *ShortURLController {
	return &ShortURLController{urls: urls}
}

type createShortURLRequest struct {
	Slug        string     `json:"slug"`
	OriginalURL string     `json:"originalUrl" binding:"required"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	IsActive    *bool      `json:"isActive"`
	ExpiresAt   *time.Time `json:"expiresAt"`
	Password    *string    `json:"password"`
	MaxClicks   *int       `json:"maxClicks"`
	UTMSource   *string    `json:"utmSource"`
	UTMMedium   *string    `json:"utmMedium"`
	UTMCampaign *string    `json:"utmCampaign"`
	UTMTerm     *string    `json:"utmTerm"`
	UTMContent  *string    `json:"utmContent"`
	Metadata    *string    `json:"metadata"`
}

type updateShortURLRequest struct {
	OriginalURL *string    `json:"originalUrl"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	IsActive    *bool      `json:"isActive"`
	ExpiresAt   *time.Time `json:"expiresAt"`
	Password    *string    `json:"password"`
	MaxClicks   *int       `json:"maxClicks"`
	UTMSource   *string    `json:"utmSource"`
	UTMMedium   *string    `json:"utmMedium"`
	UTMCampaign *string    `json:"utmCampaign"`
	UTMTerm     *string    `json:"utmTerm"`
	UTMContent  *string    `json:"utmContent"`
	Metadata    *string    `json:"metadata"`
}

// Create обрабатывает POST /api/urls. Пустой слаг генерируется автоматически,
// занятый слаг дает 409.
func (c *ShortURLController) Create(ctx *gin.Context) {
	var req createShortURLRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		jsonError(ctx, http.StatusBadRequest, ErrBadRequest)
		return
	}
	if _, err := validateURL(req.OriginalURL); err != nil {
		ctx.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if req.Slug != "" && (len(req.Slug) > models.SlugMaxLength || !slugRegex.MatchString(req.Slug)) {
		ctx.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid slug"})
		return
	}

	sURL, err := c.urls.Create(ctx.Request.Context(), middlewares.ScopeFrom(ctx), services.CreateShortURLParams{
		Slug:        req.Slug,
		OriginalURL: req.OriginalURL,
		Title:       req.Title,
		Description: req.Description,
		IsActive:    req.IsActive,
		ExpiresAt:   req.ExpiresAt,
		Password:    req.Password,
		MaxClicks:   req.MaxClicks,
		UTMSource:   req.UTMSource,
		UTMMedium:   req.UTMMedium,
		UTMCampaign: req.UTMCampaign,
		UTMTerm:     req.UTMTerm,
		UTMContent:  req.UTMContent,
		Metadata:    req.Metadata,
	})
	if err != nil {
		if errors.Is(err, services.ErrDuplicateKey) {
			ctx.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "slug already taken"})
			return
		}
		_ = ctx.Error(err)
		jsonError(ctx, http.StatusInternalServerError, ErrInternal)
		return
	}
	ctx.JSON(http.StatusCreated, sURL)
}

// Get обрабатывает GET /api/urls/:id.
func (c *ShortURLController) Get(ctx *gin.Context) {
	sURL, err := c.urls.GetByID(ctx.Request.Context(), middlewares.ScopeFrom(ctx), ctx.Param("id"))
	if err != nil {
		c.renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, sURL)
}

// List обрабатывает GET /api/urls, от новых к старым.
func (c *ShortURLController) List(ctx *gin.Context) {
	page := queryInt(ctx, "page", 1, 1, 1<<30)
	pageSize := queryInt(ctx, "pageSize", defaultPageSize, 1, maxPageSize)

	items, total, err := c.urls.List(ctx.Request.Context(), middlewares.ScopeFrom(ctx), page, pageSize)
	if err != nil {
		_ = ctx.Error(err)
		jsonError(ctx, http.StatusInternalServerError, ErrInternal)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"items":    items,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// Update обрабатывает PATCH /api/urls/:id. Слаг и счетчики не обновляются.
func (c *ShortURLController) Update(ctx *gin.Context) {
	var req updateShortURLRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		jsonError(ctx, http.StatusBadRequest, ErrBadRequest)
		return
	}
	if req.OriginalURL != nil {
		if _, err := validateURL(*req.OriginalURL); err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
	}

	sURL, err := c.urls.Update(ctx.Request.Context(), middlewares.ScopeFrom(ctx), ctx.Param("id"), services.UpdateShortURLParams{
		OriginalURL: req.OriginalURL,
		Title:       req.Title,
		Description: req.Description,
		IsActive:    req.IsActive,
		ExpiresAt:   req.ExpiresAt,
		Password:    req.Password,
		MaxClicks:   req.MaxClicks,
		UTMSource:   req.UTMSource,
		UTMMedium:   req.UTMMedium,
		UTMCampaign: req.UTMCampaign,
		UTMTerm:     req.UTMTerm,
		UTMContent:  req.UTMContent,
		Metadata:    req.Metadata,
	})
	if err != nil {
		c.renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, sURL)
}

// Delete обрабатывает DELETE /api/urls/:id. Клики удаляются вместе со ссылкой.
func (c *ShortURLController) Delete(ctx *gin.Context) {
	if err := c.urls.Delete(ctx.Request.Context(), middlewares.ScopeFrom(ctx), ctx.Param("id")); err != nil {
		c.renderError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (c *ShortURLController) renderError(ctx *gin.Context, err error) {
	if errors.Is(err, services.ErrRecordNotFound) {
		jsonError(ctx, http.StatusNotFound, ErrRecordNotFound)
		return
	}
	_ = ctx.Error(err)
	jsonError(ctx, http.StatusInternalServerError, ErrInternal)
}

// validateURL проверяет, является ли строка корректным URL.
func validateURL(rawURL string) (*url.URL, error) {
	parsedURL, err := url.ParseRequestURI(rawURL)

	if err != nil {
		return nil, errors.New("invalid URL format")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, errors.New("URL must have http or https scheme")
	}

	if parsedURL.Host == "" {
		return nil, errors.New("URL must have a host")
	}

	if parsedURL.Hostname() != "localhost" && !hostnameRegex.MatchString(parsedURL.Hostname()) {
		return nil, errors.New("invalid hostname")
	}

	return parsedURL, nil
}
