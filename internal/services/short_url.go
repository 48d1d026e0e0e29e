package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/fsdevblog/linktrack/internal/models"
	"github.com/fsdevblog/linktrack/internal/repositories"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// generatedSlugLength длина автогенерируемого слага.
const generatedSlugLength = 8

// slugRetries число повторов генерации при коллизии слага.
const slugRetries = 3

// ShortURLRepository хранилище правил сокращения.
type ShortURLRepository interface {
	Create(ctx context.Context, sURL *models.ShortURL) error
	GetBySlug(ctx context.Context, slug string) (*models.ShortURL, error)
	GetByID(ctx context.Context, id string) (*models.ShortURL, error)
	Update(ctx context.Context, sURL *models.ShortURL) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, scope repositories.Scope, page, pageSize int) ([]models.ShortURL, int64, error)
}

// CreateShortURLParams параметры создания короткой ссылки. Пустой Slug
// означает автогенерацию.
type CreateShortURLParams struct {
	Slug        string
	OriginalURL string
	Title       *string
	Description *string
	IsActive    *bool
	ExpiresAt   *time.Time
	Password    *string
	MaxClicks   *int
	UTMSource   *string
	UTMMedium   *string
	UTMCampaign *string
	UTMTerm     *string
	UTMContent  *string
	Metadata    *string
}

// UpdateShortURLParams частичное обновление. nil-поле остается нетронутым.
// Слаг после создания не меняется.
type UpdateShortURLParams struct {
	OriginalURL *string
	Title       *string
	Description *string
	IsActive    *bool
	ExpiresAt   *time.Time
	Password    *string
	MaxClicks   *int
	UTMSource   *string
	UTMMedium   *string
	UTMCampaign *string
	UTMTerm     *string
	UTMContent  *string
	Metadata    *string
}

// ShortURLService сервис работает с базой данных в контексте таблицы `short_urls`.
type ShortURLService struct {
	repo ShortURLRepository
}

func NewShortURLService(repo ShortURLRepository) *ShortURLService {
	return &ShortURLService{repo: repo}
}

func (s *ShortURLService) Create(
	ctx context.Context,
	scope repositories.Scope,
	params CreateShortURLParams,
) (*models.ShortURL, error) {
	sURL := models.ShortURL{
		ID:          uuid.NewString(),
		Slug:        params.Slug,
		OriginalURL: params.OriginalURL,
		Title:       params.Title,
		Description: params.Description,
		UserID:      scope.UserID,
		IsActive:    true,
		ExpiresAt:   params.ExpiresAt,
		Password:    params.Password,
		MaxClicks:   params.MaxClicks,
		UTMSource:   params.UTMSource,
		UTMMedium:   params.UTMMedium,
		UTMCampaign: params.UTMCampaign,
		UTMTerm:     params.UTMTerm,
		UTMContent:  params.UTMContent,
		Metadata:    params.Metadata,
	}
	// Организация имеет приоритет над пользователем как владелец.
	if scope.OrganizationID != nil {
		sURL.OrganizationID = scope.OrganizationID
		sURL.UserID = nil
	}
	if params.IsActive != nil {
		sURL.IsActive = *params.IsActive
	}

	if sURL.Slug != "" {
		if err := s.repo.Create(ctx, &sURL); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return nil, errors.Wrapf(ErrDuplicateKey, "slug %s already taken", sURL.Slug)
			}
			return nil, ErrUnknown
		}
		return &sURL, nil
	}

	// Автогенерация: при коллизии пробуем новый слаг еще несколько раз.
	for attempt := 0; attempt < slugRetries; attempt++ {
		slug, slugErr := randomSlug(generatedSlugLength)
		if slugErr != nil {
			return nil, ErrUnknown
		}
		sURL.Slug = slug
		err := s.repo.Create(ctx, &sURL)
		if err == nil {
			return &sURL, nil
		}
		if !errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrUnknown
		}
	}
	return nil, errors.Wrap(ErrDuplicateKey, "could not generate unique slug")
}

func (s *ShortURLService) GetByID(ctx context.Context, scope repositories.Scope, id string) (*models.ShortURL, error) {
	sURL, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errors.Wrapf(ErrRecordNotFound, "id %s not found", id)
		}
		return nil, ErrUnknown
	}
	if !scopeOwns(scope, sURL) {
		return nil, errors.Wrapf(ErrRecordNotFound, "id %s not found", id)
	}
	return sURL, nil
}

func (s *ShortURLService) List(
	ctx context.Context,
	scope repositories.Scope,
	page, pageSize int,
) ([]models.ShortURL, int64, error) {
	items, total, err := s.repo.List(ctx, scope, page, pageSize)
	if err != nil {
		return nil, 0, ErrUnknown
	}
	return items, total, nil
}

func (s *ShortURLService) Update(
	ctx context.Context,
	scope repositories.Scope,
	id string,
	params UpdateShortURLParams,
) (*models.ShortURL, error) {
	sURL, err := s.GetByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	applyUpdate(sURL, params)
	if updErr := s.repo.Update(ctx, sURL); updErr != nil {
		if errors.Is(updErr, repositories.ErrNotFound) {
			return nil, errors.Wrapf(ErrRecordNotFound, "id %s not found", id)
		}
		return nil, ErrUnknown
	}
	return sURL, nil
}

func (s *ShortURLService) Delete(ctx context.Context, scope repositories.Scope, id string) error {
	if _, err := s.GetByID(ctx, scope, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return errors.Wrapf(ErrRecordNotFound, "id %s not found", id)
		}
		return ErrUnknown
	}
	return nil
}

func applyUpdate(sURL *models.ShortURL, params UpdateShortURLParams) {
	if params.OriginalURL != nil {
		sURL.OriginalURL = *params.OriginalURL
	}
	if params.Title != nil {
		sURL.Title = params.Title
	}
	if params.Description != nil {
		sURL.Description = params.Description
	}
	if params.IsActive != nil {
		sURL.IsActive = *params.IsActive
	}
	if params.ExpiresAt != nil {
		sURL.ExpiresAt = params.ExpiresAt
	}
	if params.Password != nil {
		sURL.Password = params.Password
	}
	if params.MaxClicks != nil {
		sURL.MaxClicks = params.MaxClicks
	}
	if params.UTMSource != nil {
		sURL.UTMSource = params.UTMSource
	}
	if params.UTMMedium != nil {
		sURL.UTMMedium = params.UTMMedium
	}
	if params.UTMCampaign != nil {
		sURL.UTMCampaign = params.UTMCampaign
	}
	if params.UTMTerm != nil {
		sURL.UTMTerm = params.UTMTerm
	}
	if params.UTMContent != nil {
		sURL.UTMContent = params.UTMContent
	}
	if params.Metadata != nil {
		sURL.Metadata = params.Metadata
	}
}

// scopeOwns проверяет, что ссылка видна в заданной области видимости.
func scopeOwns(scope repositories.Scope, sURL *models.ShortURL) bool {
	if scope.OrganizationID != nil {
		return sURL.OrganizationID != nil && *sURL.OrganizationID == *scope.OrganizationID
	}
	if scope.UserID != nil {
		return sURL.UserID != nil && *sURL.UserID == *scope.UserID
	}
	return false
}

func randomSlug(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "read random bytes")
	}
	return base64.RawURLEncoding.EncodeToString(buf)[:length], nil
}
