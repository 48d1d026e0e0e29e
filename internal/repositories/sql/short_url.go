package sql

import (
	"context"

	"github.com/fsdevblog/linktrack/internal/models"
	"github.com/fsdevblog/linktrack/internal/repositories"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ShortURLRepo struct {
	db     *gorm.DB
	logger *logrus.Entry
}

func NewShortURLRepo(db *gorm.DB, logger *logrus.Logger) *ShortURLRepo {
	return &ShortURLRepo{
		db:     db,
		logger: logger.WithField("module", "repository/sql/short_url"),
	}
}

func (r *ShortURLRepo) Create(ctx context.Context, sURL *models.ShortURL) error {
	if err := r.db.WithContext(ctx).Create(sURL).Error; err != nil {
		converted := convertErrType(err)
		if !errors.Is(converted, repositories.ErrDuplicateKey) {
			r.logger.WithError(err).Errorf("failed to create short url with slug %s", sURL.Slug)
		}
		return converted
	}
	return nil
}

func (r *ShortURLRepo) GetBySlug(ctx context.Context, slug string) (*models.ShortURL, error) {
	var sURL models.ShortURL
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&sURL).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		r.logger.WithError(err).Errorf("failed to get short url by slug %s", slug)
		return nil, repositories.ErrUnknown
	}
	return &sURL, nil
}

func (r *ShortURLRepo) GetByID(ctx context.Context, id string) (*models.ShortURL, error) {
	var sURL models.ShortURL
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&sURL).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		r.logger.WithError(err).Errorf("failed to get short url by id %s", id)
		return nil, repositories.ErrUnknown
	}
	return &sURL, nil
}

// Update сохраняет изменяемые поля правила. Слаг и счетчики не трогает:
// слаг неизменяем, счетчики пишет только рекордер кликов.
func (r *ShortURLRepo) Update(ctx context.Context, sURL *models.ShortURL) error {
	res := r.db.WithContext(ctx).Model(&models.ShortURL{}).
		Where("id = ?", sURL.ID).
		Select("original_url", "title", "description", "is_active", "expires_at",
			"password", "max_clicks", "metadata",
			"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content").
		Updates(sURL)
	if res.Error != nil {
		r.logger.WithError(res.Error).Errorf("failed to update short url %s", sURL.ID)
		return convertErrType(res.Error)
	}
	if res.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// Delete удаляет правило вместе с его кликами одной транзакцией.
func (r *ShortURLRepo) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if delErr := tx.Where("short_url_id = ?", id).Delete(&models.Click{}).Error; delErr != nil {
			return delErr
		}
		res := tx.Where("id = ?", id).Delete(&models.ShortURL{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repositories.ErrNotFound
		}
		r.logger.WithError(err).Errorf("failed to delete short url %s", id)
		return repositories.ErrUnknown
	}
	return nil
}

func (r *ShortURLRepo) List(ctx context.Context, scope repositories.Scope, page, pageSize int) ([]models.ShortURL, int64, error) {
	query := scopeShortURLs(r.db.WithContext(ctx).Model(&models.ShortURL{}), scope)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.logger.WithError(err).Error("failed to count short urls")
		return nil, 0, repositories.ErrUnknown
	}

	var urls []models.ShortURL
	err := query.Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&urls).Error
	if err != nil {
		r.logger.WithError(err).Error("failed to list short urls")
		return nil, 0, repositories.ErrUnknown
	}
	return urls, total, nil
}

func (r *ShortURLRepo) CountByScope(ctx context.Context, scope repositories.Scope) (int64, error) {
	var total int64
	err := scopeShortURLs(r.db.WithContext(ctx).Model(&models.ShortURL{}), scope).Count(&total).Error
	if err != nil {
		r.logger.WithError(err).Error("failed to count short urls")
		return 0, repositories.ErrUnknown
	}
	return total, nil
}

// SumClickCounts суммирует кэшированные счетчики кликов. Сознательный
// компромисс консистентности: показываем то, что ведет рекордер, а не
// живой COUNT по таблице кликов.
func (r *ShortURLRepo) SumClickCounts(ctx context.Context, scope repositories.Scope) (int64, error) {
	var total int64
	err := scopeShortURLs(r.db.WithContext(ctx).Model(&models.ShortURL{}), scope).
		Select("COALESCE(SUM(click_count), 0)").
		Scan(&total).Error
	if err != nil {
		r.logger.WithError(err).Error("failed to sum click counts")
		return 0, repositories.ErrUnknown
	}
	return total, nil
}

func (r *ShortURLRepo) TopByClickCount(ctx context.Context, scope repositories.Scope, limit int) ([]models.ShortURL, error) {
	var urls []models.ShortURL
	err := scopeShortURLs(r.db.WithContext(ctx).Model(&models.ShortURL{}), scope).
		Order("click_count DESC").
		Limit(limit).
		Find(&urls).Error
	if err != nil {
		r.logger.WithError(err).Error("failed to get top short urls")
		return nil, repositories.ErrUnknown
	}
	return urls, nil
}

func scopeShortURLs(tx *gorm.DB, scope repositories.Scope) *gorm.DB {
	if scope.OrganizationID != nil && *scope.OrganizationID != "" {
		return tx.Where("organization_id = ?", *scope.OrganizationID)
	}
	if scope.UserID != nil && *scope.UserID != "" {
		return tx.Where("user_id = ?", *scope.UserID)
	}
	// Пустая граница видимости не должна отдавать чужие данные.
	return tx.Where("1 = 0")
}
