package sql

import (
	"context"
	"time"

	"github.com/fsdevblog/linktrack/internal/models"
	"github.com/fsdevblog/linktrack/internal/repositories"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ClickRepo struct {
	db     *gorm.DB
	logger *logrus.Entry
}

func NewClickRepo(db *gorm.DB, logger *logrus.Logger) *ClickRepo {
	return &ClickRepo{
		db:     db,
		logger: logger.WithField("module", "repository/sql/click"),
	}
}

// CreateWithCounter атомарно пишет клик и инкрементирует счетчик ссылки.
// Либо видны оба эффекта, либо ни одного. Инкремент выражением
// click_count + 1 коммутативен, поэтому read-committed достаточно и
// дополнительных блокировок не нужно.
func (r *ClickRepo) CreateWithCounter(ctx context.Context, click *models.Click) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if createErr := tx.Create(click).Error; createErr != nil {
			return createErr
		}
		res := tx.Model(&models.ShortURL{}).
			Where("id = ?", click.ShortURLID).
			Updates(map[string]any{
				"click_count":     gorm.Expr("click_count + ?", 1),
				"last_clicked_at": click.ClickedAt,
			})
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
		r.logger.WithError(err).Errorf("failed to record click for short url %s", click.ShortURLID)
		return repositories.ErrUnknown
	}
	return nil
}

// DailyCounts клики по календарным дням начиная с since. Дни без кликов в
// выборке отсутствуют, плотный ряд достраивает сервисный слой.
func (r *ClickRepo) DailyCounts(ctx context.Context, scope repositories.Scope, urlID *string, since time.Time) ([]repositories.DayCount, error) {
	var rows []repositories.DayCount
	err := r.scopeClicks(ctx, scope, urlID).
		Select("date(clicks.clicked_at) AS day, COUNT(*) AS clicks").
		Where("clicks.clicked_at >= ?", since).
		Group("date(clicks.clicked_at)").
		Order("day").
		Scan(&rows).Error
	if err != nil {
		r.logger.WithError(err).Error("failed to query daily counts")
		return nil, repositories.ErrUnknown
	}
	return rows, nil
}

func (r *ClickRepo) TopCountries(ctx context.Context, scope repositories.Scope, urlID *string, limit int) ([]repositories.DimCount, error) {
	return r.topDimension(ctx, scope, urlID, "clicks.country_name", limit)
}

func (r *ClickRepo) TopDevices(ctx context.Context, scope repositories.Scope, urlID *string, limit int) ([]repositories.DimCount, error) {
	return r.topDimension(ctx, scope, urlID, "clicks.device_type", limit)
}

func (r *ClickRepo) TopBrowsers(ctx context.Context, scope repositories.Scope, urlID *string, limit int) ([]repositories.DimCount, error) {
	return r.topDimension(ctx, scope, urlID, "clicks.browser_name", limit)
}

func (r *ClickRepo) TopReferrers(ctx context.Context, scope repositories.Scope, urlID *string, limit int) ([]repositories.RefererCount, error) {
	var rows []repositories.RefererCount
	err := r.scopeClicks(ctx, scope, urlID).
		Select("clicks.referer_domain AS domain, clicks.referer_type AS type, COUNT(*) AS clicks").
		Group("clicks.referer_domain").
		Group("clicks.referer_type").
		Order("COUNT(*) DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		r.logger.WithError(err).Error("failed to query top referrers")
		return nil, repositories.ErrUnknown
	}
	return rows, nil
}

// topDimension группирует клики по одной колонке. Колонка приходит только из
// фиксированного набора вызовов выше, не из пользовательского ввода.
func (r *ClickRepo) topDimension(ctx context.Context, scope repositories.Scope, urlID *string, column string, limit int) ([]repositories.DimCount, error) {
	var rows []repositories.DimCount
	err := r.scopeClicks(ctx, scope, urlID).
		Select(column + " AS value, COUNT(*) AS clicks").
		Group(column).
		Order("COUNT(*) DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		r.logger.WithError(err).Errorf("failed to query top dimension %s", column)
		return nil, repositories.ErrUnknown
	}
	return rows, nil
}

// List постраничный листинг кликов. Total считается отдельным запросом
// независимо от среза страницы.
func (r *ClickRepo) List(ctx context.Context, scope repositories.Scope, filter repositories.ClickFilter, page, pageSize int) ([]models.Click, int64, error) {
	// Запросы строим дважды: переиспользование одного билдера после Count
	// тащит за собой его SELECT-клаузу.
	var total int64
	if err := applyClickFilter(r.scopeClicks(ctx, scope, filter.ShortURLID), filter).
		Count(&total).Error; err != nil {
		r.logger.WithError(err).Error("failed to count clicks")
		return nil, 0, repositories.ErrUnknown
	}

	var clicks []models.Click
	err := applyClickFilter(r.scopeClicks(ctx, scope, filter.ShortURLID), filter).
		Select("clicks.*").
		Order("clicks.clicked_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&clicks).Error
	if err != nil {
		r.logger.WithError(err).Error("failed to list clicks")
		return nil, 0, repositories.ErrUnknown
	}
	return clicks, total, nil
}

// ListForExport отдает клики под экспорт, не больше limit строк.
func (r *ClickRepo) ListForExport(ctx context.Context, scope repositories.Scope, filter repositories.ClickFilter, limit int) ([]models.Click, error) {
	var clicks []models.Click
	err := applyClickFilter(r.scopeClicks(ctx, scope, filter.ShortURLID), filter).
		Select("clicks.*").
		Order("clicks.clicked_at DESC").
		Limit(limit).
		Find(&clicks).Error
	if err != nil {
		r.logger.WithError(err).Error("failed to list clicks for export")
		return nil, repositories.ErrUnknown
	}
	return clicks, nil
}

// ListByShortURL вся история кликов одной ссылки начиная с since,
// для одностадийного роллапа.
func (r *ClickRepo) ListByShortURL(ctx context.Context, shortURLID string, since time.Time) ([]models.Click, error) {
	var clicks []models.Click
	err := r.db.WithContext(ctx).
		Where("short_url_id = ? AND clicked_at >= ?", shortURLID, since).
		Order("clicked_at DESC").
		Find(&clicks).Error
	if err != nil {
		r.logger.WithError(err).Errorf("failed to list clicks for short url %s", shortURLID)
		return nil, repositories.ErrUnknown
	}
	return clicks, nil
}

// scopeClicks накладывает границу видимости и, если задан, фильтр по ссылке.
func (r *ClickRepo) scopeClicks(ctx context.Context, scope repositories.Scope, urlID *string) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&models.Click{}).
		Joins("JOIN short_urls ON short_urls.id = clicks.short_url_id")

	if scope.OrganizationID != nil && *scope.OrganizationID != "" {
		tx = tx.Where("short_urls.organization_id = ?", *scope.OrganizationID)
	} else if scope.UserID != nil && *scope.UserID != "" {
		tx = tx.Where("short_urls.user_id = ?", *scope.UserID)
	} else {
		tx = tx.Where("1 = 0")
	}

	if urlID != nil && *urlID != "" {
		tx = tx.Where("clicks.short_url_id = ?", *urlID)
	}
	return tx
}

func applyClickFilter(tx *gorm.DB, filter repositories.ClickFilter) *gorm.DB {
	if filter.From != nil {
		tx = tx.Where("clicks.clicked_at >= ?", *filter.From)
	}
	if filter.To != nil {
		tx = tx.Where("clicks.clicked_at <= ?", *filter.To)
	}
	if filter.Country != nil && *filter.Country != "" {
		tx = tx.Where("clicks.country_name = ?", *filter.Country)
	}
	if filter.Device != nil && *filter.Device != "" {
		tx = tx.Where("clicks.device_type = ?", *filter.Device)
	}
	return tx
}
