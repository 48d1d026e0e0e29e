package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fsdevblog/linktrack/internal/fingerprint"
	"github.com/fsdevblog/linktrack/internal/geo"
	"github.com/fsdevblog/linktrack/internal/models"
	"github.com/fsdevblog/linktrack/internal/redirectrules"
	"github.com/fsdevblog/linktrack/internal/repositories"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// SlugResolver поиск ссылки по слагу.
type SlugResolver interface {
	GetBySlug(ctx context.Context, slug string) (*models.ShortURL, error)
}

// ClickRecorder атомарная запись клика вместе с инкрементом счетчика.
type ClickRecorder interface {
	CreateWithCounter(ctx context.Context, click *models.Click) error
}

// CountryResolver определение страны по IP. nil означает неопределенную страну.
type CountryResolver interface {
	Resolve(ctx context.Context, ip string) *geo.Country
}

// RedirectResult итог разрешения редиректа.
type RedirectResult struct {
	Target   string
	ShortURL *models.ShortURL
	Click    *models.Click
}

// RedirectService разрешает переход по короткой ссылке и фиксирует клик.
// Если клик записать не удалось, редирект не выполняется: потерянное событие
// аналитики считается ошибкой, а не допустимой деградацией.
type RedirectService struct {
	urls    SlugResolver
	clicks  ClickRecorder
	geo     CountryResolver
	logger  *logrus.Entry
	nowFunc func() time.Time
}

func NewRedirectService(
	urls SlugResolver,
	clicks ClickRecorder,
	countryResolver CountryResolver,
	logger *logrus.Logger,
) *RedirectService {
	return &RedirectService{
		urls:    urls,
		clicks:  clicks,
		geo:     countryResolver,
		logger:  logger.WithField("module", "redirect_service"),
		nowFunc: time.Now,
	}
}

// Resolve обрабатывает переход: ищет ссылку, проверяет ее доступность,
// вычисляет целевой URL по стране и атомарно записывает клик. Проверка
// жизненного цикла идет до записи: по недоступной ссылке клик не фиксируется.
func (s *RedirectService) Resolve(ctx context.Context, slug string, fp fingerprint.Fingerprint) (*RedirectResult, error) {
	sURL, err := s.urls.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errors.Wrapf(ErrRecordNotFound, "slug %s not found", slug)
		}
		return nil, ErrUnknown
	}

	switch state := ValidateLifecycle(sURL, s.nowFunc()); state {
	case StateActive:
	case StateNotFound:
		return nil, errors.Wrapf(ErrRecordNotFound, "slug %s not found", slug)
	default:
		return nil, &BlockedError{State: state}
	}

	country := s.geo.Resolve(ctx, fp.IP)
	countryCode := ""
	if country != nil {
		countryCode = country.Code
	}

	metadata := ""
	if sURL.Metadata != nil {
		metadata = *sURL.Metadata
	}
	resolution := redirectrules.Resolve(sURL.OriginalURL, metadata, countryCode)

	click := s.buildClick(sURL, fp, country)
	if recErr := s.clicks.CreateWithCounter(ctx, click); recErr != nil {
		s.logger.WithError(recErr).WithField("slug", slug).Error("record click")
		return nil, ErrUnknown
	}

	return &RedirectResult{Target: resolution.Target, ShortURL: sURL, Click: click}, nil
}

// buildClick собирает запись клика. Сентинельные значения фингерпринта
// нормализуются в NULL, в базу они не попадают.
func (s *RedirectService) buildClick(
	sURL *models.ShortURL,
	fp fingerprint.Fingerprint,
	country *geo.Country,
) *models.Click {
	ref := fingerprint.ClassifyReferer(fp.Referer)

	click := models.Click{
		ID:         uuid.NewString(),
		ShortURLID: sURL.ID,

		IPAddress: nullable(fp.IP),
		UserAgent: nullable(fp.UserAgent),
		Referer:   nullable(fp.Referer),
		Host:      nullable(fp.Host),

		DeviceType:   nullable(fp.Device.Type),
		DeviceVendor: nullable(fp.Device.Vendor),
		DeviceModel:  nullable(fp.Device.Model),

		BrowserName:    nullable(fp.Browser.Name),
		BrowserVersion: nullable(fp.Browser.Version),

		OSName:    nullable(fp.OS.Name),
		OSVersion: nullable(fp.OS.Version),

		EngineName:    nullable(fp.Engine.Name),
		EngineVersion: nullable(fp.Engine.Version),

		CPUArchitecture: nullable(fp.CPUArchitecture),

		CFCountry: nullable(fp.CFCountry),
		CFRay:     nullable(fp.CFRay),

		AcceptLanguage: nullable(fp.AcceptLanguage),
		AcceptEncoding: nullable(fp.AcceptEncoding),
		DNT:            nullable(fp.DNT),

		IsBot: fp.IsBot,

		RefererDomain: nullable(ref.Domain),
		RefererType:   refererType(ref.Type),
		RefererSource: nullable(ref.Source),

		ClickedAt: s.nowFunc().UTC(),
	}

	if country != nil {
		click.CountryCode = &country.Code
		click.CountryName = &country.Name
	}

	if len(fp.QueryParams) > 0 {
		if raw, mErr := json.Marshal(fp.QueryParams); mErr == nil {
			encoded := string(raw)
			click.SearchParams = &encoded
		}
	}

	// UTM-метки: сначала query-параметры запроса, затем дефолты ссылки.
	click.UTMSource = utmOr(fp.QueryParams, "utm_source", sURL.UTMSource)
	click.UTMMedium = utmOr(fp.QueryParams, "utm_medium", sURL.UTMMedium)
	click.UTMCampaign = utmOr(fp.QueryParams, "utm_campaign", sURL.UTMCampaign)
	click.UTMTerm = utmOr(fp.QueryParams, "utm_term", sURL.UTMTerm)
	click.UTMContent = utmOr(fp.QueryParams, "utm_content", sURL.UTMContent)

	return &click
}

func utmOr(params map[string]string, key string, fallback *string) *string {
	if v, ok := params[key]; ok && v != "" {
		return &v
	}
	return fallback
}

// refererType хранит тип реферера. "direct" здесь полноценное значение,
// а "unknown" сентинель нераспознанного реферера и в базу не попадает.
func refererType(t string) *string {
	if t == "" || t == fingerprint.Unknown {
		return nil
	}
	return &t
}

// nullable превращает пустые и сентинельные строки в NULL.
func nullable(s string) *string {
	switch s {
	case "", fingerprint.Unknown, fingerprint.NotSet, fingerprint.Direct:
		return nil
	}
	return &s
}
