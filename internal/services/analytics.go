package services

import (
	"context"
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/fsdevblog/linktrack/internal/models"
	"github.com/fsdevblog/linktrack/internal/repositories"

	"github.com/pkg/errors"
)

// unknownBucket метка для кликов без значения измерения.
const unknownBucket = "(unknown)"

// ExportLimit максимум строк в CSV-экспорте.
const ExportLimit = 10000

// rollupWindow окно истории для сводки по одной ссылке.
const rollupWindow = 30 * 24 * time.Hour

// recentClicksLimit число последних кликов в сводке по ссылке.
const recentClicksLimit = 50

// ShortURLStatsRepository агрегаты по таблице ссылок.
type ShortURLStatsRepository interface {
	GetByID(ctx context.Context, id string) (*models.ShortURL, error)
	CountByScope(ctx context.Context, scope repositories.Scope) (int64, error)
	SumClickCounts(ctx context.Context, scope repositories.Scope) (int64, error)
	TopByClickCount(ctx context.Context, scope repositories.Scope, limit int) ([]models.ShortURL, error)
}

// ClickStatsRepository агрегаты и выборки по таблице кликов.
type ClickStatsRepository interface {
	DailyCounts(ctx context.Context, scope repositories.Scope, urlID *string, since time.Time) ([]repositories.DayCount, error)
	TopCountries(ctx context.Context, scope repositories.Scope, urlID *string, limit int) ([]repositories.DimCount, error)
	TopDevices(ctx context.Context, scope repositories.Scope, urlID *string, limit int) ([]repositories.DimCount, error)
	TopBrowsers(ctx context.Context, scope repositories.Scope, urlID *string, limit int) ([]repositories.DimCount, error)
	TopReferrers(ctx context.Context, scope repositories.Scope, urlID *string, limit int) ([]repositories.RefererCount, error)
	List(ctx context.Context, scope repositories.Scope, filter repositories.ClickFilter, page, pageSize int) ([]models.Click, int64, error)
	ListForExport(ctx context.Context, scope repositories.Scope, filter repositories.ClickFilter, limit int) ([]models.Click, error)
	ListByShortURL(ctx context.Context, shortURLID string, since time.Time) ([]models.Click, error)
}

// MemberCounter внешний коллаборатор, знающий число участников области
// видимости. Сервис аналитики сам таких данных не хранит.
type MemberCounter interface {
	CountMembers(ctx context.Context, scope repositories.Scope) (int64, error)
}

// singleMember заглушка по умолчанию: область видимости из одного участника.
type singleMember struct{}

func (singleMember) CountMembers(context.Context, repositories.Scope) (int64, error) {
	return 1, nil
}

// Overview сводные показатели области видимости.
type Overview struct {
	TotalURLs    int64 `json:"totalUrls"`
	TotalClicks  int64 `json:"totalClicks"`
	TotalMembers int64 `json:"totalMembers"`
}

// DailyPoint клики за один календарный день.
type DailyPoint struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}

// NamedCount счетчик по одному значению измерения.
type NamedCount struct {
	Name   string `json:"name"`
	Clicks int64  `json:"clicks"`
}

// RefererStat счетчик по домену и типу реферера.
type RefererStat struct {
	Domain string `json:"domain"`
	Type   string `json:"type"`
	Clicks int64  `json:"clicks"`
}

// ClickPage страница листинга кликов.
type ClickPage struct {
	Items    []models.Click `json:"items"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

// URLRollup сводка по одной ссылке за окно истории.
type URLRollup struct {
	ShortURL         *models.ShortURL `json:"shortUrl"`
	TotalClicks      int64            `json:"totalClicks"`
	UniqueVisitors   int64            `json:"uniqueVisitors"`
	BotClicks        int64            `json:"botClicks"`
	Daily            []DailyPoint     `json:"daily"`
	Countries        []NamedCount     `json:"countries"`
	Devices          []NamedCount     `json:"devices"`
	Browsers         []NamedCount     `json:"browsers"`
	OperatingSystems []NamedCount     `json:"operatingSystems"`
	Referrers        []NamedCount     `json:"referrers"`
	RefererTypes     []NamedCount     `json:"refererTypes"`
	Recent           []models.Click   `json:"recent"`
}

// AnalyticsService отчеты по кликам. Все выборки ограничены областью
// видимости вызывающего.
type AnalyticsService struct {
	urls    ShortURLStatsRepository
	clicks  ClickStatsRepository
	members MemberCounter
	nowFunc func() time.Time
}

func NewAnalyticsService(urls ShortURLStatsRepository, clicks ClickStatsRepository, members MemberCounter) *AnalyticsService {
	if members == nil {
		members = singleMember{}
	}
	return &AnalyticsService{
		urls:    urls,
		clicks:  clicks,
		members: members,
		nowFunc: time.Now,
	}
}

// Overview считает итоги по кэшированным счетчикам ссылок, не сканируя
// таблицу кликов.
func (s *AnalyticsService) Overview(ctx context.Context, scope repositories.Scope) (*Overview, error) {
	totalURLs, err := s.urls.CountByScope(ctx, scope)
	if err != nil {
		return nil, ErrUnknown
	}
	totalClicks, err := s.urls.SumClickCounts(ctx, scope)
	if err != nil {
		return nil, ErrUnknown
	}
	totalMembers, err := s.members.CountMembers(ctx, scope)
	if err != nil {
		return nil, ErrUnknown
	}
	return &Overview{
		TotalURLs:    totalURLs,
		TotalClicks:  totalClicks,
		TotalMembers: totalMembers,
	}, nil
}

// DailyClicks плотный ряд по дням: последние days дней включая сегодня (UTC),
// дни без кликов заполняются нулями. Непустой urlID сужает ряд до одной ссылки.
func (s *AnalyticsService) DailyClicks(ctx context.Context, scope repositories.Scope, urlID *string, days int) ([]DailyPoint, error) {
	if days < 1 {
		days = 1
	}
	today := s.nowFunc().UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -(days - 1))

	counts, err := s.clicks.DailyCounts(ctx, scope, urlID, since)
	if err != nil {
		return nil, ErrUnknown
	}
	byDay := make(map[string]int64, len(counts))
	for _, c := range counts {
		byDay[c.Day] = c.Clicks
	}

	series := make([]DailyPoint, 0, days)
	for d := 0; d < days; d++ {
		day := since.AddDate(0, 0, d).Format("2006-01-02")
		series = append(series, DailyPoint{Date: day, Clicks: byDay[day]})
	}
	return series, nil
}

// TopURLs ссылки с наибольшим числом переходов по кэшированному счетчику.
func (s *AnalyticsService) TopURLs(ctx context.Context, scope repositories.Scope, limit int) ([]models.ShortURL, error) {
	items, err := s.urls.TopByClickCount(ctx, scope, limit)
	if err != nil {
		return nil, ErrUnknown
	}
	return items, nil
}

func (s *AnalyticsService) TopCountries(ctx context.Context, scope repositories.Scope, urlID *string, limit int) ([]NamedCount, error) {
	counts, err := s.clicks.TopCountries(ctx, scope, urlID, limit)
	if err != nil {
		return nil, ErrUnknown
	}
	return namedCounts(counts), nil
}

func (s *AnalyticsService) TopDevices(ctx context.Context, scope repositories.Scope, urlID *string, limit int) ([]NamedCount, error) {
	counts, err := s.clicks.TopDevices(ctx, scope, urlID, limit)
	if err != nil {
		return nil, ErrUnknown
	}
	return namedCounts(counts), nil
}

func (s *AnalyticsService) TopBrowsers(ctx context.Context, scope repositories.Scope, urlID *string, limit int) ([]NamedCount, error) {
	counts, err := s.clicks.TopBrowsers(ctx, scope, urlID, limit)
	if err != nil {
		return nil, ErrUnknown
	}
	return namedCounts(counts), nil
}

func (s *AnalyticsService) TopReferrers(ctx context.Context, scope repositories.Scope, urlID *string, limit int) ([]RefererStat, error) {
	counts, err := s.clicks.TopReferrers(ctx, scope, urlID, limit)
	if err != nil {
		return nil, ErrUnknown
	}
	stats := make([]RefererStat, 0, len(counts))
	for _, c := range counts {
		stats = append(stats, RefererStat{
			Domain: bucketName(c.Domain),
			Type:   bucketName(c.Type),
			Clicks: c.Clicks,
		})
	}
	return stats, nil
}

// Clicks постраничный листинг кликов, отсортированный от новых к старым.
func (s *AnalyticsService) Clicks(
	ctx context.Context,
	scope repositories.Scope,
	filter repositories.ClickFilter,
	page, pageSize int,
) (*ClickPage, error) {
	if page < 1 {
		page = 1
	}
	items, total, err := s.clicks.List(ctx, scope, filter, page, pageSize)
	if err != nil {
		return nil, ErrUnknown
	}
	return &ClickPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

var exportHeader = []string{
	"id", "short_url_id", "clicked_at", "ip_address",
	"country_code", "country_name", "device_type", "browser_name", "os_name",
	"referer_type", "referer_domain", "is_bot",
	"utm_source", "utm_medium", "utm_campaign",
}

// ExportCSV пишет клики в CSV. Экспорт ограничен сверху ExportLimit строк.
func (s *AnalyticsService) ExportCSV(
	ctx context.Context,
	w io.Writer,
	scope repositories.Scope,
	filter repositories.ClickFilter,
) error {
	clicks, err := s.clicks.ListForExport(ctx, scope, filter, ExportLimit)
	if err != nil {
		return ErrUnknown
	}

	cw := csv.NewWriter(w)
	if hErr := cw.Write(exportHeader); hErr != nil {
		return errors.Wrap(ErrUnknown, "write csv header")
	}
	for i := range clicks {
		c := &clicks[i]
		row := []string{
			c.ID,
			c.ShortURLID,
			c.ClickedAt.UTC().Format(time.RFC3339),
			strOr(c.IPAddress),
			strOr(c.CountryCode),
			strOr(c.CountryName),
			strOr(c.DeviceType),
			strOr(c.BrowserName),
			strOr(c.OSName),
			strOr(c.RefererType),
			strOr(c.RefererDomain),
			strconv.FormatBool(c.IsBot),
			strOr(c.UTMSource),
			strOr(c.UTMMedium),
			strOr(c.UTMCampaign),
		}
		if wErr := cw.Write(row); wErr != nil {
			return errors.Wrap(ErrUnknown, "write csv row")
		}
	}
	cw.Flush()
	if fErr := cw.Error(); fErr != nil {
		return errors.Wrap(ErrUnknown, "flush csv")
	}
	return nil
}

// Rollup сводка по одной ссылке за последние days дней одним проходом по ее
// кликам: итоги, уникальные посетители по IP, ряд по дням, топы и последние
// переходы. При days <= 0 берется окно по умолчанию.
func (s *AnalyticsService) Rollup(ctx context.Context, scope repositories.Scope, urlID string, days int) (*URLRollup, error) {
	if days <= 0 {
		days = int(rollupWindow / (24 * time.Hour))
	}
	sURL, err := s.urls.GetByID(ctx, urlID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errors.Wrapf(ErrRecordNotFound, "id %s not found", urlID)
		}
		return nil, ErrUnknown
	}
	if !scopeOwns(scope, sURL) {
		return nil, errors.Wrapf(ErrRecordNotFound, "id %s not found", urlID)
	}

	today := s.nowFunc().UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -(days - 1))
	clicks, err := s.clicks.ListByShortURL(ctx, urlID, since)
	if err != nil {
		return nil, ErrUnknown
	}

	rollup := URLRollup{ShortURL: sURL, TotalClicks: int64(len(clicks))}

	uniqueIPs := make(map[string]struct{})
	byDay := make(map[string]int64)
	byCountry := make(map[string]int64)
	byDevice := make(map[string]int64)
	byBrowser := make(map[string]int64)
	byOS := make(map[string]int64)
	byReferrer := make(map[string]int64)
	byRefType := make(map[string]int64)

	for i := range clicks {
		c := &clicks[i]
		if c.IsBot {
			rollup.BotClicks++
		}
		if c.IPAddress != nil {
			uniqueIPs[*c.IPAddress] = struct{}{}
		}
		byDay[c.ClickedAt.UTC().Format("2006-01-02")]++
		byCountry[bucketName(c.CountryName)]++
		byDevice[bucketName(c.DeviceType)]++
		byBrowser[bucketName(c.BrowserName)]++
		byOS[bucketName(c.OSName)]++
		byReferrer[bucketName(c.RefererSource)]++
		byRefType[bucketName(c.RefererType)]++
	}
	rollup.UniqueVisitors = int64(len(uniqueIPs))

	rollup.Daily = make([]DailyPoint, 0, days)
	for d := 0; d < days; d++ {
		day := since.AddDate(0, 0, d).Format("2006-01-02")
		rollup.Daily = append(rollup.Daily, DailyPoint{Date: day, Clicks: byDay[day]})
	}

	rollup.Countries = sortedCounts(byCountry)
	rollup.Devices = sortedCounts(byDevice)
	rollup.Browsers = sortedCounts(byBrowser)
	rollup.OperatingSystems = sortedCounts(byOS)
	rollup.Referrers = sortedCounts(byReferrer)
	rollup.RefererTypes = sortedCounts(byRefType)

	if len(clicks) > recentClicksLimit {
		clicks = clicks[:recentClicksLimit]
	}
	rollup.Recent = clicks

	return &rollup, nil
}

func namedCounts(counts []repositories.DimCount) []NamedCount {
	named := make([]NamedCount, 0, len(counts))
	for _, c := range counts {
		named = append(named, NamedCount{Name: bucketName(c.Value), Clicks: c.Clicks})
	}
	return named
}

// sortedCounts разворачивает карту счетчиков в срез, по убыванию кликов.
// При равенстве порядок стабилизируется именем.
func sortedCounts(m map[string]int64) []NamedCount {
	out := make([]NamedCount, 0, len(m))
	for name, clicks := range m {
		out = append(out, NamedCount{Name: name, Clicks: clicks})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Clicks != out[j].Clicks {
			return out[i].Clicks > out[j].Clicks
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func bucketName(v *string) string {
	if v == nil || *v == "" {
		return unknownBucket
	}
	return *v
}

func strOr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
