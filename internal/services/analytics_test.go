package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/fsdevblog/linktrack/internal/models"
	"github.com/fsdevblog/linktrack/internal/repositories"
	"github.com/fsdevblog/linktrack/internal/services/smocks"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AnalyticsServiceSuite struct {
	suite.Suite
	urls    *smocks.ShortURLStatsMock
	clicks  *smocks.ClickStatsMock
	service *AnalyticsService
	scope   repositories.Scope
	now     time.Time
}

func TestAnalyticsService(t *testing.T) {
	suite.Run(t, new(AnalyticsServiceSuite))
}

func (s *AnalyticsServiceSuite) SetupTest() {
	s.urls = new(smocks.ShortURLStatsMock)
	s.clicks = new(smocks.ClickStatsMock)
	s.service = NewAnalyticsService(s.urls, s.clicks, nil)

	s.now = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	s.service.nowFunc = func() time.Time { return s.now }

	userID := "user-1"
	s.scope = repositories.Scope{UserID: &userID}
}

func (s *AnalyticsServiceSuite) TestOverview() {
	s.urls.On("CountByScope", mock.Anything, s.scope).Return(int64(4), nil)
	s.urls.On("SumClickCounts", mock.Anything, s.scope).Return(int64(152), nil)

	overview, err := s.service.Overview(context.Background(), s.scope)
	s.Require().NoError(err)
	s.Equal(int64(4), overview.TotalURLs)
	s.Equal(int64(152), overview.TotalClicks)
	// Заглушка счетчика участников.
	s.Equal(int64(1), overview.TotalMembers)
}

func (s *AnalyticsServiceSuite) TestDailyClicks_DenseSeries() {
	since := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	s.clicks.On("DailyCounts", mock.Anything, s.scope, (*string)(nil), since).
		Return([]repositories.DayCount{
			{Day: "2025-06-10", Clicks: 3},
			{Day: "2025-06-14", Clicks: 7},
		}, nil)

	series, err := s.service.DailyClicks(context.Background(), s.scope, nil, 7)
	s.Require().NoError(err)
	s.Require().Len(series, 7)

	s.Equal("2025-06-09", series[0].Date)
	s.Equal("2025-06-15", series[6].Date)

	byDate := map[string]int64{}
	for _, p := range series {
		byDate[p.Date] = p.Clicks
	}
	s.Equal(int64(3), byDate["2025-06-10"])
	s.Equal(int64(7), byDate["2025-06-14"])
	// Пустые дни заполнены нулями.
	s.Equal(int64(0), byDate["2025-06-11"])
	s.Equal(int64(0), byDate["2025-06-15"])
}

func (s *AnalyticsServiceSuite) TestTopCountries_UnknownBucket() {
	germany := "Germany"
	s.clicks.On("TopCountries", mock.Anything, s.scope, (*string)(nil), 10).
		Return([]repositories.DimCount{
			{Value: &germany, Clicks: 12},
			{Value: nil, Clicks: 5},
		}, nil)

	counts, err := s.service.TopCountries(context.Background(), s.scope, nil, 10)
	s.Require().NoError(err)
	s.Require().Len(counts, 2)
	s.Equal(NamedCount{Name: "Germany", Clicks: 12}, counts[0])
	s.Equal(NamedCount{Name: "(unknown)", Clicks: 5}, counts[1])
}

func (s *AnalyticsServiceSuite) TestClicks_Pagination() {
	items := []models.Click{{ID: "c1"}, {ID: "c2"}}
	s.clicks.On("List", mock.Anything, s.scope, mock.Anything, 2, 2).
		Return(items, int64(5), nil)

	page, err := s.service.Clicks(context.Background(), s.scope, repositories.ClickFilter{}, 2, 2)
	s.Require().NoError(err)
	s.Equal(int64(5), page.Total)
	s.Equal(2, page.Page)
	s.Len(page.Items, 2)
}

func (s *AnalyticsServiceSuite) TestExportCSV() {
	ip := "203.0.113.5"
	country := "DE"
	s.clicks.On("ListForExport", mock.Anything, s.scope, mock.Anything, ExportLimit).
		Return([]models.Click{
			{
				ID:          "c1",
				ShortURLID:  "u1",
				IPAddress:   &ip,
				CountryCode: &country,
				IsBot:       false,
				ClickedAt:   time.Date(2025, 6, 14, 8, 0, 0, 0, time.UTC),
			},
			{ID: "c2", ShortURLID: "u1", IsBot: true, ClickedAt: time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)},
		}, nil)

	var buf bytes.Buffer
	err := s.service.ExportCSV(context.Background(), &buf, s.scope, repositories.ClickFilter{})
	s.Require().NoError(err)

	records, readErr := csv.NewReader(&buf).ReadAll()
	s.Require().NoError(readErr)
	s.Require().Len(records, 3) // заголовок + 2 строки

	s.Equal(exportHeader, records[0])
	s.Equal("c1", records[1][0])
	s.Equal("203.0.113.5", records[1][3])
	s.Equal("DE", records[1][4])
	s.Equal("false", records[1][11])
	// NULL-поля экспортируются пустыми ячейками.
	s.Equal("", records[2][3])
	s.Equal("true", records[2][11])
}

func (s *AnalyticsServiceSuite) TestRollup() {
	userID := "user-1"
	sURL := &models.ShortURL{ID: "u1", Slug: "promo", UserID: &userID}
	s.urls.On("GetByID", mock.Anything, "u1").Return(sURL, nil)

	ip1, ip2 := "203.0.113.5", "203.0.113.6"
	germany := "Germany"
	social := "social"
	chrome := "Chrome"
	windows := "Windows"
	desktop := "desktop"
	facebook := "facebook.com"
	day1 := time.Date(2025, 6, 14, 8, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 6, 13, 8, 0, 0, 0, time.UTC)

	s.clicks.On("ListByShortURL", mock.Anything, "u1", mock.Anything).
		Return([]models.Click{
			{
				ID: "c1", IPAddress: &ip1, CountryName: &germany,
				RefererType: &social, RefererSource: &facebook,
				BrowserName: &chrome, OSName: &windows, DeviceType: &desktop,
				ClickedAt: day1,
			},
			{
				ID: "c2", IPAddress: &ip1, CountryName: &germany,
				BrowserName: &chrome, ClickedAt: day1, IsBot: true,
			},
			{ID: "c3", IPAddress: &ip2, ClickedAt: day2},
		}, nil)

	rollup, err := s.service.Rollup(context.Background(), s.scope, "u1", 30)
	s.Require().NoError(err)

	s.Equal(int64(3), rollup.TotalClicks)
	s.Equal(int64(2), rollup.UniqueVisitors)
	s.Equal(int64(1), rollup.BotClicks)
	s.Len(rollup.Recent, 3)
	s.Len(rollup.Daily, 30)

	byDate := map[string]int64{}
	for _, p := range rollup.Daily {
		byDate[p.Date] = p.Clicks
	}
	s.Equal(int64(2), byDate["2025-06-14"])
	s.Equal(int64(1), byDate["2025-06-13"])

	s.Require().NotEmpty(rollup.Countries)
	s.Equal(NamedCount{Name: "Germany", Clicks: 2}, rollup.Countries[0])
	s.Equal(NamedCount{Name: "(unknown)", Clicks: 1}, rollup.Countries[1])

	s.Require().Len(rollup.RefererTypes, 2)
	s.Equal(NamedCount{Name: "(unknown)", Clicks: 2}, rollup.RefererTypes[0])
	s.Equal(NamedCount{Name: "social", Clicks: 1}, rollup.RefererTypes[1])

	s.Require().Len(rollup.Browsers, 2)
	s.Equal(NamedCount{Name: "Chrome", Clicks: 2}, rollup.Browsers[0])
	s.Equal(NamedCount{Name: "(unknown)", Clicks: 1}, rollup.Browsers[1])

	s.Require().Len(rollup.OperatingSystems, 2)
	s.Equal(NamedCount{Name: "(unknown)", Clicks: 2}, rollup.OperatingSystems[0])
	s.Equal(NamedCount{Name: "Windows", Clicks: 1}, rollup.OperatingSystems[1])

	s.Require().Len(rollup.Devices, 2)
	s.Equal(NamedCount{Name: "(unknown)", Clicks: 2}, rollup.Devices[0])
	s.Equal(NamedCount{Name: "desktop", Clicks: 1}, rollup.Devices[1])

	s.Require().Len(rollup.Referrers, 2)
	s.Equal(NamedCount{Name: "(unknown)", Clicks: 2}, rollup.Referrers[0])
	s.Equal(NamedCount{Name: "facebook.com", Clicks: 1}, rollup.Referrers[1])
}

func (s *AnalyticsServiceSuite) TestRollup_CustomWindow() {
	userID := "user-1"
	s.urls.On("GetByID", mock.Anything, "u1").
		Return(&models.ShortURL{ID: "u1", UserID: &userID}, nil)

	since := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	s.clicks.On("ListByShortURL", mock.Anything, "u1", since).
		Return([]models.Click{}, nil)

	rollup, err := s.service.Rollup(context.Background(), s.scope, "u1", 7)
	s.Require().NoError(err)
	s.Len(rollup.Daily, 7)
}

func (s *AnalyticsServiceSuite) TestRollup_ScopeMismatch() {
	otherUser := "user-2"
	s.urls.On("GetByID", mock.Anything, "u1").
		Return(&models.ShortURL{ID: "u1", UserID: &otherUser}, nil)

	_, err := s.service.Rollup(context.Background(), s.scope, "u1", 30)
	s.Require().Error(err)
	s.ErrorIs(err, ErrRecordNotFound)
	s.clicks.AssertNotCalled(s.T(), "ListByShortURL", mock.Anything, mock.Anything, mock.Anything)
}
