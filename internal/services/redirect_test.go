package services

import (
	"context"
	"testing"
	"time"

	"github.com/fsdevblog/linktrack/internal/fingerprint"
	"github.com/fsdevblog/linktrack/internal/geo"
	"github.com/fsdevblog/linktrack/internal/models"
	"github.com/fsdevblog/linktrack/internal/repositories"
	"github.com/fsdevblog/linktrack/internal/services/smocks"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type RedirectServiceSuite struct {
	suite.Suite
	urls    *smocks.SlugResolverMock
	clicks  *smocks.ClickRecorderMock
	geoMock *smocks.CountryResolverMock
	service *RedirectService
	now     time.Time
}

func TestRedirectService(t *testing.T) {
	suite.Run(t, new(RedirectServiceSuite))
}

func (s *RedirectServiceSuite) SetupTest() {
	s.urls = new(smocks.SlugResolverMock)
	s.clicks = new(smocks.ClickRecorderMock)
	s.geoMock = new(smocks.CountryResolverMock)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.service = NewRedirectService(s.urls, s.clicks, s.geoMock, logger)
	s.service.nowFunc = func() time.Time { return s.now }
}

func (s *RedirectServiceSuite) activeURL() *models.ShortURL {
	return &models.ShortURL{
		ID:          "11111111-1111-1111-1111-111111111111",
		Slug:        "promo",
		OriginalURL: "https://example.com/landing",
		IsActive:    true,
	}
}

func (s *RedirectServiceSuite) fp() fingerprint.Fingerprint {
	return fingerprint.Fingerprint{
		IP:        "203.0.113.5",
		UserAgent: "test-agent",
		Referer:   "https://www.google.com/search",
		Host:      "lnk.example.com",
		Device:    fingerprint.Device{Type: "desktop", Vendor: fingerprint.Unknown, Model: fingerprint.Unknown},
		Browser:   fingerprint.NameVersion{Name: "Chrome", Version: "120.0"},
		OS:        fingerprint.NameVersion{Name: "Windows", Version: "10.0"},
		Engine:    fingerprint.NameVersion{Name: "Blink", Version: fingerprint.Unknown},

		CPUArchitecture: "amd64",
		AcceptLanguage:  "en-US",
		AcceptEncoding:  "gzip",
		DNT:             fingerprint.NotSet,
		CFCountry:       fingerprint.Unknown,
		CFRay:           fingerprint.Unknown,
		QueryParams:     map[string]string{"utm_source": "newsletter"},
	}
}

func (s *RedirectServiceSuite) TestResolve_RecordsClick() {
	sURL := s.activeURL()
	s.urls.On("GetBySlug", mock.Anything, "promo").Return(sURL, nil)
	s.geoMock.On("Resolve", mock.Anything, "203.0.113.5").
		Return(&geo.Country{Code: "DE", Name: "Germany"})

	var recorded *models.Click
	s.clicks.On("CreateWithCounter", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			recorded = args.Get(1).(*models.Click)
		}).
		Return(nil)

	result, err := s.service.Resolve(context.Background(), "promo", s.fp())
	s.Require().NoError(err)
	s.Equal("https://example.com/landing", result.Target)

	s.Require().NotNil(recorded)
	s.Equal(sURL.ID, recorded.ShortURLID)
	s.NotEmpty(recorded.ID)
	s.Require().NotNil(recorded.IPAddress)
	s.Equal("203.0.113.5", *recorded.IPAddress)
	s.Require().NotNil(recorded.CountryCode)
	s.Equal("DE", *recorded.CountryCode)
	s.Equal("Germany", *recorded.CountryName)
	s.Require().NotNil(recorded.RefererType)
	s.Equal(fingerprint.RefererTypeSearch, *recorded.RefererType)
	s.Require().NotNil(recorded.UTMSource)
	s.Equal("newsletter", *recorded.UTMSource)
	s.Equal(s.now, recorded.ClickedAt)

	// Сентинели в запись не попадают.
	s.Nil(recorded.DNT)
	s.Nil(recorded.CFCountry)
	s.Nil(recorded.DeviceVendor)
	s.Nil(recorded.EngineVersion)
}

func (s *RedirectServiceSuite) TestResolve_UnparsableRefererNotPersisted() {
	s.urls.On("GetBySlug", mock.Anything, "promo").Return(s.activeURL(), nil)
	s.geoMock.On("Resolve", mock.Anything, mock.Anything).Return((*geo.Country)(nil))

	var recorded *models.Click
	s.clicks.On("CreateWithCounter", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			recorded = args.Get(1).(*models.Click)
		}).
		Return(nil)

	fp := s.fp()
	fp.Referer = "http://%zz\tbad"

	_, err := s.service.Resolve(context.Background(), "promo", fp)
	s.Require().NoError(err)
	s.Require().NotNil(recorded)

	// Тип нераспознанного реферера это сентинель, в запись он не попадает.
	// Сырая строка при этом сохраняется.
	s.Nil(recorded.RefererType)
	s.Require().NotNil(recorded.Referer)
	s.Equal("http://%zz\tbad", *recorded.Referer)
}

func (s *RedirectServiceSuite) TestResolve_DirectRefererTypeKept() {
	s.urls.On("GetBySlug", mock.Anything, "promo").Return(s.activeURL(), nil)
	s.geoMock.On("Resolve", mock.Anything, mock.Anything).Return((*geo.Country)(nil))

	var recorded *models.Click
	s.clicks.On("CreateWithCounter", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			recorded = args.Get(1).(*models.Click)
		}).
		Return(nil)

	fp := s.fp()
	fp.Referer = ""

	_, err := s.service.Resolve(context.Background(), "promo", fp)
	s.Require().NoError(err)
	s.Require().NotNil(recorded)

	s.Require().NotNil(recorded.RefererType)
	s.Equal(fingerprint.RefererTypeDirect, *recorded.RefererType)
}

func (s *RedirectServiceSuite) TestResolve_CountryRules() {
	sURL := s.activeURL()
	metadata := `{"DE": "https://de.example.com", "*": "https://rest.example.com"}`
	sURL.Metadata = &metadata

	s.urls.On("GetBySlug", mock.Anything, "promo").Return(sURL, nil)
	s.geoMock.On("Resolve", mock.Anything, mock.Anything).
		Return(&geo.Country{Code: "DE", Name: "Germany"})
	s.clicks.On("CreateWithCounter", mock.Anything, mock.Anything).Return(nil)

	result, err := s.service.Resolve(context.Background(), "promo", s.fp())
	s.Require().NoError(err)
	s.Equal("https://de.example.com", result.Target)
}

func (s *RedirectServiceSuite) TestResolve_UTMFallbackToDefaults() {
	sURL := s.activeURL()
	campaign := "spring-sale"
	sURL.UTMCampaign = &campaign

	s.urls.On("GetBySlug", mock.Anything, "promo").Return(sURL, nil)
	s.geoMock.On("Resolve", mock.Anything, mock.Anything).Return(nil)

	var recorded *models.Click
	s.clicks.On("CreateWithCounter", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			recorded = args.Get(1).(*models.Click)
		}).
		Return(nil)

	_, err := s.service.Resolve(context.Background(), "promo", s.fp())
	s.Require().NoError(err)

	s.Require().NotNil(recorded.UTMSource)
	s.Equal("newsletter", *recorded.UTMSource) // из query
	s.Require().NotNil(recorded.UTMCampaign)
	s.Equal("spring-sale", *recorded.UTMCampaign) // дефолт ссылки
	s.Nil(recorded.UTMMedium)
}

func (s *RedirectServiceSuite) TestResolve_NotFound() {
	s.urls.On("GetBySlug", mock.Anything, "missing").Return(nil, repositories.ErrNotFound)

	_, err := s.service.Resolve(context.Background(), "missing", s.fp())
	s.Require().Error(err)
	s.ErrorIs(err, ErrRecordNotFound)
	s.clicks.AssertNotCalled(s.T(), "CreateWithCounter", mock.Anything, mock.Anything)
}

func (s *RedirectServiceSuite) TestResolve_BlockedStates() {
	past := s.now.Add(-time.Hour)
	limit := 3

	tests := []struct {
		name      string
		mutate    func(*models.ShortURL)
		wantState LifecycleState
	}{
		{
			name:      "inactive",
			mutate:    func(u *models.ShortURL) { u.IsActive = false },
			wantState: StateInactive,
		},
		{
			name:      "expired",
			mutate:    func(u *models.ShortURL) { u.ExpiresAt = &past },
			wantState: StateExpired,
		},
		{
			name: "limit reached",
			mutate: func(u *models.ShortURL) {
				u.MaxClicks = &limit
				u.ClickCount = 3
			},
			wantState: StateLimitReached,
		},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			sURL := s.activeURL()
			tt.mutate(sURL)
			s.urls.On("GetBySlug", mock.Anything, "promo").Return(sURL, nil)

			_, err := s.service.Resolve(context.Background(), "promo", s.fp())
			s.Require().Error(err)

			var blocked *BlockedError
			s.Require().ErrorAs(err, &blocked)
			s.Equal(tt.wantState, blocked.State)
			s.clicks.AssertNotCalled(s.T(), "CreateWithCounter", mock.Anything, mock.Anything)
			s.geoMock.AssertNotCalled(s.T(), "Resolve", mock.Anything, mock.Anything)
		})
	}
}

func (s *RedirectServiceSuite) TestResolve_RecordFailureBlocksRedirect() {
	s.urls.On("GetBySlug", mock.Anything, "promo").Return(s.activeURL(), nil)
	s.geoMock.On("Resolve", mock.Anything, mock.Anything).Return(nil)
	s.clicks.On("CreateWithCounter", mock.Anything, mock.Anything).
		Return(errors.New("insert failed"))

	result, err := s.service.Resolve(context.Background(), "promo", s.fp())
	s.Require().Error(err)
	s.ErrorIs(err, ErrUnknown)
	s.Nil(result)
}
