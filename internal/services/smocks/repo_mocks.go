package smocks

import (
	"context"

	"github.com/fsdevblog/linktrack/internal/geo"
	"github.com/fsdevblog/linktrack/internal/models"
	"github.com/fsdevblog/linktrack/internal/repositories"

	"github.com/stretchr/testify/mock"
)

type SlugResolverMock struct {
	mock.Mock
}

func (m *SlugResolverMock) GetBySlug(ctx context.Context, slug string) (*models.ShortURL, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).(*models.ShortURL), args.Error(1) //nolint:wrapcheck,errcheck
}

type ClickRecorderMock struct {
	mock.Mock
}

func (m *ClickRecorderMock) CreateWithCounter(ctx context.Context, click *models.Click) error {
	args := m.Called(ctx, click)
	return args.Error(0) //nolint:wrapcheck,errcheck
}

type CountryResolverMock struct {
	mock.Mock
}

func (m *CountryResolverMock) Resolve(ctx context.Context, ip string) *geo.Country {
	args := m.Called(ctx, ip)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*geo.Country) //nolint:errcheck
}

type ShortURLRepoMock struct {
	mock.Mock
}

func (m *ShortURLRepoMock) Create(ctx context.Context, sURL *models.ShortURL) error {
	args := m.Called(ctx, sURL)
	return args.Error(0) //nolint:wrapcheck,errcheck
}

func (m *ShortURLRepoMock) GetBySlug(ctx context.Context, slug string) (*models.ShortURL, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).(*models.ShortURL), args.Error(1) //nolint:wrapcheck,errcheck
}

func (m *ShortURLRepoMock) GetByID(ctx context.Context, id string) (*models.ShortURL, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).(*models.ShortURL), args.Error(1) //nolint:wrapcheck,errcheck
}

func (m *ShortURLRepoMock) Update(ctx context.Context, sURL *models.ShortURL) error {
	args := m.Called(ctx, sURL)
	return args.Error(0) //nolint:wrapcheck,errcheck
}

func (m *ShortURLRepoMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0) //nolint:wrapcheck,errcheck
}

func (m *ShortURLRepoMock) List(
	ctx context.Context,
	scope repositories.Scope,
	page, pageSize int,
) ([]models.ShortURL, int64, error) {
	args := m.Called(ctx, scope, page, pageSize)
	var items []models.ShortURL
	if args.Get(0) != nil {
		items = args.Get(0).([]models.ShortURL) //nolint:errcheck
	}
	return items, args.Get(1).(int64), args.Error(2) //nolint:wrapcheck,errcheck
}
