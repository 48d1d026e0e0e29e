package smocks

import (
	"context"
	"time"

	"github.com/fsdevblog/linktrack/internal/models"
	"github.com/fsdevblog/linktrack/internal/repositories"

	"github.com/stretchr/testify/mock"
)

type ShortURLStatsMock struct {
	mock.Mock
}

func (m *ShortURLStatsMock) GetByID(ctx context.Context, id string) (*models.ShortURL, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).(*models.ShortURL), args.Error(1) //nolint:wrapcheck,errcheck
}

func (m *ShortURLStatsMock) CountByScope(ctx context.Context, scope repositories.Scope) (int64, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).(int64), args.Error(1) //nolint:wrapcheck,errcheck
}

func (m *ShortURLStatsMock) SumClickCounts(ctx context.Context, scope repositories.Scope) (int64, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).(int64), args.Error(1) //nolint:wrapcheck,errcheck
}

func (m *ShortURLStatsMock) TopByClickCount(
	ctx context.Context,
	scope repositories.Scope,
	limit int,
) ([]models.ShortURL, error) {
	args := m.Called(ctx, scope, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).([]models.ShortURL), args.Error(1) //nolint:wrapcheck,errcheck
}

type ClickStatsMock struct {
	mock.Mock
}

func (m *ClickStatsMock) DailyCounts(
	ctx context.Context,
	scope repositories.Scope,
	urlID *string,
	since time.Time,
) ([]repositories.DayCount, error) {
	args := m.Called(ctx, scope, urlID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).([]repositories.DayCount), args.Error(1) //nolint:wrapcheck,errcheck
}

func (m *ClickStatsMock) TopCountries(
	ctx context.Context,
	scope repositories.Scope,
	urlID *string,
	limit int,
) ([]repositories.DimCount, error) {
	return m.dimCall("TopCountries", ctx, scope, urlID, limit)
}

func (m *ClickStatsMock) TopDevices(
	ctx context.Context,
	scope repositories.Scope,
	urlID *string,
	limit int,
) ([]repositories.DimCount, error) {
	return m.dimCall("TopDevices", ctx, scope, urlID, limit)
}

func (m *ClickStatsMock) TopBrowsers(
	ctx context.Context,
	scope repositories.Scope,
	urlID *string,
	limit int,
) ([]repositories.DimCount, error) {
	return m.dimCall("TopBrowsers", ctx, scope, urlID, limit)
}

func (m *ClickStatsMock) dimCall(
	method string,
	ctx context.Context,
	scope repositories.Scope,
	urlID *string,
	limit int,
) ([]repositories.DimCount, error) {
	// m.Called would report the method name as "dimCall"; pass the real name.
	args := m.MethodCalled(method, ctx, scope, urlID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).([]repositories.DimCount), args.Error(1) //nolint:wrapcheck,errcheck
}

func (m *ClickStatsMock) TopReferrers(
	ctx context.Context,
	scope repositories.Scope,
	urlID *string,
	limit int,
) ([]repositories.RefererCount, error) {
	args := m.Called(ctx, scope, urlID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).([]repositories.RefererCount), args.Error(1) //nolint:wrapcheck,errcheck
}

func (m *ClickStatsMock) List(
	ctx context.Context,
	scope repositories.Scope,
	filter repositories.ClickFilter,
	page, pageSize int,
) ([]models.Click, int64, error) {
	args := m.Called(ctx, scope, filter, page, pageSize)
	var items []models.Click
	if args.Get(0) != nil {
		items = args.Get(0).([]models.Click) //nolint:errcheck
	}
	return items, args.Get(1).(int64), args.Error(2) //nolint:wrapcheck,errcheck
}

func (m *ClickStatsMock) ListForExport(
	ctx context.Context,
	scope repositories.Scope,
	filter repositories.ClickFilter,
	limit int,
) ([]models.Click, error) {
	args := m.Called(ctx, scope, filter, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).([]models.Click), args.Error(1) //nolint:wrapcheck,errcheck
}

func (m *ClickStatsMock) ListByShortURL(
	ctx context.Context,
	shortURLID string,
	since time.Time,
) ([]models.Click, error) {
	args := m.Called(ctx, shortURLID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).([]models.Click), args.Error(1) //nolint:wrapcheck,errcheck
}
