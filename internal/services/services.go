package services

import (
	"github.com/fsdevblog/linktrack/internal/repositories/sql"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Services собранный сервисный слой приложения.
type Services struct {
	ShortURLService  *ShortURLService
	RedirectService  *RedirectService
	AnalyticsService *AnalyticsService
}

// Factory собирает сервисы поверх единственного SQL-подключения.
// members может быть nil, тогда используется заглушка на одного участника.
func Factory(conn *gorm.DB, countryResolver CountryResolver, members MemberCounter, logger *logrus.Logger) *Services {
	urlRepo := sql.NewShortURLRepo(conn, logger)
	clickRepo := sql.NewClickRepo(conn, logger)

	return &Services{
		ShortURLService:  NewShortURLService(urlRepo),
		RedirectService:  NewRedirectService(urlRepo, clickRepo, countryResolver, logger),
		AnalyticsService: NewAnalyticsService(urlRepo, clickRepo, members),
	}
}
