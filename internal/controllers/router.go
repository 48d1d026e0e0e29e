package controllers

import (
	"github.com/fsdevblog/linktrack/internal/controllers/middlewares"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RouterParams зависимости HTTP-слоя.
type RouterParams struct {
	Redirects Redirector
	URLs      ShortURLStore
	Analytics AnalyticsProvider
	Conn      ConnectionChecker
	Logger    *logrus.Logger
}

func SetupRouter(params RouterParams) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware(params.Logger))
	r.Use(middlewares.GzipMiddleware())

	redirectController := NewRedirectController(params.Redirects)
	shortURLController := NewShortURLController(params.URLs)
	analyticsController := NewAnalyticsController(params.Analytics)
	healthController := NewHealthController(params.Conn)

	r.GET("/ping", healthController.Ping)
	r.GET("/s/:slug", redirectController.Redirect)

	api := r.Group("/api")
	api.Use(middlewares.ScopeMiddleware())

	api.GET("/analytics", analyticsController.Query)

	api.POST("/urls", shortURLController.Create)
	api.GET("/urls", shortURLController.List)
	api.GET("/urls/:id", shortURLController.Get)
	api.PATCH("/urls/:id", shortURLController.Update)
	api.DELETE("/urls/:id", shortURLController.Delete)
	api.GET("/urls/:id/analytics", analyticsController.URLAnalytics)

	return r
}
