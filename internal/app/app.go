package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsdevblog/linktrack/internal/config"
	"github.com/fsdevblog/linktrack/internal/controllers"
	"github.com/fsdevblog/linktrack/internal/db"
	"github.com/fsdevblog/linktrack/internal/geo"
	"github.com/fsdevblog/linktrack/internal/logs"
	"github.com/fsdevblog/linktrack/internal/services"
	"github.com/fsdevblog/linktrack/internal/sslcert"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config     config.Config
	conn       *gorm.DB
	dbServices *services.Services
	Logger     *logrus.Logger
}

func New(conf config.Config) (*App, error) {
	logger := logs.New(os.Stdout)

	conn, connErr := db.NewConnectionFactory(factoryConfig(&conf))
	if connErr != nil {
		return nil, fmt.Errorf("init database: %w", connErr)
	}

	resolver := geo.NewResolver(conf.GeoAPIBaseURL, conf.GeoTimeout, countryCache(&conf, logger), logger)
	dbServices := services.Factory(conn, resolver, nil, logger)

	return &App{
		config:     conf,
		conn:       conn,
		dbServices: dbServices,
		Logger:     logger,
	}, nil
}

// Must вызывает панику если произошла ошибка.
func Must(a *App, err error) *App {
	if err != nil {
		panic(err)
	}
	return a
}

// Run запускает web сервер и блокируется до SIGINT/SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sqlDB, sqlErr := a.conn.DB()
	if sqlErr != nil {
		return fmt.Errorf("get sql connection: %w", sqlErr)
	}

	router := controllers.SetupRouter(controllers.RouterParams{
		Redirects: a.dbServices.RedirectService,
		URLs:      a.dbServices.ShortURLService,
		Analytics: a.dbServices.AnalyticsService,
		Conn:      sqlDB,
		Logger:    a.Logger,
	})

	server := &http.Server{
		Addr:              a.config.ServerAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second, //nolint:mnd
	}

	errChan := make(chan error, 1)
	go func() {
		if err := a.listenAndServe(server); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("Shutdown command received")
	case serverErr = <-errChan:
		a.Logger.WithError(serverErr).Error("router error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		a.Logger.WithError(shutdownErr).Error("server shutdown error")
	}

	return serverErr
}

// listenAndServe поднимает HTTP либо, при включенном HTTPS, генерирует
// самоподписанный сертификат и поднимает TLS.
func (a *App) listenAndServe(server *http.Server) error {
	if !a.config.EnableHTTPS {
		return server.ListenAndServe() //nolint:wrapcheck
	}

	certPEM, keyPEM, pairErr := sslcert.New().Generate()
	if pairErr != nil {
		return fmt.Errorf("generate certificate: %w", pairErr)
	}
	keyPair, keyPairErr := tls.X509KeyPair(certPEM, keyPEM)
	if keyPairErr != nil {
		return fmt.Errorf("load key pair: %w", keyPairErr)
	}

	server.TLSConfig = &tls.Config{
		Certificates: []tls.Certificate{keyPair},
		MinVersion:   tls.VersionTLS12,
	}
	return server.ListenAndServeTLS("", "") //nolint:wrapcheck
}

func factoryConfig(conf *config.Config) db.FactoryConfig {
	if conf.DatabaseDSN != "" {
		return db.FactoryConfig{
			StorageType: db.StorageTypePostgres,
			PostgresDSN: conf.DatabaseDSN,
		}
	}
	return db.FactoryConfig{
		StorageType: db.StorageTypeSQLite,
		SQLitePath:  conf.SQLitePath,
	}
}

// countryCache выбирает кэш геолокации: Redis если задан адрес, иначе
// локальная память процесса.
func countryCache(conf *config.Config, logger *logrus.Logger) geo.CountryCache {
	if conf.RedisAddr == "" {
		return geo.NewMemoryCache(conf.GeoCacheTTL)
	}
	client := redis.NewClient(&redis.Options{Addr: conf.RedisAddr})
	return geo.NewRedisCache(client, conf.GeoCacheTTL, logger)
}
