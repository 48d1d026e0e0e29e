package config

import (
	"flag"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// Config настройки приложения. Значения из окружения имеют приоритет над
// флагами командной строки.
type Config struct {
	// Адрес на котором запустится сервер
	ServerAddress string `env:"SERVER_ADDRESS"`
	// DSN PostgreSQL. Если пуст, используется SQLite по пути SQLitePath.
	DatabaseDSN string `env:"DATABASE_DSN"`
	// Путь к файлу SQLite
	SQLitePath string `env:"SQLITE_PATH"`
	// Адрес Redis для кэша геолокации. Если пуст, кэш держим в памяти процесса.
	RedisAddr string `env:"REDIS_ADDR"`
	// Базовый адрес сервиса геолокации
	GeoAPIBaseURL string `env:"GEO_API_BASE_URL"`
	// Таймаут запроса к сервису геолокации
	GeoTimeout time.Duration `env:"GEO_TIMEOUT" envDefault:"3s"`
	// Срок жизни записи в кэше геолокации
	GeoCacheTTL time.Duration `env:"GEO_CACHE_TTL" envDefault:"24h"`
	// Отдавать ли трафик по HTTPS с самоподписанным сертификатом
	EnableHTTPS bool `env:"ENABLE_HTTPS"` // через флаги не настраиваю, незачем
}

func LoadConfig() (*Config, error) {
	var flagsConfig, envConfig Config

	if err := env.Parse(&envConfig); err != nil {
		return nil, errors.Wrapf(err, "parse ENV config error")
	}

	loadsFlags(&flagsConfig)

	return mergeConfig(&envConfig, &flagsConfig), nil
}

func MustLoadConfig() *Config {
	conf, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return conf
}

// loadsFlags парсит флаги командной строки.
func loadsFlags(flagsConfig *Config) {
	flag.StringVar(&flagsConfig.ServerAddress, "a", "localhost:8080", "Адрес сервера")
	flag.StringVar(&flagsConfig.DatabaseDSN, "d", "", "DSN PostgreSQL")
	flag.StringVar(&flagsConfig.SQLitePath, "s", "linktrack.db", "Путь к файлу SQLite")
	flag.StringVar(&flagsConfig.RedisAddr, "r", "", "Адрес Redis")
	flag.StringVar(&flagsConfig.GeoAPIBaseURL, "g", "https://api.country.is", "Адрес сервиса геолокации")
	flag.Parse()
}

// mergeConfig мержит конфиги, ENV в приоритете.
func mergeConfig(envConfig, flagsConfig *Config) *Config {
	conf := *envConfig

	if conf.ServerAddress == "" {
		conf.ServerAddress = flagsConfig.ServerAddress
	}
	if conf.DatabaseDSN == "" {
		conf.DatabaseDSN = flagsConfig.DatabaseDSN
	}
	if conf.SQLitePath == "" {
		conf.SQLitePath = flagsConfig.SQLitePath
	}
	if conf.RedisAddr == "" {
		conf.RedisAddr = flagsConfig.RedisAddr
	}
	if conf.GeoAPIBaseURL == "" {
		conf.GeoAPIBaseURL = flagsConfig.GeoAPIBaseURL
	}
	return &conf
}
