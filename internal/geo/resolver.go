// Package geo определяет страну клиента по его IP через внешний HTTP API.
// Вызов стоит на критическом пути редиректа, поэтому резолвер всегда
// "падает открытым": таймаут, не-200 или любая другая ошибка означают просто
// отсутствие данных о стране, а не ошибку запроса.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultAPIBaseURL адрес API геолокации по умолчанию.
	DefaultAPIBaseURL = "https://api.country.is"
	// DefaultTimeout ограничивает один внешний запрос.
	DefaultTimeout = 3 * time.Second

	lookupUserAgent = "linktrack-analytics/1.0"
)

// Country результат геолокации.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Resolver резолвит IP в страну с кэшированием.
type Resolver struct {
	baseURL string
	client  *http.Client
	cache   CountryCache
	logger  *logrus.Entry
}

func NewResolver(baseURL string, timeout time.Duration, cache CountryCache, logger *logrus.Logger) *Resolver {
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		cache:   cache,
		logger:  logger.WithField("module", "geo/resolver"),
	}
}

type lookupResponse struct {
	Country string `json:"country"`
	IP      string `json:"ip"`
}

// Resolve возвращает страну для IP либо nil, если страну определить нельзя.
// Никогда не возвращает ошибку наружу.
func (r *Resolver) Resolve(ctx context.Context, ip string) *Country {
	if skipLookup(ip) {
		return nil
	}

	if r.cache != nil {
		if country, ok := r.cache.Get(ctx, ip); ok {
			return country
		}
	}

	country := r.lookup(ctx, ip)

	if r.cache != nil {
		// Отрицательный результат тоже кэшируем.
		r.cache.Set(ctx, ip, country)
	}
	return country
}

func (r *Resolver) lookup(ctx context.Context, ip string) *Country {
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", r.baseURL, ip), nil)
	if reqErr != nil {
		r.logger.WithError(reqErr).Warnf("build lookup request for ip %s", ip)
		return nil
	}
	req.Header.Set("User-Agent", lookupUserAgent)

	resp, doErr := r.client.Do(req)
	if doErr != nil {
		r.logger.WithError(doErr).Warnf("country lookup failed for ip %s", ip)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		r.logger.Warnf("country API returned %d for ip %s", resp.StatusCode, ip)
		return nil
	}

	var payload lookupResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr != nil {
		r.logger.WithError(decodeErr).Warnf("decode country response for ip %s", ip)
		return nil
	}

	code := strings.ToUpper(strings.TrimSpace(payload.Country))
	if code == "" {
		return nil
	}
	return &Country{Code: code, Name: CountryName(code)}
}

// skipLookup отсекает адреса, для которых внешний запрос бессмысленен:
// пустые, неизвестные, loopback и приватные диапазоны.
func skipLookup(ip string) bool {
	if ip == "" || ip == "unknown" {
		return true
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return true
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsLinkLocalUnicast() || parsed.IsUnspecified() {
		return true
	}
	return false
}
