// Package fingerprint извлекает из входящего HTTP-запроса нормализованный
// аналитический фингерпринт: IP клиента, устройство, браузер, ОС, реферер,
// флаг бота и query-параметры. Чистая функция, без I/O: каждое поле, которое
// определить не удалось, получает сентинельное значение вместо пустоты.
package fingerprint

import (
	"net/http"
	"strings"
)

// Сентинельные значения для неопределяемых полей.
const (
	Unknown = "unknown"
	NotSet  = "not-set"
	Direct  = "direct"
)

// NameVersion пара имя/версия (браузер, ОС, движок).
type NameVersion struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Device сведения об устройстве.
type Device struct {
	Type   string `json:"type"`
	Vendor string `json:"vendor"`
	Model  string `json:"model"`
}

// Fingerprint нормализованный слепок запроса.
type Fingerprint struct {
	IP        string `json:"ip"`
	UserAgent string `json:"userAgent"`
	Referer   string `json:"referer"`
	Host      string `json:"host"`

	Device  Device      `json:"device"`
	Browser NameVersion `json:"browser"`
	OS      NameVersion `json:"os"`
	Engine  NameVersion `json:"engine"`

	CPUArchitecture string `json:"cpuArchitecture"`

	AcceptLanguage string `json:"acceptLanguage"`
	AcceptEncoding string `json:"acceptEncoding"`
	DNT            string `json:"dnt"`

	CFCountry string `json:"cfCountry"`
	CFRay     string `json:"cfRay"`

	IsBot bool `json:"isBot"`

	QueryParams map[string]string `json:"queryParams"`
}

// ipHeaders порядок заголовков форвардинга при определении IP клиента.
var ipHeaders = []string{
	"X-Real-IP",
	"CF-Connecting-IP",
	"X-Client-IP",
	"X-Forwarded",
	"Forwarded-For",
	"Forwarded",
}

// Extract строит фингерпринт по запросу. Сетевых вызовов не делает.
func Extract(r *http.Request) Fingerprint {
	rawUA := headerOr(r, "User-Agent", Unknown)
	agent := parseUserAgent(rawUA)

	return Fingerprint{
		IP:        ClientIP(r),
		UserAgent: rawUA,
		Referer:   headerOr(r, "Referer", Direct),
		Host:      hostOr(r, Unknown),

		Device:          agent.Device,
		Browser:         agent.Browser,
		OS:              agent.OS,
		Engine:          agent.Engine,
		CPUArchitecture: agent.CPUArchitecture,

		AcceptLanguage: headerOr(r, "Accept-Language", Unknown),
		AcceptEncoding: headerOr(r, "Accept-Encoding", Unknown),
		DNT:            headerOr(r, "DNT", NotSet),

		CFCountry: headerOr(r, "CF-IPCountry", Unknown),
		CFRay:     headerOr(r, "CF-Ray", Unknown),

		IsBot: agent.IsBot || matchesBotPattern(rawUA),

		QueryParams: queryParams(r),
	}
}

// ClientIP возвращает IP клиента по цепочке заголовков форвардинга:
// первый хоп X-Forwarded-For, затем остальные заголовки по порядку,
// иначе "unknown".
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return first
		}
	}
	for _, h := range ipHeaders {
		if v := strings.TrimSpace(r.Header.Get(h)); v != "" {
			return v
		}
	}
	return Unknown
}

func headerOr(r *http.Request, name, fallback string) string {
	if v := r.Header.Get(name); v != "" {
		return v
	}
	return fallback
}

func hostOr(r *http.Request, fallback string) string {
	if r.Host != "" {
		return r.Host
	}
	if v := r.Header.Get("Host"); v != "" {
		return v
	}
	return fallback
}

// queryParams возвращает query-параметры плоской картой. При повторах
// берется первое значение.
func queryParams(r *http.Request) map[string]string {
	values := r.URL.Query()
	params := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			params[key] = vals[0]
		}
	}
	return params
}
