package fingerprint

import (
	"strings"

	uaparser "github.com/mileusna/useragent"
)

// agentInfo разобранный User-Agent.
type agentInfo struct {
	Device          Device
	Browser         NameVersion
	OS              NameVersion
	Engine          NameVersion
	CPUArchitecture string
	IsBot           bool
}

// engineByBrowser движок рендеринга по имени браузера. Go-парсеры UA движок
// не выдают, поэтому восстанавливаем его по таблице.
var engineByBrowser = map[string]string{
	"Chrome":            "Blink",
	"Headless Chrome":   "Blink",
	"Edge":              "Blink",
	"Opera":             "Blink",
	"Opera Mini":        "Presto",
	"Vivaldi":           "Blink",
	"Samsung Browser":   "Blink",
	"Safari":            "WebKit",
	"Firefox":           "Gecko",
	"Internet Explorer": "Trident",
}

// cpuMarkers маркеры архитектуры CPU в сыром User-Agent, в порядке проверки.
var cpuMarkers = []struct {
	marker string
	arch   string
}{
	{"aarch64", "arm64"},
	{"arm64", "arm64"},
	{"x86_64", "amd64"},
	{"x86-64", "amd64"},
	{"win64", "amd64"},
	{"wow64", "amd64"},
	{"amd64", "amd64"},
	{"x64", "amd64"},
	{"i686", "ia32"},
	{"i386", "ia32"},
	{"armv7", "arm"},
	{"armv6", "arm"},
	{"arm;", "arm"},
	{"ppc64", "ppc64"},
}

// parseUserAgent разбирает User-Agent в сведения об устройстве, браузере,
// ОС и движке. Каждое неопределенное поле получает "unknown".
func parseUserAgent(raw string) agentInfo {
	if raw == "" || raw == Unknown {
		return unknownAgent()
	}

	ua := uaparser.Parse(raw)

	info := agentInfo{
		Device: Device{
			Type:   deviceType(ua),
			Vendor: deviceVendor(raw),
			Model:  orUnknown(ua.Device),
		},
		Browser: NameVersion{
			Name:    orUnknown(ua.Name),
			Version: orUnknown(ua.Version),
		},
		OS: NameVersion{
			Name:    orUnknown(ua.OS),
			Version: orUnknown(ua.OSVersion),
		},
		Engine:          engineInfo(raw, ua.Name),
		CPUArchitecture: cpuArchitecture(raw),
		IsBot:           ua.Bot,
	}
	return info
}

func unknownAgent() agentInfo {
	return agentInfo{
		Device:          Device{Type: Unknown, Vendor: Unknown, Model: Unknown},
		Browser:         NameVersion{Name: Unknown, Version: Unknown},
		OS:              NameVersion{Name: Unknown, Version: Unknown},
		Engine:          NameVersion{Name: Unknown, Version: Unknown},
		CPUArchitecture: Unknown,
	}
}

func deviceType(ua uaparser.UserAgent) string {
	switch {
	case ua.Mobile:
		return "mobile"
	case ua.Tablet:
		return "tablet"
	case ua.Bot:
		return "bot"
	case ua.Desktop:
		return "desktop"
	default:
		return Unknown
	}
}

// vendorMarkers производитель устройства по подстроке в UA.
var vendorMarkers = []struct {
	marker string
	vendor string
}{
	{"iphone", "Apple"},
	{"ipad", "Apple"},
	{"macintosh", "Apple"},
	{"samsung", "Samsung"},
	{"sm-", "Samsung"},
	{"huawei", "Huawei"},
	{"xiaomi", "Xiaomi"},
	{"redmi", "Xiaomi"},
	{"pixel", "Google"},
	{"oneplus", "OnePlus"},
	{"nokia", "Nokia"},
}

func deviceVendor(raw string) string {
	lower := strings.ToLower(raw)
	for _, m := range vendorMarkers {
		if strings.Contains(lower, m.marker) {
			return m.vendor
		}
	}
	return Unknown
}

func engineInfo(raw, browser string) NameVersion {
	name, ok := engineByBrowser[browser]
	if !ok {
		return NameVersion{Name: Unknown, Version: Unknown}
	}
	version := Unknown
	// Для WebKit версия видна прямо в токене AppleWebKit/<версия>.
	if name == "WebKit" {
		if v := tokenVersion(raw, "AppleWebKit/"); v != "" {
			version = v
		}
	}
	if name == "Gecko" {
		if v := tokenVersion(raw, "rv:"); v != "" {
			version = v
		}
	}
	return NameVersion{Name: name, Version: version}
}

// tokenVersion вырезает версию после префикса токена до первого разделителя.
func tokenVersion(raw, prefix string) string {
	idx := strings.Index(raw, prefix)
	if idx < 0 {
		return ""
	}
	rest := raw[idx+len(prefix):]
	end := strings.IndexAny(rest, " );")
	if end < 0 {
		return rest
	}
	return rest[:end]
}

func cpuArchitecture(raw string) string {
	lower := strings.ToLower(raw)
	for _, m := range cpuMarkers {
		if strings.Contains(lower, m.marker) {
			return m.arch
		}
	}
	return Unknown
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}
