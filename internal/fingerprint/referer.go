package fingerprint

import (
	"net/url"
	"strings"
)

// Типы реферера.
const (
	RefererTypeDirect  = "direct"
	RefererTypeSocial  = "social"
	RefererTypeSearch  = "search"
	RefererTypeWebsite = "website"
)

// RefererInfo результат классификации реферера.
type RefererInfo struct {
	Domain string `json:"domain"`
	Type   string `json:"type"`
	Source string `json:"source"`
}

// socialPlatforms домены соцсетей. Порядок имеет значение: побеждает первое
// совпадение.
var socialPlatforms = []string{
	"facebook.com", "twitter.com", "x.com", "linkedin.com", "instagram.com",
	"youtube.com", "tiktok.com", "snapchat.com", "pinterest.com", "reddit.com",
	"discord.com", "telegram.org", "whatsapp.com", "messenger.com",
}

// searchEngines домены поисковиков.
var searchEngines = []string{
	"google.com", "bing.com", "yahoo.com", "duckduckgo.com", "baidu.com",
	"yandex.com", "ask.com", "aol.com", "ecosia.org", "startpage.com",
}

// ClassifyReferer относит реферер к одной из категорий
// direct/social/search/website и определяет домен-источник.
// Нераспарсиваемый реферер дает {unknown, unknown, <сырой реферер>}.
func ClassifyReferer(referer string) RefererInfo {
	if referer == "" || referer == Direct {
		return RefererInfo{Domain: Direct, Type: RefererTypeDirect, Source: Direct}
	}

	parsed, err := url.Parse(referer)
	if err != nil || parsed.Hostname() == "" {
		return RefererInfo{Domain: Unknown, Type: Unknown, Source: referer}
	}

	domain := strings.ToLower(strings.TrimPrefix(parsed.Hostname(), "www."))

	if source, ok := matchDomain(domain, socialPlatforms); ok {
		return RefererInfo{Domain: domain, Type: RefererTypeSocial, Source: source}
	}
	if source, ok := matchDomain(domain, searchEngines); ok {
		return RefererInfo{Domain: domain, Type: RefererTypeSearch, Source: source}
	}
	return RefererInfo{Domain: domain, Type: RefererTypeWebsite, Source: domain}
}

func matchDomain(domain string, list []string) (string, bool) {
	for _, candidate := range list {
		if strings.Contains(domain, candidate) {
			return candidate, true
		}
	}
	return "", false
}
