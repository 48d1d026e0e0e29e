package fingerprint

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name:    "first hop of x-forwarded-for",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1, 10.0.0.2"},
			want:    "203.0.113.5",
		},
		{
			name: "x-forwarded-for wins over x-real-ip",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.5",
				"X-Real-IP":       "198.51.100.7",
			},
			want: "203.0.113.5",
		},
		{
			name:    "x-real-ip",
			headers: map[string]string{"X-Real-IP": "198.51.100.7"},
			want:    "198.51.100.7",
		},
		{
			name:    "cf-connecting-ip",
			headers: map[string]string{"CF-Connecting-IP": "198.51.100.9"},
			want:    "198.51.100.9",
		},
		{
			name: "x-real-ip wins over cf-connecting-ip",
			headers: map[string]string{
				"X-Real-IP":        "198.51.100.7",
				"CF-Connecting-IP": "198.51.100.9",
			},
			want: "198.51.100.7",
		},
		{
			name:    "forwarded header",
			headers: map[string]string{"Forwarded": "203.0.113.44"},
			want:    "203.0.113.44",
		},
		{name: "no headers", headers: nil, want: Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/s/promo", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(r))
		})
	}
}

func TestExtract_Defaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/s/promo", nil)
	r.Host = ""
	r.Header.Del("User-Agent")

	fp := Extract(r)

	assert.Equal(t, Unknown, fp.IP)
	assert.Equal(t, Unknown, fp.UserAgent)
	assert.Equal(t, Direct, fp.Referer)
	assert.Equal(t, Unknown, fp.AcceptLanguage)
	assert.Equal(t, NotSet, fp.DNT)
	assert.Equal(t, Unknown, fp.CFCountry)
	assert.Equal(t, Unknown, fp.Browser.Name)
	assert.Equal(t, Unknown, fp.Device.Type)
	assert.False(t, fp.IsBot)
}

func TestExtract_FullRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/s/promo?utm_source=newsletter&ref=42", nil)
	r.Host = "lnk.example.com"
	r.Header.Set("User-Agent", chromeUA)
	r.Header.Set("Referer", "https://www.google.com/search?q=promo")
	r.Header.Set("X-Forwarded-For", "203.0.113.5")
	r.Header.Set("Accept-Language", "en-US,en;q=0.9")
	r.Header.Set("DNT", "1")
	r.Header.Set("CF-IPCountry", "US")

	fp := Extract(r)

	assert.Equal(t, "203.0.113.5", fp.IP)
	assert.Equal(t, chromeUA, fp.UserAgent)
	assert.Equal(t, "lnk.example.com", fp.Host)
	assert.Equal(t, "Chrome", fp.Browser.Name)
	assert.Equal(t, "desktop", fp.Device.Type)
	assert.Equal(t, "Windows", fp.OS.Name)
	assert.Equal(t, "Blink", fp.Engine.Name)
	assert.Equal(t, "amd64", fp.CPUArchitecture)
	assert.Equal(t, "1", fp.DNT)
	assert.Equal(t, "US", fp.CFCountry)
	assert.False(t, fp.IsBot)
	assert.Equal(t, "newsletter", fp.QueryParams["utm_source"])
	assert.Equal(t, "42", fp.QueryParams["ref"])
}

func TestMatchesBotPattern(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want bool
	}{
		{name: "googlebot", ua: "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", want: true},
		{name: "curl", ua: "curl/8.4.0", want: true},
		{name: "python requests", ua: "python-requests/2.31.0", want: true},
		{name: "headless chrome", ua: "Mozilla/5.0 HeadlessChrome/120.0.0.0", want: true},
		{name: "uppercase crawler", ua: "MY-CRAWLER/1.0", want: true},
		{name: "regular chrome", ua: chromeUA, want: false},
		{name: "empty", ua: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesBotPattern(tt.ua))
		})
	}
}

func TestParseUserAgent_Mobile(t *testing.T) {
	iphoneUA := "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 " +
		"(KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"

	agent := parseUserAgent(iphoneUA)

	assert.Equal(t, "mobile", agent.Device.Type)
	assert.Equal(t, "Apple", agent.Device.Vendor)
	assert.Equal(t, "Safari", agent.Browser.Name)
	assert.Equal(t, "iOS", agent.OS.Name)
	assert.Equal(t, "WebKit", agent.Engine.Name)
}

func TestParseUserAgent_Unknown(t *testing.T) {
	agent := parseUserAgent("")

	assert.Equal(t, Unknown, agent.Browser.Name)
	assert.Equal(t, Unknown, agent.Device.Type)
	assert.Equal(t, Unknown, agent.OS.Name)
	assert.Equal(t, Unknown, agent.CPUArchitecture)
}
