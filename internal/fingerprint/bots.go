package fingerprint

import "strings"

// botPatterns известные идентификаторы краулеров и ботов. Проверяются как
// подстроки без учета регистра в дополнение к классификации парсера UA.
var botPatterns = []string{
	"bot",
	"crawler",
	"spider",
	"scraper",
	"facebook",
	"twitter",
	"linkedin",
	"whatsapp",
	"telegram",
	"slackbot",
	"discordbot",
	"googlebot",
	"bingbot",
	"yahoo",
	"baiduspider",
	"yandex",
	"duckduckbot",
	"facebookexternalhit",
	"twitterbot",
	"linkedinbot",
	"pinterestbot",
	"redditbot",
	"applebot",
	"amazonbot",
	"headless",
	"curl",
	"wget",
	"python",
	"java/",
	"go-http-client",
	"postman",
}

// matchesBotPattern сообщает, похож ли сырой User-Agent на автоматический
// клиент.
func matchesBotPattern(rawUA string) bool {
	if rawUA == "" || rawUA == Unknown {
		return false
	}
	lower := strings.ToLower(rawUA)
	for _, pattern := range botPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
