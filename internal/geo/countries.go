package geo

// countryNames таблица кодов ISO 3166-1 alpha-2 в названия для самых частых
// стран. Неизвестный код проходит насквозь: названием становится сам код.
var countryNames = map[string]string{
	"US": "United States",
	"CA": "Canada",
	"GB": "United Kingdom",
	"DE": "Germany",
	"FR": "France",
	"JP": "Japan",
	"AU": "Australia",
	"BR": "Brazil",
	"IN": "India",
	"CN": "China",
	"RU": "Russia",
	"MX": "Mexico",
	"IT": "Italy",
	"ES": "Spain",
	"NL": "Netherlands",
	"SE": "Sweden",
	"NO": "Norway",
	"DK": "Denmark",
	"FI": "Finland",
	"CH": "Switzerland",
	"AT": "Austria",
	"BE": "Belgium",
	"PL": "Poland",
	"CZ": "Czech Republic",
	"HU": "Hungary",
	"PT": "Portugal",
	"IE": "Ireland",
	"GR": "Greece",
	"TR": "Turkey",
	"IL": "Israel",
	"ZA": "South Africa",
	"EG": "Egypt",
	"NG": "Nigeria",
	"KE": "Kenya",
	"AR": "Argentina",
	"CL": "Chile",
	"PE": "Peru",
	"CO": "Colombia",
	"VE": "Venezuela",
	"KR": "South Korea",
	"TH": "Thailand",
	"VN": "Vietnam",
	"MY": "Malaysia",
	"SG": "Singapore",
	"ID": "Indonesia",
	"PH": "Philippines",
	"TW": "Taiwan",
	"HK": "Hong Kong",
	"NZ": "New Zealand",
}

// CountryName возвращает название страны по коду или сам код, если страны
// нет в таблице.
func CountryName(code string) string {
	if name, ok := countryNames[code]; ok {
		return name
	}
	return code
}
