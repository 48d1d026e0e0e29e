package models

import "time"

// Click одно зафиксированное посещение. Запись append-only: после вставки не
// обновляется и не удаляется (кроме каскадного удаления вместе с ShortURL).
// Неопределяемые поля фингерпринта нормализуются в NULL на границе хранилища,
// сентинельные строки ("unknown", "not-set") в базу не попадают.
type Click struct {
	ID         string `json:"id" gorm:"primaryKey;size:36"`
	ShortURLID string `json:"shortUrlId" gorm:"column:short_url_id;index;size:36;not null"`

	IPAddress *string `json:"ipAddress" gorm:"size:45"`
	UserAgent *string `json:"userAgent" gorm:"size:1024"`
	Referer   *string `json:"referer" gorm:"size:2048"`
	Host      *string `json:"host" gorm:"size:255"`

	DeviceType   *string `json:"deviceType" gorm:"index;size:32"`
	DeviceVendor *string `json:"deviceVendor" gorm:"size:64"`
	DeviceModel  *string `json:"deviceModel" gorm:"size:64"`

	BrowserName    *string `json:"browserName" gorm:"index;size:64"`
	BrowserVersion *string `json:"browserVersion" gorm:"size:64"`

	OSName    *string `json:"osName" gorm:"column:os_name;size:64"`
	OSVersion *string `json:"osVersion" gorm:"column:os_version;size:64"`

	EngineName    *string `json:"engineName" gorm:"size:64"`
	EngineVersion *string `json:"engineVersion" gorm:"size:64"`

	CPUArchitecture *string `json:"cpuArchitecture" gorm:"column:cpu_architecture;size:32"`

	CountryCode *string `json:"countryCode" gorm:"index;size:2"`
	CountryName *string `json:"countryName" gorm:"size:64"`

	// Заголовки провайдера (Cloudflare), если стоим за ним.
	CFCountry *string `json:"cfCountry" gorm:"column:cf_country;size:8"`
	CFRay     *string `json:"cfRay" gorm:"column:cf_ray;size:64"`

	AcceptLanguage *string `json:"acceptLanguage" gorm:"size:255"`
	AcceptEncoding *string `json:"acceptEncoding" gorm:"size:255"`
	DNT            *string `json:"dnt" gorm:"column:dnt;size:8"`

	IsBot bool `json:"isBot" gorm:"not null;default:false"`

	// SearchParams все query-параметры запроса одной JSON-строкой.
	SearchParams *string `json:"searchParams"`

	RefererDomain *string `json:"refererDomain" gorm:"size:255"`
	RefererType   *string `json:"refererType" gorm:"index;size:16"`
	RefererSource *string `json:"refererSource" gorm:"size:255"`

	UTMSource   *string `json:"utmSource" gorm:"column:utm_source;size:255"`
	UTMMedium   *string `json:"utmMedium" gorm:"column:utm_medium;size:255"`
	UTMCampaign *string `json:"utmCampaign" gorm:"column:utm_campaign;size:255"`
	UTMTerm     *string `json:"utmTerm" gorm:"column:utm_term;size:255"`
	UTMContent  *string `json:"utmContent" gorm:"column:utm_content;size:255"`

	ClickedAt time.Time `json:"clickedAt" gorm:"index;not null"`
}
