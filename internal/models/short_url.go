package models

import "time"

// SlugMaxLength максимальная длина слага короткой ссылки.
const SlugMaxLength = 64

// ShortURL модель правила сокращения. Слаг уникален и не меняется после
// создания. ClickCount монотонно растет и мутируется только рекордером кликов.
type ShortURL struct {
	ID          string  `json:"id" gorm:"primaryKey;size:36"`
	Slug        string  `json:"slug" gorm:"uniqueIndex;size:64;not null"`
	OriginalURL string  `json:"originalUrl" gorm:"size:2048;not null"`
	Title       *string `json:"title" gorm:"size:255"`
	Description *string `json:"description"`

	// Владелец либо пользователь, либо организация (ровно один из двух).
	UserID         *string `json:"userId" gorm:"index;size:36"`
	OrganizationID *string `json:"organizationId" gorm:"index;size:36"`

	IsActive  bool       `json:"isActive" gorm:"not null;default:true"`
	ExpiresAt *time.Time `json:"expiresAt"`
	Password  *string    `json:"-" gorm:"size:255"`
	MaxClicks *int       `json:"maxClicks"`

	ClickCount    int        `json:"clickCount" gorm:"not null;default:0"`
	LastClickedAt *time.Time `json:"lastClickedAt"`
	CreatedAt     time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	// UTM-метки по умолчанию. Подставляются в клик, если их нет в query.
	UTMSource   *string `json:"utmSource" gorm:"column:utm_source;size:255"`
	UTMMedium   *string `json:"utmMedium" gorm:"column:utm_medium;size:255"`
	UTMCampaign *string `json:"utmCampaign" gorm:"column:utm_campaign;size:255"`
	UTMTerm     *string `json:"utmTerm" gorm:"column:utm_term;size:255"`
	UTMContent  *string `json:"utmContent" gorm:"column:utm_content;size:255"`

	// Metadata хранит JSON-документ правил редиректа по странам.
	Metadata *string `json:"metadata"`

	Clicks []Click `json:"-" gorm:"foreignKey:ShortURLID;constraint:OnDelete:CASCADE"`
}
