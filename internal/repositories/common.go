package repositories

import "time"

// Scope граница видимости аналитических запросов. Если задана организация,
// выборка ограничивается ее ссылками, иначе ссылками пользователя.
// Сами механизмы аутентификации остаются заботой внешнего коллаборатора.
type Scope struct {
	UserID         *string
	OrganizationID *string
}

// ClickFilter фильтры листинга и экспорта кликов.
type ClickFilter struct {
	ShortURLID *string
	From       *time.Time
	To         *time.Time
	Country    *string
	Device     *string
}

// DayCount количество кликов за календарный день.
type DayCount struct {
	Day    string
	Clicks int64
}

// DimCount сгруппированный счетчик по одному измерению. Value остается nil
// для кликов без значения измерения, сервисный слой подставляет "(unknown)".
type DimCount struct {
	Value  *string
	Clicks int64
}

// RefererCount сгруппированный счетчик по домену и типу реферера.
type RefererCount struct {
	Domain *string
	Type   *string
	Clicks int64
}
