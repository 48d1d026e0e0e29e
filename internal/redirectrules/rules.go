// Package redirectrules вычисляет целевой URL редиректа по хранимому в
// метаданных короткой ссылки JSON-документу правил и стране посетителя.
//
// Resolve никогда не возвращает ошибку: любая неоднозначность или битые
// метаданные деградируют к основному URL ссылки. Порядок приоритетов
// зафиксирован контрактом: точный код страны -> список стран -> "*" ->
// "default" -> основной URL.
package redirectrules

import (
	"encoding/json"
	"strings"
)

// Kind форма документа правил. Определяется один раз при парсинге.
type Kind int

const (
	// KindEmpty метаданных нет или в них нет правил.
	KindEmpty Kind = iota
	// KindMap карта код страны -> целевой URL.
	KindMap
	// KindRules массив правил со странами и целями.
	KindRules
)

// Rule одно правило из массива countryRedirects.
type Rule struct {
	Country   string   `json:"country,omitempty"`
	Countries []string `json:"countries,omitempty"`
	Target    string   `json:"target"`
}

// RuleSet разобранный документ правил.
type RuleSet struct {
	Kind    Kind
	Targets map[string]string // для KindMap
	Rules   []Rule            // для KindRules
	Default string            // top-level "default", если задан
}

// Match описывает сработавшее правило.
type Match struct {
	Key    string `json:"key,omitempty"`    // ключ карты ("US", "*", "default")
	Target string `json:"target"`           // выбранная цель
	Rule   *Rule  `json:"rule,omitempty"`   // правило из массива, если была форма KindRules
}

// Resolution итог вычисления.
type Resolution struct {
	Target  string
	Matched *Match
}

// rawDocument промежуточная форма для классификации документа.
type rawDocument struct {
	CountryRedirects json.RawMessage `json:"countryRedirects"`
	Default          string          `json:"default"`
}

// Parse классифицирует метаданные в один из вариантов RuleSet.
// Ошибка возвращается только на битом JSON; вызывающий логирует и
// деградирует к основному URL.
func Parse(metadata string) (*RuleSet, error) {
	if strings.TrimSpace(metadata) == "" {
		return &RuleSet{Kind: KindEmpty}, nil
	}

	var doc rawDocument
	if err := json.Unmarshal([]byte(metadata), &doc); err != nil {
		return nil, err
	}

	set := &RuleSet{Kind: KindEmpty, Default: doc.Default}

	if len(doc.CountryRedirects) > 0 {
		// Сначала пробуем вложенную карту, затем массив правил.
		var targets map[string]string
		if err := json.Unmarshal(doc.CountryRedirects, &targets); err == nil {
			set.Kind = KindMap
			set.Targets = targets
			return set, nil
		}
		var rules []Rule
		if err := json.Unmarshal(doc.CountryRedirects, &rules); err == nil {
			set.Kind = KindRules
			set.Rules = rules
			return set, nil
		}
		// countryRedirects есть, но форма неизвестна, остается только default.
		return set, nil
	}

	// Плоская карта на верхнем уровне: каждому ключу соответствует строка-цель.
	var flat map[string]string
	if err := json.Unmarshal([]byte(metadata), &flat); err == nil && len(flat) > 0 {
		set.Kind = KindMap
		set.Targets = flat
		return set, nil
	}

	return set, nil
}

// Resolve вычисляет целевой URL для страны посетителя. Сравнение кодов стран
// регистронезависимое. Детерминирована: одинаковые входы дают одинаковый
// результат.
func Resolve(primaryURL, metadata, countryCode string) Resolution {
	set, err := Parse(metadata)
	if err != nil {
		return Resolution{Target: primaryURL}
	}
	return set.Resolve(primaryURL, countryCode)
}

// Resolve применяет уже разобранный набор правил.
func (s *RuleSet) Resolve(primaryURL, countryCode string) Resolution {
	code := strings.ToUpper(strings.TrimSpace(countryCode))

	switch s.Kind {
	case KindMap:
		if res := resolveMap(s.Targets, code); res != nil {
			return *res
		}
	case KindRules:
		if res := resolveRules(s.Rules, code); res != nil {
			return *res
		}
	case KindEmpty:
	}

	if s.Default != "" {
		return Resolution{
			Target:  s.Default,
			Matched: &Match{Key: "default", Target: s.Default},
		}
	}
	return Resolution{Target: primaryURL}
}

func resolveMap(targets map[string]string, code string) *Resolution {
	// Точное совпадение по коду. Ключи карты нормализуем к верхнему регистру.
	if code != "" {
		for key, target := range targets {
			if strings.ToUpper(key) == code && target != "" {
				return &Resolution{Target: target, Matched: &Match{Key: code, Target: target}}
			}
		}
	}
	if target := targets["*"]; target != "" {
		return &Resolution{Target: target, Matched: &Match{Key: "*", Target: target}}
	}
	if target := targets["default"]; target != "" {
		return &Resolution{Target: target, Matched: &Match{Key: "default", Target: target}}
	}
	return nil
}

func resolveRules(rules []Rule, code string) *Resolution {
	// Первое правило с точным совпадением одиночной страны.
	if code != "" {
		for i := range rules {
			if strings.ToUpper(rules[i].Country) == code && rules[i].Target != "" {
				return &Resolution{Target: rules[i].Target, Matched: &Match{Target: rules[i].Target, Rule: &rules[i]}}
			}
		}
		// Затем первое правило, чей список стран содержит код.
		for i := range rules {
			for _, c := range rules[i].Countries {
				if strings.ToUpper(c) == code && rules[i].Target != "" {
					return &Resolution{Target: rules[i].Target, Matched: &Match{Target: rules[i].Target, Rule: &rules[i]}}
				}
			}
		}
	}
	// Затем wildcard-правило.
	for i := range rules {
		if rules[i].Country == "*" && rules[i].Target != "" {
			return &Resolution{Target: rules[i].Target, Matched: &Match{Target: rules[i].Target, Rule: &rules[i]}}
		}
	}
	return nil
}
