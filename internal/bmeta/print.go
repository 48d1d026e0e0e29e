package bmeta

import "fmt"

// defaultValue подставляется вместо незаполненных ldflags.
const defaultValue = "N/A"

// Print печатает версию, дату и коммит сборки при старте бинарника.
func Print(version, date, commit string) {
	rows := []struct {
		label string
		value string
	}{
		{"Build version", version},
		{"Build date", date},
		{"Build commit", commit},
	}
	for _, row := range rows {
		if row.value == "" {
			row.value = defaultValue
		}
		fmt.Printf("%s: %s\n", row.label, row.value) //nolint:forbidigo
	}
}
