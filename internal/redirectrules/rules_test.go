package redirectrules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		metadata string
		wantKind Kind
		wantErr  bool
	}{
		{name: "empty string", metadata: "", wantKind: KindEmpty},
		{name: "empty object", metadata: "{}", wantKind: KindEmpty},
		{name: "flat map", metadata: `{"US": "https://us.example.com", "default": "https://example.com"}`, wantKind: KindMap},
		{
			name:     "countryRedirects object",
			metadata: `{"countryRedirects": {"DE": "https://de.example.com"}}`,
			wantKind: KindMap,
		},
		{
			name:     "countryRedirects array",
			metadata: `{"countryRedirects": [{"country": "FR", "target": "https://fr.example.com"}]}`,
			wantKind: KindRules,
		},
		{name: "malformed json", metadata: `{"US": `, wantErr: true},
		{name: "flat map with non-string value", metadata: `{"US": 42}`, wantKind: KindEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := Parse(tt.metadata)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, rs.Kind)
		})
	}
}

func TestResolve_MapForm(t *testing.T) {
	primary := "https://example.com"
	metadata := `{"US": "https://us.example.com", "de": "https://de.example.com", "*": "https://anywhere.example.com"}`

	tests := []struct {
		name    string
		country string
		want    string
	}{
		{name: "exact match", country: "US", want: "https://us.example.com"},
		{name: "case insensitive key", country: "DE", want: "https://de.example.com"},
		{name: "case insensitive code", country: "us", want: "https://us.example.com"},
		{name: "wildcard fallback", country: "FR", want: "https://anywhere.example.com"},
		{name: "no country hits wildcard", country: "", want: "https://anywhere.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(primary, metadata, tt.country)
			assert.Equal(t, tt.want, res.Target)
		})
	}
}

func TestResolve_MapForm_DefaultKey(t *testing.T) {
	metadata := `{"US": "https://us.example.com", "default": "https://fallback.example.com"}`

	res := Resolve("https://example.com", metadata, "JP")
	assert.Equal(t, "https://fallback.example.com", res.Target)
}

func TestResolve_RulesForm(t *testing.T) {
	primary := "https://example.com"
	metadata := `{"countryRedirects": [
		{"country": "US", "target": "https://us.example.com"},
		{"countries": ["DE", "FR"], "target": "https://eu.example.com"},
		{"country": "*", "target": "https://rest.example.com"}
	]}`

	tests := []struct {
		name    string
		country string
		want    string
	}{
		{name: "single country rule", country: "US", want: "https://us.example.com"},
		{name: "countries list rule", country: "FR", want: "https://eu.example.com"},
		{name: "lowercase code", country: "de", want: "https://eu.example.com"},
		{name: "wildcard rule", country: "BR", want: "https://rest.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(primary, metadata, tt.country)
			assert.Equal(t, tt.want, res.Target)
		})
	}
}

func TestResolve_FallsBackToPrimary(t *testing.T) {
	primary := "https://example.com"

	tests := []struct {
		name     string
		metadata string
		country  string
	}{
		{name: "no metadata", metadata: "", country: "US"},
		{name: "malformed metadata", metadata: `{"US": `, country: "US"},
		{name: "no matching rule", metadata: `{"US": "https://us.example.com"}`, country: "JP"},
		{name: "rules without wildcard", metadata: `{"countryRedirects": [{"country": "US", "target": "https://us.example.com"}]}`, country: "JP"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(primary, tt.metadata, tt.country)
			assert.Equal(t, primary, res.Target)
			assert.Nil(t, res.Matched)
		})
	}
}

func TestResolve_TopLevelDefaultWithRules(t *testing.T) {
	metadata := `{
		"default": "https://fallback.example.com",
		"countryRedirects": [{"country": "US", "target": "https://us.example.com"}]
	}`

	res := Resolve("https://example.com", metadata, "JP")
	assert.Equal(t, "https://fallback.example.com", res.Target)
}

func TestResolve_NeverPanics(t *testing.T) {
	inputs := []string{
		`null`, `[]`, `"string"`, `123`, `{"countryRedirects": "oops"}`,
		`{"countryRedirects": [null]}`, `{"countryRedirects": [{"target": ""}]}`,
	}
	for _, metadata := range inputs {
		assert.NotPanics(t, func() {
			res := Resolve("https://example.com", metadata, "US")
			assert.NotEmpty(t, res.Target)
		})
	}
}
