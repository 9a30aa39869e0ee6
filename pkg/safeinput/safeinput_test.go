package safeinput

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "ab", SanitizeText("a\u0000b", MaxTextInputLength))
	assert.Equal(t, "ab", SanitizeText("a\u007fb", MaxTextInputLength))
	assert.Equal(t, "tab", SanitizeText("t\ta\nb\r", MaxTextInputLength))
	assert.Equal(t, "abc", SanitizeText("abcdef", 3))
	assert.Equal(t, "ñandú", SanitizeText("ñandú", 5), "cuenta caracteres, no bytes")
	assert.Equal(t, "", SanitizeText("abc", 0))

	long := strings.Repeat("x", 100)
	assert.Len(t, SanitizeTextDefault(long), MaxTextInputLength)
}

func TestSanitizeDigits(t *testing.T) {
	assert.Equal(t, "2024", SanitizeDigits("20-24", 4))
	assert.Equal(t, "2024", SanitizeDigits("a2b0c2d4e5", 4))
	assert.Equal(t, "", SanitizeDigits("abcd", 4))
}

func TestParseCarYear(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		want  int
		ok    bool
	}{
		{"año normal", "2024", 2024, true},
		{"primer automóvil", "1886", 1886, true},
		{"año siguiente permitido", "2026", 2026, true},
		{"dos años en el futuro", "2027", 0, false},
		{"ceros", "0000", 0, false},
		{"letras", "abcd", 0, false},
		{"antes de 1886", "1885", 0, false},
		{"menos de cuatro dígitos", "999", 0, false},
		{"con basura se limpia", " 2 0 2 4 ", 2024, true},
		{"se recorta a cuatro dígitos", "202499", 2024, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCarYearAt(tt.input, now)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCarYear_RelojReal(t *testing.T) {
	current := time.Now().Year()

	_, ok := ParseCarYear(strconv.Itoa(current + 2))
	assert.False(t, ok)

	year, ok := ParseCarYear(strconv.Itoa(current))
	assert.True(t, ok)
	assert.Equal(t, current, year)
}

func TestParseOptionalInt(t *testing.T) {
	tests := []struct {
		input string
		want  int64
		ok    bool
	}{
		{"", 0, false},
		{"   ", 0, false},
		{"2024", 2024, true},
		{" 2024 ", 2024, true},
		{"+7", 7, true},
		{"-7", -7, true},
		{"20.5", 0, false},
		{"1e3", 0, false},
		{"12a", 0, false},
		{"9007199254740991", 9007199254740991, true},
		{"9007199254740992", 0, false},
		{"99999999999999999999999", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseOptionalInt(tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestSanitizeHTTPURL(t *testing.T) {
	got, ok := SanitizeHTTPURL("https://example.com/a.png")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/a.png", got)

	got, ok = SanitizeHTTPURL("  HTTP://Example.COM  ")
	assert.True(t, ok)
	assert.Equal(t, "http://example.com/", got)

	got, ok = SanitizeHTTPURL("https://cdn.example.com/img.jpg?width=300")
	assert.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/img.jpg?width=300", got)

	// Userinfo vacío y barras ausentes se normalizan en vez de rechazarse.
	lenient := map[string]string{
		"https://@x":    "https://x/",
		"http:/x":       "http://x/",
		"http:x/a.png":  "http://x/a.png",
		"HTTPS:///Host": "https://host/",
	}
	for raw, want := range lenient {
		got, ok := SanitizeHTTPURL(raw)
		assert.True(t, ok, "debería aceptar %q", raw)
		assert.Equal(t, want, got, raw)
	}

	rejected := []string{
		"",
		"http:",
		"https://:secret@x",
		"   ",
		"javascript:alert(1)",
		"ftp://x",
		"https://user:pass@x",
		"https://user@x",
		"data:image/png;base64,AAAA",
		"not a url",
		"https://" + strings.Repeat("a", MaxURLLength) + ".com",
	}
	for _, raw := range rejected {
		_, ok := SanitizeHTTPURL(raw)
		assert.False(t, ok, "debería rechazar %q", raw)
	}
}

func TestSortValidation(t *testing.T) {
	for _, key := range []string{"make", "model", "year", "color"} {
		assert.True(t, IsValidSortKey(key))
	}
	assert.False(t, IsValidSortKey("price"))
	assert.False(t, IsValidSortKey("Make"))

	assert.True(t, IsValidSortDirection("asc"))
	assert.True(t, IsValidSortDirection("desc"))
	assert.False(t, IsValidSortDirection("DESC"))
	assert.False(t, IsValidSortDirection(""))
}
