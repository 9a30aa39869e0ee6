// Package safeinput limpia y valida el texto que llega del usuario antes de
// usarlo en una consulta o una mutación. Ninguna función devuelve error: un
// valor inválido se descarta con ok == false.
package safeinput

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxTextInputLength = 64
	MaxURLLength       = 2048

	// MinCarYear es el año del primer automóvil patentado.
	MinCarYear = 1886

	// maxSafeInteger replica el límite de enteros exactos en un float64.
	maxSafeInteger = 1<<53 - 1
)

var (
	SortKeys       = []string{"make", "model", "year", "color"}
	SortDirections = []string{"asc", "desc"}
)

var optionalIntPattern = regexp.MustCompile(`^[+-]?\d+$`)

// stripControlChars elimina los caracteres de control ASCII (<= 31 y 127).
func stripControlChars(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if r <= 31 || r == 127 {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func truncate(value string, maxLength int) string {
	if maxLength < 0 {
		maxLength = 0
	}
	if utf8.RuneCountInString(value) <= maxLength {
		return value
	}
	runes := []rune(value)
	return string(runes[:maxLength])
}

// SanitizeText quita caracteres de control y recorta a maxLength caracteres.
// No escapa nada más: mostrarlo de forma segura es cosa de quien lo pinta.
func SanitizeText(value string, maxLength int) string {
	return truncate(stripControlChars(value), maxLength)
}

// SanitizeTextDefault aplica SanitizeText con MaxTextInputLength.
func SanitizeTextDefault(value string) string {
	return SanitizeText(value, MaxTextInputLength)
}

// SanitizeDigits deja solo dígitos ASCII y recorta a maxLength.
func SanitizeDigits(value string, maxLength int) string {
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		if c := value[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return truncate(b.String(), maxLength)
}

// MaxCarYear es el último año aceptado: el siguiente al actual (modelos del año próximo).
func MaxCarYear(now time.Time) int {
	return now.Year() + 1
}

// ValidCarYear indica si year cae en [MinCarYear, año actual + 1].
func ValidCarYear(year int, now time.Time) bool {
	return year >= MinCarYear && year <= MaxCarYear(now)
}

// ParseCarYear extrae un año de cuatro dígitos válido de value.
func ParseCarYear(value string) (int, bool) {
	return ParseCarYearAt(value, time.Now())
}

// ParseCarYearAt es ParseCarYear con el reloj inyectado.
func ParseCarYearAt(value string, now time.Time) (int, bool) {
	digits := SanitizeDigits(value, 4)
	if len(digits) != 4 {
		return 0, false
	}
	year, err := strconv.Atoi(digits)
	if err != nil || !ValidCarYear(year, now) {
		return 0, false
	}
	return year, true
}

// ParseOptionalInt convierte texto libre en entero. Vacío o inválido => ok == false.
func ParseOptionalInt(value string) (int64, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || !optionalIntPattern.MatchString(trimmed) {
		return 0, false
	}
	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, false
	}
	if n > maxSafeInteger || n < -maxSafeInteger {
		return 0, false
	}
	return n, true
}

// SanitizeHTTPURL acepta solo URLs http/https sin credenciales y devuelve la
// forma normalizada (esquema y host en minúsculas, "/" como ruta mínima).
func SanitizeHTTPURL(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || len(trimmed) > MaxURLLength {
		return "", false
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", false
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", false
	}
	// http y https admiten "http:/x" y "http:x": las barras que faltan se reponen.
	if u.Host == "" {
		rest := strings.TrimLeft(trimmed[len(u.Scheme)+1:], `/\`)
		if u, err = url.Parse(scheme + "://" + rest); err != nil {
			return "", false
		}
	}
	if u.User != nil {
		if _, hasPass := u.User.Password(); u.User.Username() != "" || hasPass {
			return "", false
		}
		u.User = nil
	}
	if u.Opaque != "" || u.Host == "" {
		return "", false
	}

	u.Scheme = scheme
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" && u.RawPath == "" {
		u.Path = "/"
	}
	return u.String(), true
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// IsValidSortKey comprueba pertenencia a {make, model, year, color}.
func IsValidSortKey(value string) bool {
	return contains(SortKeys, value)
}

// IsValidSortDirection comprueba pertenencia a {asc, desc}.
func IsValidSortDirection(value string) bool {
	return contains(SortDirections, value)
}
