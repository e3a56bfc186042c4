package field

import (
	"strings"
	"unicode/utf8"
)

// MinTextLength is the shortest accepted country or city answer
const MinTextLength = 2

// ParseText validates a free-text answer such as a country or city name
func ParseText(name, raw string) (string, error) {
	s := strings.Join(strings.Fields(raw), " ")
	if utf8.RuneCountInString(s) < MinTextLength {
		return "", reject(name, raw, "Informe pelo menos 2 caracteres.")
	}
	return s, nil
}

// ParseCountry validates a destination country answer
func ParseCountry(raw string) (string, error) {
	return ParseText(NameDestinationCountry, raw)
}

// ParseCity validates a destination city answer
func ParseCity(raw string) (string, error) {
	return ParseText(NameDestinationCity, raw)
}
