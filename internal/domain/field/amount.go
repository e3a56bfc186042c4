package field

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxFractionDigits is the precision of accepted currency amounts
const MaxFractionDigits = 2

var (
	currencySymbols = []string{"R$", "US$", "$", "€"}

	decimalPointOnly = regexp.MustCompile(`^\d+\.\d{1,2}$`)
	thousandsOnly    = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)
	plainAmount      = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
)

// ParseAmount validates a currency answer such as "R$ 1.234,56", "1200" or "0"
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	upper := strings.ToUpper(s)
	for _, sym := range currencySymbols {
		if strings.HasPrefix(upper, sym) {
			s = s[len(sym):]
			break
		}
	}
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' || r == '\t' {
			return -1
		}
		return r
	}, s)

	if s == "" {
		return decimal.Zero, reject(NameAmount, raw, "Informe um valor, por exemplo 1.234,56.")
	}
	if strings.HasPrefix(s, "-") {
		return decimal.Zero, reject(NameAmount, raw, "O valor não pode ser negativo.")
	}

	switch {
	case strings.Contains(s, ","):
		if strings.Count(s, ",") > 1 {
			return decimal.Zero, reject(NameAmount, raw, "Valor inválido. Use o formato 1.234,56.")
		}
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case decimalPointOnly.MatchString(s):
	case thousandsOnly.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
	}

	if !plainAmount.MatchString(s) {
		return decimal.Zero, reject(NameAmount, raw, "Valor inválido. Use apenas números, por exemplo 1.234,56.")
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, reject(NameAmount, raw, "Valor inválido. Use apenas números, por exemplo 1.234,56.")
	}
	return amount, nil
}

// FormatAmount renders an amount in Brazilian notation, e.g. "R$ 1.234,56"
func FormatAmount(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(MaxFractionDigits)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(intPart[i : i+3])
	}

	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + "R$ " + b.String() + "," + frac
}
