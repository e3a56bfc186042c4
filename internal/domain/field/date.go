package field

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/garyjia/trip-expenses/internal/domain/entity"
)

// twoDigitYearPivot splits two-digit years: below it is 20yy, otherwise 19yy
const twoDigitYearPivot = 50

const dateFormatsHint = "Use DD/MM/AAAA, DD/MM/AA ou AAAA-MM-DD."

var (
	dayMonthLongYear  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	dayMonthShortYear = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2})$`)
	isoDate           = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)

	dayMonthOnly    = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})$`)
	dayMonthDashed  = regexp.MustCompile(`^\d{1,2}[-.]\d{1,2}[-.]\d{2,4}$`)
	dayOfMonthName  = regexp.MustCompile(`^(\d{1,2})\s+de\s+([a-z]+)(?:\s+de\s+(\d{4}))?$`)
	monthNameOfYear = regexp.MustCompile(`^([a-z]+)(?:\s+de)?\s+(\d{4})$`)
)

var monthNames = map[string]time.Month{
	"janeiro":   time.January,
	"fevereiro": time.February,
	"marco":     time.March,
	"abril":     time.April,
	"maio":      time.May,
	"junho":     time.June,
	"julho":     time.July,
	"agosto":    time.August,
	"setembro":  time.September,
	"outubro":   time.October,
	"novembro":  time.November,
	"dezembro":  time.December,
}

var monthAbbreviations = map[string]time.Month{
	"jan": time.January,
	"fev": time.February,
	"mar": time.March,
	"abr": time.April,
	"mai": time.May,
	"jun": time.June,
	"jul": time.July,
	"ago": time.August,
	"set": time.September,
	"out": time.October,
	"nov": time.November,
	"dez": time.December,
}

func lookupMonth(name string) (time.Month, bool) {
	if m, ok := monthNames[name]; ok {
		return m, true
	}
	m, ok := monthAbbreviations[name]
	return m, ok
}

// MonthNames returns the full Portuguese month names, accent-folded
func MonthNames() []string {
	names := make([]string, 0, len(monthNames))
	for name := range monthNames {
		names = append(names, name)
	}
	return names
}

// ParseDate validates a travel date answer in DD/MM/YYYY, DD/MM/YY or YYYY-MM-DD
func ParseDate(raw string) (entity.Date, error) {
	s := strings.TrimSpace(raw)

	var day, month, year string
	switch {
	case dayMonthLongYear.MatchString(s):
		m := dayMonthLongYear.FindStringSubmatch(s)
		day, month, year = m[1], m[2], m[3]
	case dayMonthShortYear.MatchString(s):
		m := dayMonthShortYear.FindStringSubmatch(s)
		yy, _ := strconv.Atoi(m[3])
		if yy < twoDigitYearPivot {
			yy += 2000
		} else {
			yy += 1900
		}
		day, month, year = m[1], m[2], strconv.Itoa(yy)
	case isoDate.MatchString(s):
		m := isoDate.FindStringSubmatch(s)
		year, month, day = m[1], m[2], m[3]
	default:
		return entity.Date{}, reject(NameTravelDate, raw, "Formato de data inválido. "+dateFormatsHint)
	}

	y, _ := strconv.Atoi(year)
	mo, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	return buildDate(raw, y, mo, d)
}

// ParseLooseDate accepts everything ParseDate does plus the shapes found in free text:
// "D-M-Y", "D/M", "D de <mês> [de YYYY]" and "<mês> [de] YYYY". Missing years come from ref;
// a missing day is the first of the month.
func ParseLooseDate(raw string, ref time.Time) (entity.Date, error) {
	if d, err := ParseDate(raw); err == nil {
		return d, nil
	}

	s := strings.Join(strings.Fields(Fold(raw)), " ")

	if dayMonthDashed.MatchString(s) {
		return ParseDate(strings.NewReplacer("-", "/", ".", "/").Replace(s))
	}

	if m := dayMonthOnly.FindStringSubmatch(s); m != nil {
		d, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		return buildDate(raw, ref.Year(), mo, d)
	}

	if m := dayOfMonthName.FindStringSubmatch(s); m != nil {
		month, ok := lookupMonth(m[2])
		if !ok {
			return entity.Date{}, reject(NameTravelDate, raw, "Mês desconhecido. "+dateFormatsHint)
		}
		d, _ := strconv.Atoi(m[1])
		y := ref.Year()
		if m[3] != "" {
			y, _ = strconv.Atoi(m[3])
		}
		return buildDate(raw, y, int(month), d)
	}

	if m := monthNameOfYear.FindStringSubmatch(s); m != nil {
		month, ok := lookupMonth(m[1])
		if !ok {
			return entity.Date{}, reject(NameTravelDate, raw, "Mês desconhecido. "+dateFormatsHint)
		}
		y, _ := strconv.Atoi(m[2])
		return buildDate(raw, y, int(month), 1)
	}

	return entity.Date{}, reject(NameTravelDate, raw, "Formato de data inválido. "+dateFormatsHint)
}

func buildDate(raw string, year, month, day int) (entity.Date, error) {
	if month < 1 || month > 12 {
		return entity.Date{}, reject(NameTravelDate, raw, "Mês deve estar entre 1 e 12.")
	}
	if day < 1 || day > 31 {
		return entity.Date{}, reject(NameTravelDate, raw, "Dia deve estar entre 1 e 31.")
	}

	date := entity.NewDate(year, time.Month(month), day)
	if date.Time().Day() != day {
		return entity.Date{}, reject(NameTravelDate, raw, "Essa data não existe no calendário.")
	}
	return date, nil
}
