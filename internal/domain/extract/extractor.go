package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/garyjia/trip-expenses/internal/domain/classify"
	"github.com/garyjia/trip-expenses/internal/domain/entity"
	"github.com/garyjia/trip-expenses/internal/domain/field"
)

type costSlot int

const (
	slotNone costSlot = iota
	slotTicket
	slotLodging
	slotAllowance
)

var slotKeywords = map[costSlot][]string{
	slotTicket:    {"passagem", "passagens", "ticket", "voo", "aereo", "aerea"},
	slotLodging:   {"hotel", "hospedagem", "acomodacao", "pousada", "airbnb"},
	slotAllowance: {"diaria", "alimentacao", "refeicao", "refeicoes"},
}

var (
	moneyPattern      = regexp.MustCompile(`(?:us\$|r\$|€)\s*(?:\d{1,3}(?:\.\d{3})+(?:,\d{1,2})?|\d+(?:,\d{1,2})?)`)
	separatorPattern  = regexp.MustCompile(`[,;\n]| e `)
	costCenterPattern = regexp.MustCompile(`centro de custos?\s*(?:[:=-]\s*|e\s+|do\s+|de\s+)?([a-z][a-z0-9-]*)`)
)

// Extractor reads trip fields out of a single free-text message without any remote call.
// It holds only immutable lookup tables, so one instance can serve concurrent sessions.
type Extractor struct {
	classifier     *classify.Classifier
	datePatterns   []*regexp.Regexp
	cityPattern    *regexp.Regexp
	cities         map[string]Place
	countryPattern *regexp.Regexp
	countries      map[string]string
}

// New creates an extractor over the given gazetteer. Nil tables use the defaults.
func New(classifier *classify.Classifier, cities []Place, countries []string) *Extractor {
	if classifier == nil {
		classifier = classify.Default()
	}
	if cities == nil {
		cities = DefaultCities
	}
	if countries == nil {
		countries = DefaultCountries
	}

	e := &Extractor{
		classifier: classifier,
		cities:     make(map[string]Place, len(cities)),
		countries:  make(map[string]string, len(countries)),
	}

	months := strings.Join(field.MonthNames(), "|")
	e.datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}\b`),
		regexp.MustCompile(`\b\d{4}-\d{1,2}-\d{1,2}\b`),
		regexp.MustCompile(`\b\d{1,2}\s+de\s+(?:` + months + `)(?:\s+de\s+\d{4})?\b`),
		regexp.MustCompile(`\b(?:` + months + `)(?:\s+de)?\s+\d{4}\b`),
		regexp.MustCompile(`\b\d{1,2}/\d{1,2}\b`),
	}

	cityKeys := make([]string, 0, len(cities))
	for _, p := range cities {
		key := field.Fold(p.City)
		if _, dup := e.cities[key]; !dup {
			cityKeys = append(cityKeys, key)
		}
		e.cities[key] = p
	}
	e.cityPattern = alternation(cityKeys)

	countryKeys := make([]string, 0, len(countries))
	for _, c := range countries {
		key := field.Fold(c)
		if _, dup := e.countries[key]; !dup {
			countryKeys = append(countryKeys, key)
		}
		e.countries[key] = c
	}
	e.countryPattern = alternation(countryKeys)

	return e
}

// alternation builds a word-bounded pattern that prefers the longest key at any position
func alternation(keys []string) *regexp.Regexp {
	if len(keys) == 0 {
		return nil
	}
	sorted := append([]string(nil), keys...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	quoted := make([]string, len(sorted))
	for i, k := range sorted {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// Extract returns every field it can find in text. Fields not found stay nil.
func (e *Extractor) Extract(text string) entity.ExtractedTrip {
	var out entity.ExtractedTrip
	folded := field.Fold(text)
	if folded == "" {
		return out
	}

	for _, p := range e.datePatterns {
		if m := p.FindString(folded); m != "" {
			out.TravelDate = &m
			break
		}
	}

	e.extractPlace(folded, &out)
	e.extractCosts(folded, &out)

	if m := costCenterPattern.FindStringSubmatch(folded); m != nil {
		cc := strings.ToUpper(m[1])
		out.CostCenter = &cc
	}

	if out.DestinationCountry != nil {
		tt := e.classifier.Classify(*out.DestinationCountry)
		out.TripType = &tt
	}

	return out
}

func (e *Extractor) extractPlace(folded string, out *entity.ExtractedTrip) {
	if e.cityPattern != nil {
		if m := e.cityPattern.FindString(folded); m != "" {
			place := e.cities[m]
			city, country := place.City, place.Country
			out.DestinationCity = &city
			out.DestinationCountry = &country
			return
		}
	}
	if e.countryPattern != nil {
		if m := e.countryPattern.FindString(folded); m != "" {
			country := e.countries[m]
			out.DestinationCountry = &country
		}
	}
}

type moneyMatch struct {
	value    decimal.Decimal
	leading  string
	trailing string
}

func (e *Extractor) extractCosts(folded string, out *entity.ExtractedTrip) {
	locs := moneyPattern.FindAllStringIndex(folded, -1)
	if len(locs) == 0 {
		return
	}

	matches := make([]moneyMatch, 0, len(locs))
	for i, loc := range locs {
		value, err := field.ParseAmount(folded[loc[0]:loc[1]])
		if err != nil {
			continue
		}

		m := moneyMatch{value: value}
		if i == 0 {
			m.leading = folded[:loc[0]]
		} else {
			_, m.leading = splitGap(folded[locs[i-1][1]:loc[0]])
		}
		if i == len(locs)-1 {
			m.trailing = folded[loc[1]:]
		} else {
			m.trailing, _ = splitGap(folded[loc[1]:locs[i+1][0]])
		}
		matches = append(matches, m)
	}

	slots := map[costSlot]**decimal.Decimal{
		slotTicket:    &out.TicketCost,
		slotLodging:   &out.LodgingCost,
		slotAllowance: &out.DailyAllowance,
	}

	var unassigned []decimal.Decimal
	for _, m := range matches {
		slot := classifySlot(m)
		if slot != slotNone && *slots[slot] == nil {
			v := m.value
			*slots[slot] = &v
			continue
		}
		unassigned = append(unassigned, m.value)
	}

	for _, v := range unassigned {
		for _, slot := range []costSlot{slotTicket, slotLodging, slotAllowance} {
			if *slots[slot] == nil {
				value := v
				*slots[slot] = &value
				break
			}
		}
	}
}

// splitGap divides the text between two amounts at its last separator.
// The part up to the separator trails the earlier amount; the rest leads the later one.
func splitGap(gap string) (trailing, leading string) {
	locs := separatorPattern.FindAllStringIndex(gap, -1)
	if len(locs) == 0 {
		return "", gap
	}
	last := locs[len(locs)-1]
	return gap[:last[0]], gap[last[1]:]
}

// classifySlot picks the keyword closest to the amount, looking backwards first
func classifySlot(m moneyMatch) costSlot {
	best, bestPos := slotNone, -1
	for slot, words := range slotKeywords {
		for _, w := range words {
			if i := strings.LastIndex(m.leading, w); i > bestPos {
				best, bestPos = slot, i
			}
		}
	}
	if best != slotNone {
		return best
	}

	bestPos = len(m.trailing) + 1
	for slot, words := range slotKeywords {
		for _, w := range words {
			if i := strings.Index(m.trailing, w); i >= 0 && i < bestPos {
				best, bestPos = slot, i
			}
		}
	}
	return best
}
