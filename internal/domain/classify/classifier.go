package classify

import (
	"github.com/garyjia/trip-expenses/internal/domain/entity"
	"github.com/garyjia/trip-expenses/internal/domain/field"
)

// DefaultHomeCountry is the country whose trips are domestic
const DefaultHomeCountry = "Brasil"

// DefaultContinentalCountries are the regional destinations reported as continental
var DefaultContinentalCountries = []string{
	"Argentina",
	"Chile",
	"Peru",
	"Colômbia",
	"Venezuela",
	"Uruguai",
	"Paraguai",
	"Bolívia",
	"Equador",
}

// homeAliases maps well-known alternate spellings of the default home country
var homeAliases = map[string][]string{
	"brasil": {"brazil"},
}

// Classifier derives a trip type from a destination country
type Classifier struct {
	home        map[string]bool
	continental map[string]bool
}

// New creates a classifier. Empty arguments fall back to the defaults.
func New(homeCountry string, continental []string) *Classifier {
	if field.Fold(homeCountry) == "" {
		homeCountry = DefaultHomeCountry
	}
	if len(continental) == 0 {
		continental = DefaultContinentalCountries
	}

	c := &Classifier{
		home:        make(map[string]bool),
		continental: make(map[string]bool, len(continental)),
	}

	key := field.Fold(homeCountry)
	c.home[key] = true
	for _, alias := range homeAliases[key] {
		c.home[alias] = true
	}
	for _, name := range continental {
		c.continental[field.Fold(name)] = true
	}
	return c
}

// Default returns a classifier for trips originating in Brazil
func Default() *Classifier {
	return New(DefaultHomeCountry, nil)
}

// Classify returns the trip type for country. Unknown countries are intercontinental.
func (c *Classifier) Classify(country string) entity.TripType {
	key := field.Fold(country)
	switch {
	case c.home[key]:
		return entity.TripTypeDomestic
	case c.continental[key]:
		return entity.TripTypeContinental
	default:
		return entity.TripTypeIntercontinental
	}
}
