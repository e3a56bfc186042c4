package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TripType is the reporting category of a trip, derived from its destination country
type TripType string

// Trip type labels as stored by the backend
const (
	TripTypeDomestic         TripType = "Nacional"
	TripTypeContinental      TripType = "Continental"
	TripTypeIntercontinental TripType = "Intercontinental"
)

// String returns the string representation of the trip type
func (t TripType) String() string {
	return string(t)
}

// IsValid returns true if the trip type is one of the defined constants
func (t TripType) IsValid() bool {
	switch t {
	case TripTypeDomestic, TripTypeContinental, TripTypeIntercontinental:
		return true
	default:
		return false
	}
}

// TripDraft accumulates the fields of one in-progress trip entry.
// A nil field has not been collected yet; a non-nil field has passed its validator.
type TripDraft struct {
	TravelDate         *Date            `json:"travel_date"`
	DestinationCountry *string          `json:"destination_country"`
	DestinationCity    *string          `json:"destination_city"`
	TicketCost         *decimal.Decimal `json:"ticket_cost"`
	LodgingCost        *decimal.Decimal `json:"lodging_cost"`
	DailyAllowance     *decimal.Decimal `json:"daily_allowance"`
	TripType           *TripType        `json:"trip_type"`
	CostCenter         *CostCenter      `json:"cost_center"`
}

// IsEmpty returns true when no field has been collected
func (d *TripDraft) IsEmpty() bool {
	return d.TravelDate == nil &&
		d.DestinationCountry == nil &&
		d.DestinationCity == nil &&
		d.TicketCost == nil &&
		d.LodgingCost == nil &&
		d.DailyAllowance == nil &&
		d.TripType == nil &&
		d.CostCenter == nil
}

// IsComplete returns true when every collectable field is present.
// TripType is derived from the country and is not checked separately.
func (d *TripDraft) IsComplete() bool {
	return d.TravelDate != nil &&
		d.DestinationCountry != nil &&
		d.DestinationCity != nil &&
		d.TicketCost != nil &&
		d.LodgingCost != nil &&
		d.DailyAllowance != nil &&
		d.CostCenter != nil
}

// Total returns the sum of all present cost fields
func (d *TripDraft) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range []*decimal.Decimal{d.TicketCost, d.LodgingCost, d.DailyAllowance} {
		if v != nil {
			total = total.Add(*v)
		}
	}
	return total
}

// Clone returns a deep copy so transcript entries never alias the live draft
func (d *TripDraft) Clone() *TripDraft {
	if d == nil {
		return nil
	}
	c := &TripDraft{}
	if d.TravelDate != nil {
		v := *d.TravelDate
		c.TravelDate = &v
	}
	c.DestinationCountry = cloneString(d.DestinationCountry)
	c.DestinationCity = cloneString(d.DestinationCity)
	c.TicketCost = cloneDecimal(d.TicketCost)
	c.LodgingCost = cloneDecimal(d.LodgingCost)
	c.DailyAllowance = cloneDecimal(d.DailyAllowance)
	if d.TripType != nil {
		v := *d.TripType
		c.TripType = &v
	}
	if d.CostCenter != nil {
		v := *d.CostCenter
		c.CostCenter = &v
	}
	return c
}

// ToInsertPayload builds the backend insert payload for the given owner
func (d *TripDraft) ToInsertPayload(ownerID string) TripInsertPayload {
	p := TripInsertPayload{
		UserID:              ownerID,
		DestinationCountry:  d.DestinationCountry,
		DestinationCity:     d.DestinationCity,
		CostTickets:         cloneDecimal(d.TicketCost),
		CostLodging:         cloneDecimal(d.LodgingCost),
		CostDailyAllowances: cloneDecimal(d.DailyAllowance),
	}
	if d.TravelDate != nil {
		s := d.TravelDate.String()
		p.TravelDate = &s
	}
	if d.CostCenter != nil {
		s := d.CostCenter.String()
		p.CostCenter = &s
	}
	if d.TripType != nil {
		s := d.TripType.String()
		p.TripType = &s
	}
	return p
}

// TripInsertPayload is the row shape the persistence backend expects for a new trip
type TripInsertPayload struct {
	UserID              string           `json:"user_id"`
	TravelDate          *string          `json:"travel_date"`
	DestinationCountry  *string          `json:"destination_country"`
	DestinationCity     *string          `json:"destination_city"`
	CostTickets         *decimal.Decimal `json:"cost_tickets"`
	CostLodging         *decimal.Decimal `json:"cost_lodging"`
	CostDailyAllowances *decimal.Decimal `json:"cost_daily_allowances"`
	CostCenter          *string          `json:"cost_center"`
	TripType            *string          `json:"trip_type"`
}

// Trip represents a persisted trip record owned by the backend
type Trip struct {
	ID                  string           `json:"id"`
	UserID              string           `json:"user_id"`
	TravelDate          *string          `json:"travel_date"`
	DestinationCountry  *string          `json:"destination_country"`
	DestinationCity     *string          `json:"destination_city"`
	CostTickets         *decimal.Decimal `json:"cost_tickets"`
	CostLodging         *decimal.Decimal `json:"cost_lodging"`
	CostDailyAllowances *decimal.Decimal `json:"cost_daily_allowances"`
	CostCenter          *string          `json:"cost_center"`
	TripType            *string          `json:"trip_type"`
	CreatedAt           time.Time        `json:"created_at"`
}

// Total returns ticket + lodging + allowance, treating missing costs as zero
func (t *Trip) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range []*decimal.Decimal{t.CostTickets, t.CostLodging, t.CostDailyAllowances} {
		if v != nil {
			total = total.Add(*v)
		}
	}
	return total
}

// TripFilter narrows trip listings. Empty fields do not filter.
type TripFilter struct {
	UserID     string
	TripType   string
	CostCenter string
	From       *Date
	To         *Date
	Limit      int
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
