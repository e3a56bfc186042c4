package entity

import "github.com/shopspring/decimal"

// ExtractedTrip is the best-effort result of reading a free-text trip description.
// Values are candidates: TravelDate and CostCenter are raw captures that still
// need to pass the field validators before entering a TripDraft.
type ExtractedTrip struct {
	TravelDate         *string          `json:"trip_date"`
	DestinationCountry *string          `json:"destination_country"`
	DestinationCity    *string          `json:"destination_city"`
	TicketCost         *decimal.Decimal `json:"ticket_cost"`
	LodgingCost        *decimal.Decimal `json:"accommodation_cost"`
	DailyAllowance     *decimal.Decimal `json:"daily_allowances"`
	TripType           *TripType        `json:"trip_type"`
	CostCenter         *string          `json:"cost_center"`
}

// IsEmpty returns true when nothing usable was found
func (e *ExtractedTrip) IsEmpty() bool {
	return e.TravelDate == nil &&
		e.DestinationCountry == nil &&
		e.DestinationCity == nil &&
		e.TicketCost == nil &&
		e.LodgingCost == nil &&
		e.DailyAllowance == nil &&
		e.CostCenter == nil
}
