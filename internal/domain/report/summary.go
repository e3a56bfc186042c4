package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/garyjia/trip-expenses/internal/domain/entity"
)

// Unclassified groups trips with no trip type, cost center or valid date
const Unclassified = "Não informado"

var hundred = decimal.NewFromInt(100)

// Summary aggregates trips and budgets for the admin dashboard
type Summary struct {
	TripCount    int                        `json:"trip_count"`
	TotalCost    decimal.Decimal            `json:"total_cost"`
	TicketCost   decimal.Decimal            `json:"ticket_cost"`
	LodgingCost  decimal.Decimal            `json:"lodging_cost"`
	Allowance    decimal.Decimal            `json:"daily_allowance"`
	ByTripType   map[string]decimal.Decimal `json:"by_trip_type"`
	ByCostCenter map[string]decimal.Decimal `json:"by_cost_center"`
	ByMonth      map[string]decimal.Decimal `json:"by_month"`
	Budget       BudgetSummary              `json:"budget"`
	Comparison   []BudgetComparison         `json:"comparison"`
}

// BudgetSummary totals planned budgets
type BudgetSummary struct {
	Total      decimal.Decimal            `json:"total"`
	ByTripType map[string]decimal.Decimal `json:"by_trip_type"`
	ByYear     map[int]decimal.Decimal    `json:"by_year"`
}

// BudgetComparison is planned vs spent for one year and trip type
type BudgetComparison struct {
	Year        int             `json:"year"`
	TripType    string          `json:"trip_type"`
	Budget      decimal.Decimal `json:"budget"`
	Spent       decimal.Decimal `json:"spent"`
	Remaining   decimal.Decimal `json:"remaining"`
	Utilization decimal.Decimal `json:"utilization_pct"`
}

type yearType struct {
	year     int
	tripType string
}

// Summarize aggregates trips and budgets. Neither slice is modified.
func Summarize(trips []*entity.Trip, budgets []*entity.Budget) Summary {
	s := Summary{
		TripCount:    len(trips),
		ByTripType:   make(map[string]decimal.Decimal),
		ByCostCenter: make(map[string]decimal.Decimal),
		ByMonth:      make(map[string]decimal.Decimal),
		Budget:       SummarizeBudgets(budgets),
	}

	spent := make(map[yearType]decimal.Decimal)
	for _, t := range trips {
		total := t.Total()
		s.TotalCost = s.TotalCost.Add(total)
		s.TicketCost = s.TicketCost.Add(orZero(t.CostTickets))
		s.LodgingCost = s.LodgingCost.Add(orZero(t.CostLodging))
		s.Allowance = s.Allowance.Add(orZero(t.CostDailyAllowances))

		tripType := labelOf(t.TripType)
		add(s.ByTripType, tripType, total)
		add(s.ByCostCenter, labelOf(t.CostCenter), total)

		if d, ok := travelDate(t); ok {
			add(s.ByMonth, d.Time().Format("2006-01"), total)
			key := yearType{d.Year(), tripType}
			spent[key] = spent[key].Add(total)
		} else {
			add(s.ByMonth, Unclassified, total)
		}
	}

	planned := make(map[yearType]decimal.Decimal)
	for _, b := range budgets {
		key := yearType{b.Year, b.TripType}
		planned[key] = planned[key].Add(b.BudgetAmount)
	}

	for key, budget := range planned {
		used := spent[key]
		c := BudgetComparison{
			Year:      key.year,
			TripType:  key.tripType,
			Budget:    budget,
			Spent:     used,
			Remaining: budget.Sub(used),
		}
		if budget.IsPositive() {
			c.Utilization = used.Mul(hundred).Div(budget).Round(2)
		}
		s.Comparison = append(s.Comparison, c)
	}
	sort.Slice(s.Comparison, func(i, j int) bool {
		if s.Comparison[i].Year != s.Comparison[j].Year {
			return s.Comparison[i].Year < s.Comparison[j].Year
		}
		return s.Comparison[i].TripType < s.Comparison[j].TripType
	})

	return s
}

// SummarizeBudgets totals budgets overall, per trip type and per year
func SummarizeBudgets(budgets []*entity.Budget) BudgetSummary {
	bs := BudgetSummary{
		ByTripType: make(map[string]decimal.Decimal),
		ByYear:     make(map[int]decimal.Decimal),
	}
	for _, b := range budgets {
		bs.Total = bs.Total.Add(b.BudgetAmount)
		add(bs.ByTripType, b.TripType, b.BudgetAmount)
		bs.ByYear[b.Year] = bs.ByYear[b.Year].Add(b.BudgetAmount)
	}
	return bs
}

func travelDate(t *entity.Trip) (entity.Date, bool) {
	if t.TravelDate == nil {
		return entity.Date{}, false
	}
	d, err := entity.ParseCanonicalDate(*t.TravelDate)
	if err != nil {
		return entity.Date{}, false
	}
	return d, true
}

func labelOf(s *string) string {
	if s == nil || *s == "" {
		return Unclassified
	}
	return *s
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func add(m map[string]decimal.Decimal, key string, v decimal.Decimal) {
	m[key] = m[key].Add(v)
}
