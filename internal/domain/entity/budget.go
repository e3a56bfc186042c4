package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is a planned spend for one trip type in a given period.
// Month is zero for yearly budgets.
type Budget struct {
	ID           string          `json:"id"`
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	TripType     string          `json:"trip_type"`
	BudgetAmount decimal.Decimal `json:"budget_amount"`
	CreatedAt    time.Time       `json:"created_at"`
}

// UserRole distinguishes regular users from organization admins
type UserRole string

const (
	RoleRegular UserRole = "regular"
	RoleAdmin   UserRole = "admin"
)

// Principal is the authenticated caller of an operation
type Principal struct {
	UserID string
	Email  string
	Role   UserRole
}

// IsAdmin returns true for organization-wide viewers
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
