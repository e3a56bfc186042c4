package field

import (
	"errors"
	"fmt"
)

// ErrRejected is wrapped by every validator rejection
var ErrRejected = errors.New("input rejected")

// Field names used in rejections
const (
	NameTravelDate         = "travel_date"
	NameDestinationCountry = "destination_country"
	NameDestinationCity    = "destination_city"
	NameAmount             = "amount"
	NameCostCenter         = "cost_center"
)

// RejectedError describes why a raw answer could not become a typed field.
// Reason is user-facing text.
type RejectedError struct {
	Field  string
	Input  string
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s %q rejected: %s", e.Field, e.Input, e.Reason)
}

// Unwrap allows errors.Is(err, ErrRejected)
func (e *RejectedError) Unwrap() error {
	return ErrRejected
}

func reject(field, input, reason string) error {
	return &RejectedError{Field: field, Input: input, Reason: reason}
}

// Reason extracts the user-facing reason from a rejection, or returns err's message
func Reason(err error) string {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected.Reason
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
