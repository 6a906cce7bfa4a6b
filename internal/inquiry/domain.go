// Package inquiry records customer inquiries and notifies the people who
// should follow them up.
package inquiry

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// ErrCustomerNotFound indicates no customer matched the lookup.
var ErrCustomerNotFound = errors.New("customer not found")

// Inquiry is a submitted customer inquiry.
type Inquiry struct {
	ID         int64
	Name       string
	Email      string
	Subject    string
	Message    string
	CustomerID *int64
	CreatedAt  time.Time
}

// Customer is the subset of customer data needed to route an inquiry.
type Customer struct {
	ID            int64
	SalesRepEmail string
}

// SubmitRequest is the POST body of the inquiry endpoint.
type SubmitRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Email       string `json:"email" validate:"required,email,max=320"`
	Subject     string `json:"subject" validate:"required,max=200"`
	Message     string `json:"message" validate:"required,max=4000"`
	CustomerRef *int64 `json:"customerRef,omitempty" validate:"omitempty,gt=0"`
}

// NormalizeEmail trims and case-folds an address for comparison.
func NormalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}
