// Package sales serves read-only sales order lookups for restlet callers.
package sales

import (
	"errors"

	"github.com/shopspring/decimal"
)

// OpenStatuses are the order statuses returned by ListOpen.
var OpenStatuses = []string{"PENDING_APPROVAL", "PENDING_FULFILLMENT", "PENDING_BILLING"}

// OpenOrderLimit caps the number of orders returned by ListOpen.
const OpenOrderLimit = 10

// ErrNotFound indicates the sales order does not exist.
var ErrNotFound = errors.New("sales order not found")

// OrderSummary is one row of the open order listing.
type OrderSummary struct {
	InternalID     string          `json:"internalId"`
	DocumentNumber string          `json:"documentNumber"`
	Date           string          `json:"date"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
}

// OrderItem is an item line of a sales order.
type OrderItem struct {
	ItemName    string          `json:"itemName"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	GrossAmount decimal.Decimal `json:"grossAmount"`
}

// OrderDetail is a sales order with its item lines.
type OrderDetail struct {
	OrderSummary
	Items []OrderItem `json:"items"`
}
