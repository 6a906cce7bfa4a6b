package fulfillment

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus mirrors the sales order lifecycle stored alongside orders.
type OrderStatus string

const (
	OrderStatusPendingApproval    OrderStatus = "PENDING_APPROVAL"
	OrderStatusPendingFulfillment OrderStatus = "PENDING_FULFILLMENT"
	OrderStatusPendingBilling     OrderStatus = "PENDING_BILLING"
	OrderStatusClosed             OrderStatus = "CLOSED"
)

// Order is the source sales order. The service never mutates it.
type Order struct {
	ID             string
	DocumentNumber string
	TranDate       time.Time
	Status         OrderStatus
	Lines          []OrderLine
}

// OrderLine is a single item line of a sales order.
type OrderLine struct {
	ItemID   string
	ItemName string
	Quantity decimal.Decimal
	Rate     decimal.Decimal
	Location string
}

// Amount returns quantity times rate.
func (l OrderLine) Amount() decimal.Decimal {
	return l.Quantity.Mul(l.Rate)
}

// Fulfillment is an item fulfillment derived from a sales order.
// The number of lines is fixed when the draft is transformed.
type Fulfillment struct {
	ID            string
	SourceOrderID string
	TranDate      time.Time
	PostingPeriod string
	Memo          string
	Lines         []FulfillmentLine
}

// LineCount reports the number of item lines.
func (f *Fulfillment) LineCount() int {
	if f == nil {
		return 0
	}
	return len(f.Lines)
}

// FulfillmentLine is one item line of a fulfillment. ItemID is inherited
// from the order line and never rewritten.
type FulfillmentLine struct {
	ItemID   string
	Quantity decimal.Decimal
	Location string
	Received bool
}

// LineAdjustment is a caller supplied correction keyed by item.
// Nil fields leave the transformed value in place.
type LineAdjustment struct {
	ItemID   string
	Quantity *decimal.Decimal
	Location *string
}

// LineReceipt marks a fulfillment line as received by its zero-based index.
type LineReceipt struct {
	Line     int
	Quantity *decimal.Decimal
}

// CreateInput carries the data needed to create a fulfillment.
type CreateInput struct {
	SourceOrderID string
	Adjustments   []LineAdjustment
}

// UpdateInput carries header and receipt changes for a fulfillment.
type UpdateInput struct {
	FulfillmentID string
	TranDate      *time.Time
	PostingPeriod *string
	Memo          *string
	Receipts      []LineReceipt
}

// Result statuses carried in the RESULT envelope field.
const (
	ResultCreated = "Item Fulfillment Created"
	ResultUpdated = "Item Fulfillment Updated"
	ResultDeleted = "Item Fulfillment Deleted"
	ResultFailed  = "FAILED"
)
