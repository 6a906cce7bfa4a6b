package fulfillment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// RecordID accepts identifiers sent either as JSON strings or numbers.
type RecordID string

// UnmarshalJSON implements json.Unmarshaler.
func (r *RecordID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RecordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("record id must be a string or number: %w", err)
	}
	*r = RecordID(n.String())
	return nil
}

// CreateRequest is the POST body of the item fulfillment restlet.
type CreateRequest struct {
	SourceOrderID RecordID            `json:"sourceOrderId"`
	SalesOrderID  RecordID            `json:"salesOrderId"`
	Items         []CreateItemRequest `json:"items" validate:"omitempty,dive"`
}

// CreateItemRequest adjusts every line carrying ItemID.
type CreateItemRequest struct {
	ItemID   RecordID         `json:"itemId" validate:"required"`
	Quantity *decimal.Decimal `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Location *RecordID        `json:"location,omitempty"`
}

// UpdateRequest is the PUT body of the item fulfillment restlet.
type UpdateRequest struct {
	ItemFulfillmentID RecordID            `json:"itemFulfillmentId"`
	TranDate          *string             `json:"trandate,omitempty"`
	PostingPeriod     *RecordID           `json:"postingPeriod,omitempty"`
	Memo              *string             `json:"memo,omitempty" validate:"omitempty,max=4000"`
	Items             []UpdateItemRequest `json:"items" validate:"omitempty,dive"`
}

// UpdateItemRequest marks the line at index Line as received.
type UpdateItemRequest struct {
	Line     *LineIndex       `json:"line"`
	Quantity *decimal.Decimal `json:"quantity,omitempty" validate:"omitempty,gte=0"`
}

// skippedLine is never a valid line index; receipts carrying it are skipped.
const skippedLine = -1

// LineIndex is a receipt line index. Values that are not non-negative
// integral numbers decode to skippedLine instead of failing the request.
type LineIndex int

// UnmarshalJSON implements json.Unmarshaler and never returns an error.
func (l *LineIndex) UnmarshalJSON(data []byte) error {
	*l = LineIndex(parseLineIndex(data))
	return nil
}

func parseLineIndex(data []byte) int {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return skippedLine
	}
	n, ok := v.(json.Number)
	if !ok {
		return skippedLine
	}
	if i, err := n.Int64(); err == nil {
		if i < 0 || i > math.MaxInt32 {
			return skippedLine
		}
		return int(i)
	}
	// 1.0 and 1e2 are integral numbers too.
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil || f != math.Trunc(f) || f < 0 || f > math.MaxInt32 {
		return skippedLine
	}
	return int(f)
}

// Envelope is the uniform restlet response.
type Envelope struct {
	Result        string `json:"RESULT"`
	FulfillmentID string `json:"fulfillmentId,omitempty"`
	Error         string `json:"error,omitempty"`
}

func successEnvelope(result, id string) Envelope {
	return Envelope{Result: result, FulfillmentID: id}
}

func failureEnvelope(msg string) Envelope {
	return Envelope{Result: ResultFailed, Error: msg}
}
