package fulfillment

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-restlets/internal/shared"
)

var tranDateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	time.RFC3339,
}

// ParseTranDate accepts ISO dates, M/D/YYYY dates and RFC 3339 timestamps.
func ParseTranDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range tranDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, validationf(ErrInvalidTranDate, "invalid trandate %q", raw)
}

func validateStruct(v *validator.Validate, req any) error {
	if err := v.Struct(req); err != nil {
		if fields := shared.FieldErrors(err); len(fields) > 0 {
			return &ValidationError{Message: shared.JoinFieldErrors(fields), Err: err}
		}
		return &ValidationError{Message: err.Error(), Err: err}
	}
	return nil
}

// toCreateInput validates req and converts it to service input.
func toCreateInput(v *validator.Validate, req CreateRequest) (CreateInput, error) {
	orderID := req.SourceOrderID
	if strings.TrimSpace(string(orderID)) == "" {
		orderID = req.SalesOrderID
	}
	if strings.TrimSpace(string(orderID)) == "" {
		return CreateInput{}, &ValidationError{Message: MsgMissingSourceOrder}
	}
	if err := validateStruct(v, req); err != nil {
		return CreateInput{}, err
	}
	in := CreateInput{
		SourceOrderID: string(orderID),
		Adjustments:   make([]LineAdjustment, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		adj := LineAdjustment{ItemID: string(item.ItemID), Quantity: item.Quantity}
		if item.Location != nil {
			loc := string(*item.Location)
			adj.Location = &loc
		}
		in.Adjustments = append(in.Adjustments, adj)
	}
	return in, nil
}

// toUpdateInput validates req and converts it to service input. Empty
// trandate and postingPeriod values count as absent; receipts without a
// usable line index become skippedLine and are skipped downstream.
func toUpdateInput(v *validator.Validate, req UpdateRequest) (UpdateInput, error) {
	if strings.TrimSpace(string(req.ItemFulfillmentID)) == "" {
		return UpdateInput{}, &ValidationError{Message: MsgMissingFulfillmentBody}
	}
	if err := validateStruct(v, req); err != nil {
		return UpdateInput{}, err
	}
	in := UpdateInput{
		FulfillmentID: string(req.ItemFulfillmentID),
		Memo:          req.Memo,
		Receipts:      make([]LineReceipt, 0, len(req.Items)),
	}
	if req.TranDate != nil && strings.TrimSpace(*req.TranDate) != "" {
		t, err := ParseTranDate(*req.TranDate)
		if err != nil {
			return UpdateInput{}, err
		}
		in.TranDate = &t
	}
	if req.PostingPeriod != nil && *req.PostingPeriod != "" {
		period := string(*req.PostingPeriod)
		in.PostingPeriod = &period
	}
	for _, item := range req.Items {
		line := skippedLine
		if item.Line != nil {
			line = int(*item.Line)
		}
		in.Receipts = append(in.Receipts, LineReceipt{Line: line, Quantity: item.Quantity})
	}
	return in, nil
}
