package fulfillment

import "context"

// RecordStore is the persistence collaborator for fulfillments.
// Missing records surface as *NotFoundError from the Load methods.
type RecordStore interface {
	LoadOrder(ctx context.Context, id string) (*Order, error)
	LoadFulfillment(ctx context.Context, id string) (*Fulfillment, error)
	// TryLoadFulfillment reports found=false instead of failing when the record is absent.
	TryLoadFulfillment(ctx context.Context, id string) (*Fulfillment, bool, error)
	// TransformOrder builds an unsaved fulfillment draft with one line per order line.
	TransformOrder(ctx context.Context, orderID string) (*Fulfillment, error)
	// SaveFulfillment persists f atomically and returns its identifier.
	// Drafts without an ID are inserted.
	SaveFulfillment(ctx context.Context, f *Fulfillment) (string, error)
	DeleteFulfillment(ctx context.Context, id string) error
}

func draftFromOrder(order *Order) *Fulfillment {
	draft := &Fulfillment{
		SourceOrderID: order.ID,
		TranDate:      order.TranDate,
		Lines:         make([]FulfillmentLine, len(order.Lines)),
	}
	for i, line := range order.Lines {
		draft.Lines[i] = FulfillmentLine{
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
			Location: line.Location,
		}
	}
	return draft
}
