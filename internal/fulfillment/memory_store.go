package fulfillment

import (
	"context"
	"strconv"
	"sync"
)

// MemoryStore is an in-process RecordStore. Records are copied on the way
// in and out so callers never share slices with the store.
type MemoryStore struct {
	mu           sync.Mutex
	orders       map[string]Order
	fulfillments map[string]Fulfillment
	nextID       int64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders:       make(map[string]Order),
		fulfillments: make(map[string]Fulfillment),
		nextID:       1000,
	}
}

// PutOrder seeds a sales order.
func (s *MemoryStore) PutOrder(order Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order.Lines = append([]OrderLine(nil), order.Lines...)
	s.orders[order.ID] = order
}

// LoadOrder returns a copy of the order.
func (s *MemoryStore) LoadOrder(ctx context.Context, id string) (*Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, &NotFoundError{Type: "sales order", ID: id}
	}
	order.Lines = append([]OrderLine(nil), order.Lines...)
	return &order, nil
}

// LoadFulfillment returns a copy of the fulfillment.
func (s *MemoryStore) LoadFulfillment(ctx context.Context, id string) (*Fulfillment, error) {
	f, found, err := s.TryLoadFulfillment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &NotFoundError{Type: "item fulfillment", ID: id}
	}
	return f, nil
}

// TryLoadFulfillment returns found=false when id is unknown.
func (s *MemoryStore) TryLoadFulfillment(ctx context.Context, id string) (*Fulfillment, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.fulfillments[id]
	if !ok {
		return nil, false, nil
	}
	f.Lines = append([]FulfillmentLine(nil), f.Lines...)
	return &f, true, nil
}

// TransformOrder builds a draft from a stored order.
func (s *MemoryStore) TransformOrder(ctx context.Context, orderID string) (*Fulfillment, error) {
	order, err := s.LoadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return draftFromOrder(order), nil
}

// SaveFulfillment inserts drafts and replaces existing records.
func (s *MemoryStore) SaveFulfillment(ctx context.Context, f *Fulfillment) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record := *f
	record.Lines = append([]FulfillmentLine(nil), f.Lines...)
	if record.ID == "" {
		s.nextID++
		record.ID = strconv.FormatInt(s.nextID, 10)
	} else if _, ok := s.fulfillments[record.ID]; !ok {
		return "", &NotFoundError{Type: "item fulfillment", ID: record.ID}
	}
	s.fulfillments[record.ID] = record
	return record.ID, nil
}

// DeleteFulfillment removes the record.
func (s *MemoryStore) DeleteFulfillment(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fulfillments[id]; !ok {
		return &NotFoundError{Type: "item fulfillment", ID: id}
	}
	delete(s.fulfillments, id)
	return nil
}

var _ RecordStore = (*MemoryStore)(nil)
