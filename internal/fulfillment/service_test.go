package fulfillment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-restlets/internal/shared"
)

// ============================================================================
// MOCK STORE
// ============================================================================

// mockStore wraps MemoryStore with error injection and call tracking.
type mockStore struct {
	*MemoryStore

	loadOrderErr   error
	transformErr   error
	loadErr        error
	tryLoadErr     error
	saveErr        error
	deleteErr      error
	saveCalls      int
	transformCalls int
}

func newMockStore() *mockStore {
	return &mockStore{MemoryStore: NewMemoryStore()}
}

func (m *mockStore) LoadOrder(ctx context.Context, id string) (*Order, error) {
	if m.loadOrderErr != nil {
		return nil, m.loadOrderErr
	}
	return m.MemoryStore.LoadOrder(ctx, id)
}

func (m *mockStore) TransformOrder(ctx context.Context, id string) (*Fulfillment, error) {
	m.transformCalls++
	if m.transformErr != nil {
		return nil, m.transformErr
	}
	return m.MemoryStore.TransformOrder(ctx, id)
}

func (m *mockStore) LoadFulfillment(ctx context.Context, id string) (*Fulfillment, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.MemoryStore.LoadFulfillment(ctx, id)
}

func (m *mockStore) TryLoadFulfillment(ctx context.Context, id string) (*Fulfillment, bool, error) {
	if m.tryLoadErr != nil {
		return nil, false, m.tryLoadErr
	}
	return m.MemoryStore.TryLoadFulfillment(ctx, id)
}

func (m *mockStore) SaveFulfillment(ctx context.Context, f *Fulfillment) (string, error) {
	m.saveCalls++
	if m.saveErr != nil {
		return "", m.saveErr
	}
	return m.MemoryStore.SaveFulfillment(ctx, f)
}

func (m *mockStore) DeleteFulfillment(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	return m.MemoryStore.DeleteFulfillment(ctx, id)
}

type stubAudit struct {
	entries []shared.AuditLog
	err     error
}

func (s *stubAudit) Record(ctx context.Context, log shared.AuditLog) error {
	s.entries = append(s.entries, log)
	return s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seedSO1 stores sales order SO1 with lines I1 x10 and I2 x3.
func seedSO1(store *mockStore) {
	store.PutOrder(Order{
		ID:             "SO1",
		DocumentNumber: "SO-0001",
		TranDate:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:         OrderStatusPendingFulfillment,
		Lines: []OrderLine{
			{ItemID: "I1", ItemName: "Widget", Quantity: decimal.NewFromInt(10), Rate: decimal.NewFromInt(2), Location: "L0"},
			{ItemID: "I2", ItemName: "Gadget", Quantity: decimal.NewFromInt(3), Rate: decimal.NewFromInt(5), Location: "L0"},
		},
	})
}

// seedF1 stores a saved fulfillment with three lines and returns its id.
func seedF1(t *testing.T, store *mockStore) string {
	t.Helper()
	id, err := store.MemoryStore.SaveFulfillment(context.Background(), &Fulfillment{
		SourceOrderID: "SO1",
		TranDate:      time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		Lines: []FulfillmentLine{
			{ItemID: "I1", Quantity: decimal.NewFromInt(1)},
			{ItemID: "I2", Quantity: decimal.NewFromInt(1)},
			{ItemID: "I3", Quantity: decimal.NewFromInt(1)},
		},
	})
	require.NoError(t, err)
	return id
}

func newTestService(store RecordStore) (*Service, *Metrics, *stubAudit) {
	svc := NewService(store, discardLogger())
	metrics := NewMetrics(prometheus.NewRegistry())
	audit := &stubAudit{}
	svc.SetMetrics(metrics)
	svc.SetAuditRecorder(audit)
	return svc, metrics, audit
}

// ============================================================================
// CREATE
// ============================================================================

func TestCreateFulfillment_AppliesMatchingAdjustment(t *testing.T) {
	store := newMockStore()
	seedSO1(store)
	svc, _, audit := newTestService(store)

	id, err := svc.CreateFulfillment(context.Background(), CreateInput{
		SourceOrderID: "SO1",
		Adjustments:   []LineAdjustment{{ItemID: "I1", Quantity: qty(5), Location: strPtr("L1")}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	f, err := store.LoadFulfillment(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, f.Lines, 2)
	assert.Equal(t, "SO1", f.SourceOrderID)
	assert.Equal(t, "I1", f.Lines[0].ItemID)
	assert.Equal(t, "5", f.Lines[0].Quantity.String())
	assert.Equal(t, "L1", f.Lines[0].Location)
	assert.Equal(t, "I2", f.Lines[1].ItemID)
	assert.Equal(t, "3", f.Lines[1].Quantity.String())
	assert.Equal(t, "L0", f.Lines[1].Location)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, "fulfillment.create", audit.entries[0].Action)
	assert.Equal(t, id, audit.entries[0].EntityID)
}

func TestCreateFulfillment_PreservesLineCountAndOrder(t *testing.T) {
	store := newMockStore()
	seedSO1(store)
	svc, _, _ := newTestService(store)

	id, err := svc.CreateFulfillment(context.Background(), CreateInput{SourceOrderID: "SO1"})
	require.NoError(t, err)

	f, err := store.LoadFulfillment(context.Background(), id)
	require.NoError(t, err)
	order, err := store.LoadOrder(context.Background(), "SO1")
	require.NoError(t, err)
	require.Len(t, f.Lines, len(order.Lines))
	for i := range order.Lines {
		assert.Equal(t, order.Lines[i].ItemID, f.Lines[i].ItemID)
		assert.True(t, order.Lines[i].Quantity.Equal(f.Lines[i].Quantity))
	}
}

func TestCreateFulfillment_MissingSourceOrder(t *testing.T) {
	store := newMockStore()
	svc, metrics, _ := newTestService(store)

	_, err := svc.CreateFulfillment(context.Background(), CreateInput{SourceOrderID: "  "})

	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, MsgMissingSourceOrder, err.Error())
	assert.Zero(t, store.transformCalls)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.operations.WithLabelValues("create", "invalid")))
}

func TestCreateFulfillment_RejectsNegativeQuantity(t *testing.T) {
	store := newMockStore()
	seedSO1(store)
	svc, _, _ := newTestService(store)

	_, err := svc.CreateFulfillment(context.Background(), CreateInput{
		SourceOrderID: "SO1",
		Adjustments:   []LineAdjustment{{ItemID: "I1", Quantity: qty(-1)}},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNegativeQuantity)
	assert.Zero(t, store.saveCalls)
}

func TestCreateFulfillment_UnknownOrder(t *testing.T) {
	store := newMockStore()
	svc, _, audit := newTestService(store)

	_, err := svc.CreateFulfillment(context.Background(), CreateInput{SourceOrderID: "SO404"})

	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "SO404")
	assert.Zero(t, store.transformCalls)
	assert.Empty(t, audit.entries)
}

func TestCreateFulfillment_StoreFailures(t *testing.T) {
	cause := errors.New("connection reset")

	tests := []struct {
		name   string
		inject func(*mockStore)
		op     string
	}{
		{name: "load", inject: func(m *mockStore) { m.loadOrderErr = cause }, op: "load sales order"},
		{name: "transform", inject: func(m *mockStore) { m.transformErr = cause }, op: "transform sales order"},
		{name: "save", inject: func(m *mockStore) { m.saveErr = cause }, op: "save item fulfillment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore()
			seedSO1(store)
			tt.inject(store)
			svc, metrics, _ := newTestService(store)

			_, err := svc.CreateFulfillment(context.Background(), CreateInput{SourceOrderID: "SO1"})

			var storeErr *StoreError
			require.ErrorAs(t, err, &storeErr)
			assert.Equal(t, tt.op, storeErr.Op)
			assert.ErrorIs(t, err, cause)
			assert.Equal(t, float64(1), testutil.ToFloat64(metrics.operations.WithLabelValues("create", "error")))
		})
	}
}

func TestCreateFulfillment_AuditFailureIsNotFatal(t *testing.T) {
	store := newMockStore()
	seedSO1(store)
	svc, _, audit := newTestService(store)
	audit.err = errors.New("audit table missing")

	id, err := svc.CreateFulfillment(context.Background(), CreateInput{SourceOrderID: "SO1"})

	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

// ============================================================================
// UPDATE
// ============================================================================

func TestUpdateFulfillment_MarksReceivedLine(t *testing.T) {
	store := newMockStore()
	id := seedF1(t, store)
	svc, _, _ := newTestService(store)

	got, err := svc.UpdateFulfillment(context.Background(), UpdateInput{
		FulfillmentID: id,
		Receipts:      []LineReceipt{{Line: 0, Quantity: qty(2)}},
	})
	require.NoError(t, err)
	assert.Equal(t, id, got)

	f, err := store.LoadFulfillment(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, f.Lines, 3)
	assert.True(t, f.Lines[0].Received)
	assert.Equal(t, "2", f.Lines[0].Quantity.String())
	for _, line := range f.Lines[1:] {
		assert.False(t, line.Received)
		assert.Equal(t, "1", line.Quantity.String())
	}
}

func TestUpdateFulfillment_ReceiptWithoutQuantityKeepsQuantity(t *testing.T) {
	store := newMockStore()
	id := seedF1(t, store)
	svc, _, _ := newTestService(store)

	_, err := svc.UpdateFulfillment(context.Background(), UpdateInput{
		FulfillmentID: id,
		Receipts:      []LineReceipt{{Line: 2}},
	})
	require.NoError(t, err)

	f, err := store.LoadFulfillment(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, f.Lines[2].Received)
	assert.Equal(t, "1", f.Lines[2].Quantity.String())
}

func TestUpdateFulfillment_SkipsOutOfRangeLines(t *testing.T) {
	store := newMockStore()
	id := seedF1(t, store)
	svc, metrics, _ := newTestService(store)

	before, err := store.LoadFulfillment(context.Background(), id)
	require.NoError(t, err)

	_, err = svc.UpdateFulfillment(context.Background(), UpdateInput{
		FulfillmentID: id,
		Receipts:      []LineReceipt{{Line: 5, Quantity: qty(9)}, {Line: -1, Quantity: qty(9)}, {Line: 3}},
	})
	require.NoError(t, err)

	after, err := store.LoadFulfillment(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, before.Lines, after.Lines)
	assert.Equal(t, float64(3), testutil.ToFloat64(metrics.skippedReceipts))
}

func TestUpdateFulfillment_HeaderFields(t *testing.T) {
	store := newMockStore()
	id := seedF1(t, store)
	svc, _, _ := newTestService(store)

	tranDate := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)
	_, err := svc.UpdateFulfillment(context.Background(), UpdateInput{
		FulfillmentID: id,
		TranDate:      &tranDate,
		PostingPeriod: strPtr("APR 2024"),
		Memo:          strPtr("partial shipment"),
	})
	require.NoError(t, err)

	f, err := store.LoadFulfillment(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, f.TranDate.Equal(tranDate))
	assert.Equal(t, "APR 2024", f.PostingPeriod)
	assert.Equal(t, "partial shipment", f.Memo)

	// Absent fields leave the header untouched.
	_, err = svc.UpdateFulfillment(context.Background(), UpdateInput{FulfillmentID: id, PostingPeriod: strPtr("")})
	require.NoError(t, err)
	f, err = store.LoadFulfillment(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "APR 2024", f.PostingPeriod)
	assert.Equal(t, "partial shipment", f.Memo)
}

func TestUpdateFulfillment_Errors(t *testing.T) {
	t.Run("missing id", func(t *testing.T) {
		svc, _, _ := newTestService(newMockStore())
		_, err := svc.UpdateFulfillment(context.Background(), UpdateInput{})
		require.Error(t, err)
		assert.Equal(t, MsgMissingFulfillmentBody, err.Error())
	})

	t.Run("unknown fulfillment", func(t *testing.T) {
		store := newMockStore()
		svc, _, _ := newTestService(store)
		_, err := svc.UpdateFulfillment(context.Background(), UpdateInput{FulfillmentID: "77"})
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
		assert.Zero(t, store.saveCalls)
	})

	t.Run("negative receipt quantity", func(t *testing.T) {
		store := newMockStore()
		id := seedF1(t, store)
		svc, _, _ := newTestService(store)
		_, err := svc.UpdateFulfillment(context.Background(), UpdateInput{
			FulfillmentID: id,
			Receipts:      []LineReceipt{{Line: 0, Quantity: qty(-3)}},
		})
		assert.ErrorIs(t, err, ErrNegativeQuantity)
	})

	t.Run("save failure", func(t *testing.T) {
		store := newMockStore()
		id := seedF1(t, store)
		store.saveErr = errors.New("disk full")
		svc, _, _ := newTestService(store)
		_, err := svc.UpdateFulfillment(context.Background(), UpdateInput{FulfillmentID: id})
		var storeErr *StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "save item fulfillment", storeErr.Op)
	})
}

// ============================================================================
// DELETE
// ============================================================================

func TestDeleteFulfillment_Lifecycle(t *testing.T) {
	store := newMockStore()
	id := seedF1(t, store)
	svc, _, audit := newTestService(store)

	deleted, err := svc.DeleteFulfillment(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, deleted)

	_, err = svc.DeleteFulfillment(context.Background(), id)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	require.Len(t, audit.entries, 1)
	assert.Equal(t, "fulfillment.delete", audit.entries[0].Action)
}

func TestDeleteFulfillment_ProbeFailureReportsNotFound(t *testing.T) {
	store := newMockStore()
	id := seedF1(t, store)
	store.tryLoadErr = errors.New("timeout")
	svc, _, _ := newTestService(store)

	_, err := svc.DeleteFulfillment(context.Background(), id)

	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestDeleteFulfillment_DeleteFailure(t *testing.T) {
	store := newMockStore()
	id := seedF1(t, store)
	store.deleteErr = errors.New("foreign key violation")
	svc, _, _ := newTestService(store)

	_, err := svc.DeleteFulfillment(context.Background(), id)

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.False(t, IsNotFound(err))
}

func TestDeleteFulfillment_MissingID(t *testing.T) {
	svc, _, _ := newTestService(newMockStore())

	_, err := svc.DeleteFulfillment(context.Background(), "")

	require.Error(t, err)
	assert.Equal(t, MsgMissingFulfillmentParam, err.Error())
}
