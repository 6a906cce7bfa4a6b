package fulfillment

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-restlets/internal/shared"
)

// Reconciler is the operation set exposed to the restlet layer.
type Reconciler interface {
	CreateFulfillment(ctx context.Context, in CreateInput) (string, error)
	UpdateFulfillment(ctx context.Context, in UpdateInput) (string, error)
	DeleteFulfillment(ctx context.Context, id string) (string, error)
}

// AuditRecorder persists audit trail entries.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service reconciles sales orders into item fulfillments.
type Service struct {
	store   RecordStore
	logger  *slog.Logger
	metrics *Metrics
	audit   AuditRecorder
	now     func() time.Time
}

// NewService constructs the service.
func NewService(store RecordStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// SetMetrics attaches Prometheus collectors.
func (s *Service) SetMetrics(m *Metrics) {
	s.metrics = m
}

// SetAuditRecorder attaches the audit trail writer.
func (s *Service) SetAuditRecorder(a AuditRecorder) {
	s.audit = a
}

// CreateFulfillment transforms the source order into a fulfillment, applies
// the caller's line adjustments and saves it.
func (s *Service) CreateFulfillment(ctx context.Context, in CreateInput) (id string, err error) {
	defer func() { s.metrics.ObserveOperation("create", err) }()

	orderID := strings.TrimSpace(in.SourceOrderID)
	if orderID == "" {
		return "", &ValidationError{Message: MsgMissingSourceOrder}
	}
	for i, adj := range in.Adjustments {
		if strings.TrimSpace(adj.ItemID) == "" {
			return "", validationf(ErrEmptyItemID, "items[%d]: itemId is required", i)
		}
		if adj.Quantity != nil && adj.Quantity.IsNegative() {
			return "", validationf(ErrNegativeQuantity, "items[%d]: quantity must not be negative", i)
		}
	}

	if _, err := s.store.LoadOrder(ctx, orderID); err != nil {
		return "", storeFailure("load sales order", err)
	}
	draft, err := s.store.TransformOrder(ctx, orderID)
	if err != nil {
		return "", storeFailure("transform sales order", err)
	}

	applied := ApplyAdjustments(draft.Lines, in.Adjustments)

	id, err = s.store.SaveFulfillment(ctx, draft)
	if err != nil {
		return "", storeFailure("save item fulfillment", err)
	}

	s.logger.InfoContext(ctx, "item fulfillment created",
		slog.String("fulfillment_id", id),
		slog.String("sales_order_id", orderID),
		slog.Int("lines", len(draft.Lines)),
		slog.Int("adjusted_lines", applied),
	)
	s.recordAudit(ctx, "fulfillment.create", id, map[string]any{
		"sales_order_id": orderID,
		"lines":          len(draft.Lines),
		"adjusted_lines": applied,
	})
	return id, nil
}

// UpdateFulfillment applies header changes and line receipts to an existing
// fulfillment. Receipt indices outside the current line range are skipped.
func (s *Service) UpdateFulfillment(ctx context.Context, in UpdateInput) (id string, err error) {
	defer func() { s.metrics.ObserveOperation("update", err) }()

	id = strings.TrimSpace(in.FulfillmentID)
	if id == "" {
		return "", &ValidationError{Message: MsgMissingFulfillmentBody}
	}
	for i, rc := range in.Receipts {
		if rc.Quantity != nil && rc.Quantity.IsNegative() {
			return "", validationf(ErrNegativeQuantity, "items[%d]: quantity must not be negative", i)
		}
	}

	f, err := s.store.LoadFulfillment(ctx, id)
	if err != nil {
		return "", storeFailure("load item fulfillment", err)
	}

	if in.TranDate != nil {
		f.TranDate = *in.TranDate
	}
	if in.PostingPeriod != nil && *in.PostingPeriod != "" {
		f.PostingPeriod = *in.PostingPeriod
	}
	if in.Memo != nil {
		f.Memo = *in.Memo
	}

	count := f.LineCount()
	received, skipped := 0, 0
	for _, rc := range in.Receipts {
		if rc.Line < 0 || rc.Line >= count {
			skipped++
			s.logger.WarnContext(ctx, "receipt line out of range",
				slog.String("fulfillment_id", id),
				slog.Int("line", rc.Line),
				slog.Int("line_count", count),
			)
			continue
		}
		f.Lines[rc.Line].Received = true
		if rc.Quantity != nil {
			f.Lines[rc.Line].Quantity = *rc.Quantity
		}
		received++
	}
	s.metrics.AddSkippedReceipts(skipped)

	if _, err := s.store.SaveFulfillment(ctx, f); err != nil {
		return "", storeFailure("save item fulfillment", err)
	}

	s.logger.InfoContext(ctx, "item fulfillment updated",
		slog.String("fulfillment_id", id),
		slog.Int("received_lines", received),
		slog.Int("skipped_lines", skipped),
	)
	s.recordAudit(ctx, "fulfillment.update", id, map[string]any{
		"received_lines": received,
		"skipped_lines":  skipped,
	})
	return id, nil
}

// DeleteFulfillment probes for the fulfillment and removes it.
func (s *Service) DeleteFulfillment(ctx context.Context, id string) (_ string, err error) {
	defer func() { s.metrics.ObserveOperation("delete", err) }()

	id = strings.TrimSpace(id)
	if id == "" {
		return "", &ValidationError{Message: MsgMissingFulfillmentParam}
	}

	_, found, err := s.store.TryLoadFulfillment(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "item fulfillment probe failed",
			slog.String("fulfillment_id", id), slog.Any("error", err))
		return "", &NotFoundError{Type: "item fulfillment", ID: id}
	}
	if !found {
		return "", &NotFoundError{Type: "item fulfillment", ID: id}
	}

	if err := s.store.DeleteFulfillment(ctx, id); err != nil {
		return "", storeFailure("delete item fulfillment", err)
	}

	s.logger.InfoContext(ctx, "item fulfillment deleted", slog.String("fulfillment_id", id))
	s.recordAudit(ctx, "fulfillment.delete", id, nil)
	return id, nil
}

func (s *Service) recordAudit(ctx context.Context, action, id string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	entry := shared.AuditLog{
		Actor:    shared.ActorFromContext(ctx),
		Action:   action,
		Entity:   "item_fulfillment",
		EntityID: id,
		Meta:     meta,
		At:       s.now(),
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "record audit", slog.String("action", action), slog.Any("error", err))
	}
}

// storeFailure keeps not-found errors intact and wraps everything else.
func storeFailure(op string, err error) error {
	if IsNotFound(err) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

var _ Reconciler = (*Service)(nil)
