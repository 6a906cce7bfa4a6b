package fulfillment

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/odyssey-erp/odyssey-restlets/internal/fulfillment"

// TracedService decorates a Reconciler with OpenTelemetry spans.
type TracedService struct {
	inner  Reconciler
	tracer trace.Tracer
	logger *slog.Logger
}

// NewTracedService wraps inner. A nil tracer disables span export.
func NewTracedService(inner Reconciler, tracer trace.Tracer, logger *slog.Logger) *TracedService {
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TracedService{inner: inner, tracer: tracer, logger: logger}
}

func (s *TracedService) CreateFulfillment(ctx context.Context, in CreateInput) (string, error) {
	ctx, span := s.tracer.Start(ctx, "FulfillmentService.CreateFulfillment",
		trace.WithAttributes(
			attribute.String("sales_order.id", in.SourceOrderID),
			attribute.Int("adjustments.count", len(in.Adjustments)),
		))
	defer span.End()

	id, err := s.inner.CreateFulfillment(ctx, in)
	if err != nil {
		return "", s.handleError(ctx, span, err, "create item fulfillment failed",
			slog.String("sales_order_id", in.SourceOrderID))
	}
	span.SetAttributes(attribute.String("fulfillment.id", id))
	return id, nil
}

func (s *TracedService) UpdateFulfillment(ctx context.Context, in UpdateInput) (string, error) {
	ctx, span := s.tracer.Start(ctx, "FulfillmentService.UpdateFulfillment",
		trace.WithAttributes(
			attribute.String("fulfillment.id", in.FulfillmentID),
			attribute.Int("receipts.count", len(in.Receipts)),
		))
	defer span.End()

	id, err := s.inner.UpdateFulfillment(ctx, in)
	if err != nil {
		return "", s.handleError(ctx, span, err, "update item fulfillment failed",
			slog.String("fulfillment_id", in.FulfillmentID))
	}
	return id, nil
}

func (s *TracedService) DeleteFulfillment(ctx context.Context, id string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "FulfillmentService.DeleteFulfillment",
		trace.WithAttributes(attribute.String("fulfillment.id", id)))
	defer span.End()

	deleted, err := s.inner.DeleteFulfillment(ctx, id)
	if err != nil {
		return "", s.handleError(ctx, span, err, "delete item fulfillment failed",
			slog.String("fulfillment_id", id))
	}
	return deleted, nil
}

func (s *TracedService) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelDebug, msg, attrs...)
	return err
}

var _ Reconciler = (*TracedService)(nil)
