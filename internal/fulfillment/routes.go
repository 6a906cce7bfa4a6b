// Package fulfillment reconciles sales orders into item fulfillments and
// exposes the create, update and delete restlets.
package fulfillment

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
)

// Dependencies groups collaborators for MountRoutes.
type Dependencies struct {
	Store   RecordStore
	Logger  *slog.Logger
	Metrics *Metrics
	Audit   AuditRecorder
	Tracer  trace.Tracer

	// Idempotency enables Idempotency-Key on create when set.
	Idempotency IdempotencyGuard
}

// MountRoutes wires store, service, tracing decorator and handler.
func MountRoutes(r chi.Router, deps Dependencies) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	svc := NewService(deps.Store, deps.Logger)
	svc.SetMetrics(deps.Metrics)
	if deps.Audit != nil {
		svc.SetAuditRecorder(deps.Audit)
	}
	traced := NewTracedService(svc, deps.Tracer, deps.Logger)
	handler := NewHandler(deps.Logger, NewRestlet(traced, deps.Logger))
	if deps.Idempotency != nil {
		handler.SetIdempotencyGuard(deps.Idempotency)
	}
	handler.MountRoutes(r)
}
