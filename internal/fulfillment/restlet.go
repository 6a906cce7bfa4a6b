package fulfillment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-restlets/internal/shared"
)

// Restlet converts request payloads into Reconciler calls and every outcome,
// including panics, into an Envelope.
type Restlet struct {
	ops      Reconciler
	validate *validator.Validate
	logger   *slog.Logger
}

// NewRestlet constructs the restlet boundary.
func NewRestlet(ops Reconciler, logger *slog.Logger) *Restlet {
	if logger == nil {
		logger = slog.Default()
	}
	return &Restlet{ops: ops, validate: shared.NewValidator(), logger: logger}
}

// Post creates a fulfillment.
func (r *Restlet) Post(ctx context.Context, req CreateRequest) (env Envelope) {
	defer r.recoverPanic(ctx, "post", &env)

	in, err := toCreateInput(r.validate, req)
	if err != nil {
		return r.fail(ctx, "post", err, err.Error())
	}
	id, err := r.ops.CreateFulfillment(ctx, in)
	if err != nil {
		return r.fail(ctx, "post", err, err.Error())
	}
	return successEnvelope(ResultCreated, id)
}

// Put updates a fulfillment.
func (r *Restlet) Put(ctx context.Context, req UpdateRequest) (env Envelope) {
	defer r.recoverPanic(ctx, "put", &env)

	in, err := toUpdateInput(r.validate, req)
	if err != nil {
		return r.fail(ctx, "put", err, err.Error())
	}
	id, err := r.ops.UpdateFulfillment(ctx, in)
	if err != nil {
		return r.fail(ctx, "put", err, err.Error())
	}
	return successEnvelope(ResultUpdated, id)
}

// Delete removes a fulfillment.
func (r *Restlet) Delete(ctx context.Context, id string) (env Envelope) {
	defer r.recoverPanic(ctx, "delete", &env)

	deleted, err := r.ops.DeleteFulfillment(ctx, id)
	if err != nil {
		msg := err.Error()
		if IsNotFound(err) {
			msg = MsgFulfillmentNotFound
		}
		return r.fail(ctx, "delete", err, msg)
	}
	return successEnvelope(ResultDeleted, deleted)
}

func (r *Restlet) fail(ctx context.Context, op string, err error, msg string) Envelope {
	level := slog.LevelError
	if IsValidation(err) || IsNotFound(err) {
		level = slog.LevelWarn
	}
	r.logger.Log(ctx, level, "item fulfillment restlet failed",
		slog.String("operation", op), slog.Any("error", err))
	return failureEnvelope(msg)
}

func (r *Restlet) recoverPanic(ctx context.Context, op string, env *Envelope) {
	if rec := recover(); rec != nil {
		*env = r.fail(ctx, op, fmt.Errorf("panic: %v", rec), fmt.Sprint(rec))
	}
}
