package fulfillment

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-restlets/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-restlets/internal/shared"
)

// IdempotencyHeader carries the caller's retry key on create.
const IdempotencyHeader = "Idempotency-Key"

const idempotencyModule = "item_fulfillment"

// IdempotencyGuard claims request keys. *shared.IdempotencyStore satisfies it.
type IdempotencyGuard interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Release(ctx context.Context, key, module string) error
}

// Handler exposes the item fulfillment restlet over HTTP.
type Handler struct {
	logger      *slog.Logger
	restlet     *Restlet
	idempotency IdempotencyGuard
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, restlet *Restlet) *Handler {
	return &Handler{logger: logger, restlet: restlet}
}

// SetIdempotencyGuard enables Idempotency-Key handling on create.
func (h *Handler) SetIdempotencyGuard(guard IdempotencyGuard) {
	h.idempotency = guard
}

// MountRoutes registers item fulfillment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Put("/", h.update)
	r.Delete("/", h.delete)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.badRequest(w, err)
		return
	}
	ctx := r.Context()
	key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
	if key == "" || h.idempotency == nil {
		httpx.JSON(w, http.StatusOK, h.restlet.Post(ctx, req))
		return
	}

	if err := h.idempotency.CheckAndInsert(ctx, key, idempotencyModule); err != nil {
		if errors.Is(err, shared.ErrIdempotencyConflict) {
			h.logger.WarnContext(ctx, "duplicate item fulfillment request", slog.String("idempotency_key", key))
			httpx.JSON(w, http.StatusConflict, failureEnvelope("duplicate request: "+IdempotencyHeader+" already processed"))
			return
		}
		h.logger.ErrorContext(ctx, "claim idempotency key", slog.Any("error", err))
		httpx.JSON(w, http.StatusOK, failureEnvelope(err.Error()))
		return
	}
	env := h.restlet.Post(ctx, req)
	if env.Result != ResultCreated {
		if err := h.idempotency.Release(ctx, key, idempotencyModule); err != nil {
			h.logger.ErrorContext(ctx, "release idempotency key", slog.String("idempotency_key", key), slog.Any("error", err))
		}
	}
	httpx.JSON(w, http.StatusOK, env)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.badRequest(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.restlet.Put(r.Context(), req))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("itemFulfillmentId")
	httpx.JSON(w, http.StatusOK, h.restlet.Delete(r.Context(), id))
}

func (h *Handler) badRequest(w http.ResponseWriter, err error) {
	h.logger.Warn("decode item fulfillment request", slog.Any("error", err))
	httpx.JSON(w, http.StatusBadRequest, failureEnvelope("invalid request body: "+err.Error()))
}
