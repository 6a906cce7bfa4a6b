package sales

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-restlets/internal/platform/httpx"
)

// Handler exposes the sales order lookup restlet.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers sales order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.get)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type orderSummaryResponse struct {
	InternalID     string  `json:"internalId"`
	DocumentNumber string  `json:"documentNumber"`
	Date           string  `json:"date"`
	TotalAmount    float64 `json:"totalAmount"`
}

type orderItemResponse struct {
	ItemName    string  `json:"itemName"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	GrossAmount float64 `json:"grossAmount"`
}

type orderDetailResponse struct {
	orderSummaryResponse
	Items []orderItemResponse `json:"items"`
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("id"); id != "" {
		h.getOne(w, r, id)
		return
	}
	orders, err := h.service.ListOpen(r.Context())
	if err != nil {
		h.unexpected(w, r, err)
		return
	}
	out := make([]orderSummaryResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toSummaryResponse(o))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"result": out})
}

func (h *Handler) getOne(w http.ResponseWriter, r *http.Request, id string) {
	detail, err := h.service.Get(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		httpx.JSON(w, http.StatusOK, map[string]string{"RESULT": "NOT FOUND"})
		return
	}
	if err != nil {
		h.unexpected(w, r, err)
		return
	}
	resp := orderDetailResponse{
		orderSummaryResponse: toSummaryResponse(detail.OrderSummary),
		Items:                make([]orderItemResponse, 0, len(detail.Items)),
	}
	for _, item := range detail.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ItemName:    item.ItemName,
			Quantity:    item.Quantity.InexactFloat64(),
			Rate:        item.Rate.InexactFloat64(),
			GrossAmount: item.GrossAmount.InexactFloat64(),
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"result": resp})
}

func (h *Handler) unexpected(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "sales order lookup", slog.Any("error", err))
	httpx.JSON(w, http.StatusOK, map[string]any{
		"error": errorBody{Code: "UNEXPECTED_ERROR", Message: err.Error()},
	})
}

func toSummaryResponse(o OrderSummary) orderSummaryResponse {
	return orderSummaryResponse{
		InternalID:     o.InternalID,
		DocumentNumber: o.DocumentNumber,
		Date:           o.Date,
		TotalAmount:    o.TotalAmount.InexactFloat64(),
	}
}
