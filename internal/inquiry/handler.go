package inquiry

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-restlets/internal/platform/httpx"
)

// Handler exposes inquiry submission.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers inquiry routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.submit)
}

type submitResponse struct {
	Result    string `json:"RESULT"`
	InquiryID int64  `json:"inquiryId,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, submitResponse{Result: "FAILED", Error: "invalid request body: " + err.Error()})
		return
	}
	id, err := h.service.Submit(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		msg := "An error occurred while submitting your inquiry. Please try again later."
		if errors.Is(err, httpx.ErrValidation) {
			status = http.StatusUnprocessableEntity
			msg = strings.TrimPrefix(err.Error(), httpx.ErrValidation.Error()+": ")
		} else {
			h.logger.ErrorContext(r.Context(), "submit inquiry", slog.Any("error", err))
		}
		httpx.JSON(w, status, submitResponse{Result: "FAILED", Error: msg})
		return
	}
	httpx.JSON(w, http.StatusCreated, submitResponse{Result: "Inquiry Submitted", InquiryID: id})
}
