package donors

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-restlets/internal/platform/httpx"
)

// Handler exposes donor search.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers donor routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.search)
}

type donorResponse struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	BloodGroup   string `json:"bloodGroup"`
	LastDonation string `json:"lastDonation"`
}

type searchResponse struct {
	Count  int             `json:"count"`
	Donors []donorResponse `json:"donors"`
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	q := SearchQuery{
		BloodGroup:         r.URL.Query().Get("bloodGroup"),
		LastDonationBefore: r.URL.Query().Get("lastDonationBefore"),
	}
	donors, err := h.service.Search(r.Context(), q)
	if err != nil {
		h.logger.WarnContext(r.Context(), "donor search failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	resp := searchResponse{Count: len(donors), Donors: make([]donorResponse, 0, len(donors))}
	for _, d := range donors {
		resp.Donors = append(resp.Donors, donorResponse{
			Name:         d.FullName(),
			Phone:        d.Phone,
			BloodGroup:   d.BloodGroup,
			LastDonation: d.LastDonation.Format(DateLayout),
		})
	}
	httpx.JSON(w, http.StatusOK, resp)
}
