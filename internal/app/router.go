package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/odyssey-restlets/internal/donors"
	"github.com/odyssey-erp/odyssey-restlets/internal/fulfillment"
	"github.com/odyssey-erp/odyssey-restlets/internal/inquiry"
	"github.com/odyssey-erp/odyssey-restlets/internal/observability"
	"github.com/odyssey-erp/odyssey-restlets/internal/sales"
	"github.com/odyssey-erp/odyssey-restlets/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics

	Fulfillment    *fulfillment.Dependencies
	SalesHandler   *sales.Handler
	InquiryHandler *inquiry.Handler
	DonorsHandler  *donors.Handler
	JobHandler     *jobs.Handler
}

// NewRouter constructs the chi.Router with Odyssey defaults.
func NewRouter(params RouterParams) http.Handler {
	if params.Logger == nil {
		params.Logger = slog.Default()
	}
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	tokenHash := ""
	if params.Config != nil {
		tokenHash = params.Config.RestletTokenHash
	}
	r.Route("/restlets", func(r chi.Router) {
		r.Use(RestletAuth(tokenHash, params.Logger))
		if params.Fulfillment != nil {
			r.Route("/item-fulfillment", func(r chi.Router) {
				fulfillment.MountRoutes(r, *params.Fulfillment)
			})
		}
		if params.SalesHandler != nil {
			r.Route("/sales-orders", params.SalesHandler.MountRoutes)
		}
	})
	if params.InquiryHandler != nil {
		r.Route("/inquiries", params.InquiryHandler.MountRoutes)
	}
	if params.DonorsHandler != nil {
		r.Route("/donors", params.DonorsHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
