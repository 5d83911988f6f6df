package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wimotos/wimotos/internal/platform/httpx"
)

// Handler serves the dashboard endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers /dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard/metrics", h.metrics)
}

func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.service.Metrics(r.Context())
	if err != nil {
		h.logger.Error("dashboard metrics", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal error", "failed to compute metrics")
		return
	}
	httpx.JSON(w, http.StatusOK, metrics)
}
