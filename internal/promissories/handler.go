package promissories

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wimotos/wimotos/internal/platform/httpx"
	"github.com/wimotos/wimotos/internal/shared"
)

// Handler serves the promissory endpoints.
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

// MountRoutes registers /promissories routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/promissories", h.list)
	r.Get("/promissories/{id}", h.get)
	r.Post("/promissories/{id}/issue", h.issue)
	r.Patch("/promissories/{id}/cancel", h.cancel)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := ListPromissoriesRequest{
		Status: Status(r.URL.Query().Get("status")),
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}
	list, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, "list promissories")
		return
	}
	if list == nil {
		list = []Promissory{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	prom, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "get promissory")
		return
	}
	httpx.JSON(w, http.StatusOK, prom)
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	prom, err := h.service.Issue(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "issue promissory")
		return
	}
	httpx.JSON(w, http.StatusOK, prom)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	prom, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "cancel promissory")
		return
	}
	httpx.JSON(w, http.StatusOK, prom)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not found", "promissory not found")
	case errors.Is(err, shared.ErrInvalidTransition), errors.Is(err, ErrHasPaidInstallments):
		httpx.Problem(w, http.StatusConflict, "Invalid transition", err.Error())
	case errors.Is(err, ErrInvalidStatus):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal error", op+" failed")
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad request", "invalid promissory id")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
