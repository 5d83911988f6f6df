package finance

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/wimotos/wimotos/internal/platform/httpx"
	"github.com/wimotos/wimotos/internal/shared"
)

// Handler serves the accounts payable endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers /finance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/finance", h.list)
	r.Post("/finance", h.create)
	r.Get("/finance/{id}", h.get)
	r.Put("/finance/{id}", h.update)
	r.Post("/finance/{id}/pay", h.pay)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := ListPayablesRequest{
		Status:  Status(r.URL.Query().Get("status")),
		Company: r.URL.Query().Get("company"),
		Limit:   queryInt(r, "limit", 50),
		Offset:  queryInt(r, "offset", 0),
	}
	list, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, "list payables")
		return
	}
	if list == nil {
		list = []Payable{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	payable, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "get payable")
		return
	}
	httpx.JSON(w, http.StatusOK, payable)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreatePayableRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
		return
	}

	payable, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, "create payable")
		return
	}
	httpx.JSON(w, http.StatusCreated, payable)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req UpdatePayableRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
		return
	}

	payable, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.respondServiceError(w, err, "update payable")
		return
	}
	httpx.JSON(w, http.StatusOK, payable)
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req PayPayableRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad request", "invalid JSON body")
			return
		}
	}

	payable, err := h.service.Pay(r.Context(), id, req)
	if err != nil {
		h.respondServiceError(w, err, "pay payable")
		return
	}
	httpx.JSON(w, http.StatusOK, payable)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not found", "payable not found")
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidAmount):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal error", op+" failed")
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad request", "invalid payable id")
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
