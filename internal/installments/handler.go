package installments

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/wimotos/wimotos/internal/platform/httpx"
	"github.com/wimotos/wimotos/internal/shared"
	"github.com/wimotos/wimotos/internal/viewmodel"
)

// Handler serves the installment endpoints.
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

// MountRoutes registers /installments routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/installments", h.list)
	r.Get("/installments/by-contract", h.byContract)
	r.Get("/installments/{id}", h.get)
	r.Post("/installments/{id}/pay", h.pay)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := ListInstallmentsRequest{
		Status:       Status(r.URL.Query().Get("status")),
		PromissoryID: queryID(r, "promissory_id"),
		Limit:        queryInt(r, "limit", 0),
		Offset:       queryInt(r, "offset", 0),
	}
	list, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, "list installments")
		return
	}
	if list == nil {
		list = []Installment{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) byContract(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.ByContract(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.respondServiceError(w, err, "group installments")
		return
	}
	if groups == nil {
		groups = []viewmodel.ContractGroup{}
	}
	httpx.JSON(w, http.StatusOK, groups)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad request", "invalid installment id")
		return
	}
	inst, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "get installment")
		return
	}
	httpx.JSON(w, http.StatusOK, inst)
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad request", "invalid installment id")
		return
	}
	var req PayInstallmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
		return
	}

	inst, err := h.service.Pay(r.Context(), id, req)
	if err != nil {
		h.respondServiceError(w, err, "pay installment")
		return
	}
	httpx.JSON(w, http.StatusOK, inst)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not found", "installment not found")
	case errors.Is(err, shared.ErrInvalidTransition):
		httpx.Problem(w, http.StatusConflict, "Invalid transition", err.Error())
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrNegativePaidAmount):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal error", op+" failed")
	}
}

func queryID(r *http.Request, name string) *int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
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
