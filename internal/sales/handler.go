package sales

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/wimotos/wimotos/internal/platform/httpx"
	"github.com/wimotos/wimotos/internal/shared"
)

// Handler serves the sale endpoints.
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

// MountRoutes registers /sales routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/sales", h.list)
	r.Post("/sales", h.create)
	r.Get("/sales/{id}", h.get)
	r.Patch("/sales/{id}/status", h.updateStatus)
}

type listResponse struct {
	Items []Sale `json:"items"`
	Total int64  `json:"total"`
}

type statusUpdateRequest struct {
	Status Status `json:"status" validate:"required"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := ListSalesRequest{
		ClientID:    queryID(r, "client_id"),
		UserID:      queryID(r, "user_id"),
		ProductID:   queryID(r, "product_id"),
		PaymentType: PaymentType(r.URL.Query().Get("payment_type")),
		DateFrom:    queryDate(r, "date_from"),
		DateTo:      queryDate(r, "date_to"),
		Page:        queryInt(r, "page", 1),
		PageSize:    queryInt(r, "page_size", 20),
	}
	items, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, "list sales")
		return
	}
	if items == nil {
		items = []Sale{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Items: items, Total: total})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad request", "invalid sale id")
		return
	}
	sale, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "get sale")
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad request", "invalid JSON body")
		return
	}
	if req.UserID == 0 {
		if identity, ok := shared.IdentityFromContext(r.Context()); ok {
			req.UserID = identity.UserID
		}
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
		return
	}

	result, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, "create sale")
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad request", "invalid sale id")
		return
	}
	var req statusUpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
		return
	}

	sale, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.respondServiceError(w, err, "update sale status")
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not found", "sale not found")
	case errors.Is(err, shared.ErrInvalidTransition):
		httpx.Problem(w, http.StatusConflict, "Invalid transition", err.Error())
	case errors.Is(err, ErrProductUnavailable):
		httpx.Problem(w, http.StatusConflict, "Product unavailable", err.Error())
	case errors.Is(err, ErrInvalidClient), errors.Is(err, ErrInvalidUser), errors.Is(err, ErrInvalidProduct),
		errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrEntryExceedsTotal),
		errors.Is(err, ErrInstallmentsRequired), errors.Is(err, ErrInvalidPaymentType):
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

func queryDate(r *http.Request, name string) *time.Time {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &t
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
