package products

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/wimotos/wimotos/internal/platform/httpx"
	"github.com/wimotos/wimotos/internal/shared"
	"github.com/wimotos/wimotos/internal/viewmodel"
)

const maxUploadBytes = 32 << 20

// Handler serves the product endpoints. Create and update accept
// multipart forms so image uploads ride with the fields.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	store    ImageStore
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, store ImageStore) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, store: store, validate: validator.New()}
}

// MountRoutes registers /products routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products", h.list)
	r.Post("/products", h.create)
	r.Get("/products/{id}", h.get)
	r.Put("/products/{id}", h.update)
	r.Delete("/products/{id}/images/{imageID}", h.removeImage)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := ListProductsRequest{
		Status: Status(r.URL.Query().Get("status")),
		Search: r.URL.Query().Get("search"),
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}
	list, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, "list products")
		return
	}
	if list == nil {
		list = []Product{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad request", "invalid product id")
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "get product")
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, files, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	urls, ok := h.saveUploads(w, files)
	if !ok {
		return
	}

	product, err := h.service.Create(r.Context(), *req, urls)
	if err != nil {
		h.respondServiceError(w, err, "create product")
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad request", "invalid product id")
		return
	}
	req, files, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	urls, ok := h.saveUploads(w, files)
	if !ok {
		return
	}

	product, err := h.service.Update(r.Context(), id, *req, urls)
	if err != nil {
		h.respondServiceError(w, err, "update product")
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) removeImage(w http.ResponseWriter, r *http.Request) {
	productID, err1 := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	imageID, err2 := strconv.ParseInt(chi.URLParam(r, "imageID"), 10, 64)
	if err1 != nil || err2 != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad request", "invalid id")
		return
	}

	if _, err := h.service.RemoveImage(r.Context(), productID, imageID); err != nil {
		h.respondServiceError(w, err, "remove product image")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) (*UpsertProductRequest, []*multipart.FileHeader, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad request", "invalid multipart form")
		return nil, nil, false
	}

	year, _ := strconv.Atoi(r.FormValue("year"))
	req := UpsertProductRequest{
		Brand:     r.FormValue("brand"),
		Model:     r.FormValue("model"),
		Year:      year,
		Chassi:    r.FormValue("chassi"),
		Color:     r.FormValue("color"),
		CostPrice: viewmodel.CoerceDecimal(r.FormValue("cost_price")),
		SalePrice: viewmodel.CoerceDecimal(r.FormValue("sale_price")),
		Status:    Status(r.FormValue("status")),
	}
	if plate := r.FormValue("plate"); plate != "" {
		req.Plate = &plate
	}
	if raw := r.FormValue("km"); raw != "" {
		km, err := strconv.Atoi(raw)
		if err != nil {
			httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", "km must be an integer")
			return nil, nil, false
		}
		req.KM = &km
	}

	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
		return nil, nil, false
	}

	var files []*multipart.FileHeader
	if r.MultipartForm != nil {
		files = r.MultipartForm.File["images"]
	}
	return &req, files, true
}

func (h *Handler) saveUploads(w http.ResponseWriter, files []*multipart.FileHeader) ([]string, bool) {
	var urls []string
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad request", "unreadable upload")
			return nil, false
		}
		url, err := h.store.Save(fh.Filename, f)
		f.Close()
		if err != nil {
			h.logger.Error("save upload", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal error", "failed to store image")
			return nil, false
		}
		urls = append(urls, url)
	}
	return urls, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not found", "product not found")
	case errors.Is(err, ErrInvalidPlate), errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrNegativePrice):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal error", op+" failed")
	}
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
