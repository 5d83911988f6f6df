package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wimotos/wimotos/internal/viewmodel"
)

var (
	// ErrInvalidPlate indicates a plate that does not normalize to 7 characters.
	ErrInvalidPlate = errors.New("plate must have 7 alphanumeric characters")
	// ErrInvalidStatus indicates a status outside the product enum.
	ErrInvalidStatus = errors.New("invalid product status")
	// ErrNegativePrice indicates a negative cost or sale price.
	ErrNegativePrice = errors.New("prices must not be negative")
)

// Service wraps product business rules.
type Service struct {
	repo  Repository
	store ImageStore
}

// NewService constructs a Service.
func NewService(repo Repository, store ImageStore) *Service {
	return &Service{repo: repo, store: store}
}

// List returns products matching the filters.
func (s *Service) List(ctx context.Context, req ListProductsRequest) ([]Product, error) {
	if req.Status != "" && !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.repo.List(ctx, req)
}

// Get returns one product with its images.
func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a new product. Image URLs must already be saved by the caller.
func (s *Service) Create(ctx context.Context, req UpsertProductRequest, imageURLs []string) (*Product, error) {
	product, err := s.buildProduct(req)
	if err != nil {
		return nil, err
	}
	for _, url := range imageURLs {
		product.Images = append(product.Images, Image{URL: url})
	}

	id, err := s.repo.Create(ctx, *product)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Update replaces the product fields and appends any new image URLs.
func (s *Service) Update(ctx context.Context, id int64, req UpsertProductRequest, imageURLs []string) (*Product, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	product, err := s.buildProduct(req)
	if err != nil {
		return nil, err
	}
	product.ID = id

	if err := s.repo.Update(ctx, *product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	if err := s.repo.AddImages(ctx, id, imageURLs); err != nil {
		return nil, fmt.Errorf("add product images: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// RemoveImage deletes one image row and returns its URL so the caller can
// drop the file from storage.
func (s *Service) RemoveImage(ctx context.Context, productID, imageID int64) (string, error) {
	return s.repo.DeleteImage(ctx, productID, imageID)
}

func (s *Service) buildProduct(req UpsertProductRequest) (*Product, error) {
	if !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if req.CostPrice.IsNegative() || req.SalePrice.IsNegative() {
		return nil, ErrNegativePrice
	}

	var plate *string
	if req.Plate != nil && strings.TrimSpace(*req.Plate) != "" {
		normalized, ok := viewmodel.NormalizePlate(*req.Plate)
		if !ok {
			return nil, ErrInvalidPlate
		}
		plate = &normalized
	}

	return &Product{
		Brand:     strings.TrimSpace(req.Brand),
		Model:     strings.TrimSpace(req.Model),
		Year:      req.Year,
		Plate:     plate,
		Chassi:    strings.ToUpper(strings.TrimSpace(req.Chassi)),
		KM:        req.KM,
		Color:     strings.TrimSpace(req.Color),
		CostPrice: req.CostPrice,
		SalePrice: req.SalePrice,
		Status:    req.Status,
	}, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse price %q: %w", raw, err)
	}
	return d, nil
}
