package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates product lifecycle states.
type Status string

const (
	StatusInStock  Status = "IN_STOCK"
	StatusReserved Status = "RESERVED"
	StatusSold     Status = "SOLD"
)

// Valid reports whether the status is one of the closed enum values.
func (s Status) Valid() bool {
	switch s {
	case StatusInStock, StatusReserved, StatusSold:
		return true
	}
	return false
}

// Image is an ordered product photo reference.
type Image struct {
	ID       int64  `json:"id"`
	URL      string `json:"url"`
	Position int    `json:"position"`
}

// Product is a vehicle in inventory. Prices travel as decimal-as-text.
type Product struct {
	ID        int64           `json:"id"`
	Brand     string          `json:"brand"`
	Model     string          `json:"model"`
	Year      int             `json:"year"`
	Plate     *string         `json:"plate"`
	Chassi    string          `json:"chassi"`
	KM        *int            `json:"km"`
	Color     string          `json:"color"`
	CostPrice decimal.Decimal `json:"cost_price"`
	SalePrice decimal.Decimal `json:"sale_price"`
	Status    Status          `json:"status"`
	Images    []Image         `json:"images"`
	CreatedAt time.Time       `json:"created_at"`
}

// UpsertProductRequest is the parsed multipart payload shared by create
// and update. Image uploads ride alongside it.
type UpsertProductRequest struct {
	Brand     string          `validate:"required,max=60"`
	Model     string          `validate:"required,max=80"`
	Year      int             `validate:"required,gte=1900,lte=2100"`
	Plate     *string         `validate:"-"`
	Chassi    string          `validate:"required,max=30"`
	KM        *int            `validate:"omitempty,gte=0"`
	Color     string          `validate:"required,max=30"`
	CostPrice decimal.Decimal `validate:"-"`
	SalePrice decimal.Decimal `validate:"-"`
	Status    Status          `validate:"required"`
}

// ListProductsRequest carries listing filters.
type ListProductsRequest struct {
	Status Status
	Search string
	Limit  int
	Offset int
}
