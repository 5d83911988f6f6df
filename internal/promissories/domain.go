package promissories

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates promissory lifecycle states.
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusIssued   Status = "ISSUED"
	StatusPaid     Status = "PAID"
	StatusCanceled Status = "CANCELED"
)

// Valid reports whether the status is one of the closed enum values.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusIssued, StatusPaid, StatusCanceled:
		return true
	}
	return false
}

// Promissory is an installment contract tied to one sale.
type Promissory struct {
	ID          int64           `json:"id"`
	PublicID    string          `json:"public_id"`
	SaleID      *int64          `json:"sale_id"`
	ClientID    int64           `json:"client_id"`
	ProductID   *int64          `json:"product_id"`
	Total       decimal.Decimal `json:"total"`
	EntryAmount decimal.Decimal `json:"entry_amount"`
	Status      Status          `json:"status"`
	IssuedAt    *time.Time      `json:"issued_at"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ListPromissoriesRequest carries listing filters.
type ListPromissoriesRequest struct {
	Status Status
	Limit  int
	Offset int
}
