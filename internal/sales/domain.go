package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates sale lifecycle states.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusConfirmed Status = "CONFIRMED"
	StatusCanceled  Status = "CANCELED"
)

// Valid reports whether the status is one of the closed enum values.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusConfirmed, StatusCanceled:
		return true
	}
	return false
}

// PaymentType enumerates the accepted payment methods.
type PaymentType string

const (
	PaymentCash       PaymentType = "CASH"
	PaymentPix        PaymentType = "PIX"
	PaymentCard       PaymentType = "CARD"
	PaymentPromissory PaymentType = "PROMISSORY"
)

// Valid reports whether the payment type is one of the closed enum values.
func (p PaymentType) Valid() bool {
	switch p {
	case PaymentCash, PaymentPix, PaymentCard, PaymentPromissory:
		return true
	}
	return false
}

// Sale records one vehicle sale. Monetary fields travel as decimal-as-text.
type Sale struct {
	ID          int64            `json:"id"`
	PublicID    string           `json:"public_id"`
	ClientID    int64            `json:"client_id"`
	UserID      int64            `json:"user_id"`
	ProductID   int64            `json:"product_id"`
	Total       decimal.Decimal  `json:"total"`
	Discount    decimal.Decimal  `json:"discount"`
	EntryAmount *decimal.Decimal `json:"entry_amount"`
	PaymentType PaymentType      `json:"payment_type"`
	Status      Status           `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
}

// InstallmentPlan is one scheduled installment of a promissory plan.
type InstallmentPlan struct {
	Number  int
	DueDate time.Time
	Amount  decimal.Decimal
}

// PromissoryPlan is the contract created alongside a PROMISSORY sale.
// The repository persists it in the same transaction as the sale.
type PromissoryPlan struct {
	PublicID     string
	Total        decimal.Decimal
	EntryAmount  decimal.Decimal
	Installments []InstallmentPlan
}

// CreateSaleRequest is the sale creation payload.
type CreateSaleRequest struct {
	ClientID          int64            `json:"client_id" validate:"required,gt=0"`
	UserID            int64            `json:"user_id" validate:"omitempty,gt=0"`
	ProductID         int64            `json:"product_id" validate:"required,gt=0"`
	Total             decimal.Decimal  `json:"total" validate:"-"`
	Discount          decimal.Decimal  `json:"discount" validate:"-"`
	EntryAmount       *decimal.Decimal `json:"entry_amount" validate:"-"`
	PaymentType       PaymentType      `json:"payment_type" validate:"required"`
	InstallmentsCount int              `json:"installments_count" validate:"omitempty,gte=1,lte=60"`
	FirstDueDate      *string          `json:"first_due_date" validate:"omitempty,datetime=2006-01-02"`
}

// CreateSaleResult pairs the stored sale with the promissory id created
// for PROMISSORY sales, nil otherwise.
type CreateSaleResult struct {
	Sale         *Sale  `json:"sale"`
	PromissoryID *int64 `json:"promissory_id"`
}

// ListSalesRequest carries listing filters.
type ListSalesRequest struct {
	ClientID    *int64
	UserID      *int64
	ProductID   *int64
	PaymentType PaymentType
	DateFrom    *time.Time
	DateTo      *time.Time
	Page        int
	PageSize    int
}
