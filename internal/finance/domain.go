package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates payable lifecycle states.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusPaid     Status = "PAID"
	StatusCanceled Status = "CANCELED"
)

// Valid reports whether the status is one of the closed enum values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCanceled:
		return true
	}
	return false
}

// ReminderState tracks the WhatsApp reminder for a payable.
type ReminderState struct {
	Status      string     `json:"status"`
	Tries       int        `json:"tries"`
	LastError   *string    `json:"last_error"`
	SentAt      *time.Time `json:"sent_at"`
	NextRetryAt *time.Time `json:"next_retry_at"`
}

// Payable is one account payable owed to a supplier.
type Payable struct {
	ID          int64           `json:"id"`
	Company     string          `json:"company"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     time.Time       `json:"due_date"`
	Status      Status          `json:"status"`
	Description *string         `json:"description"`
	Notes       *string         `json:"notes"`
	Reminder    ReminderState   `json:"reminder"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CreatePayableRequest is the creation payload.
type CreatePayableRequest struct {
	Company     string          `json:"company" validate:"required,max=120"`
	Amount      decimal.Decimal `json:"amount" validate:"-"`
	DueDate     string          `json:"due_date" validate:"required,datetime=2006-01-02"`
	Status      Status          `json:"status" validate:"-"`
	Description *string         `json:"description" validate:"omitempty,max=200"`
	Notes       *string         `json:"notes" validate:"-"`
}

// UpdatePayableRequest applies only the non-nil fields.
type UpdatePayableRequest struct {
	Company     *string          `json:"company" validate:"omitempty,max=120"`
	Amount      *decimal.Decimal `json:"amount" validate:"-"`
	DueDate     *string          `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Status      *Status          `json:"status" validate:"-"`
	Description *string          `json:"description" validate:"omitempty,max=200"`
	Notes       *string          `json:"notes" validate:"-"`
}

// PayPayableRequest optionally overrides the settlement timestamp.
type PayPayableRequest struct {
	PaidAt *time.Time `json:"paid_at"`
}

// ListPayablesRequest carries listing filters.
type ListPayablesRequest struct {
	Status  Status
	Company string
	Limit   int
	Offset  int
}
