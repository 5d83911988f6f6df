package installments

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wimotos/wimotos/internal/viewmodel"
)

// Status enumerates installment lifecycle states.
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

// ReminderState tracks one WhatsApp reminder lane for an installment.
type ReminderState struct {
	Status      string     `json:"status"`
	Tries       int        `json:"tries"`
	LastError   *string    `json:"last_error"`
	SentAt      *time.Time `json:"sent_at"`
	NextRetryAt *time.Time `json:"next_retry_at"`
}

// Installment is one scheduled or paid portion of a contract.
type Installment struct {
	ID           int64            `json:"id"`
	PromissoryID int64            `json:"promissory_id"`
	Number       int              `json:"number"`
	DueDate      time.Time        `json:"due_date"`
	Amount       decimal.Decimal  `json:"amount"`
	Status       Status           `json:"status"`
	PaidAt       *time.Time       `json:"paid_at"`
	PaidAmount   *decimal.Decimal `json:"paid_amount"`
	Note         *string          `json:"note"`

	DueReminder     ReminderState `json:"due_reminder"`
	OverdueReminder ReminderState `json:"overdue_reminder"`

	CreatedAt time.Time `json:"created_at"`
}

// Row flattens the installment into the shape the projections consume.
func (i Installment) Row() viewmodel.InstallmentRow {
	row := viewmodel.InstallmentRow{
		ID:           i.ID,
		PromissoryID: i.PromissoryID,
		Number:       i.Number,
		DueDate:      i.DueDate.Format("2006-01-02"),
		Amount:       i.Amount.StringFixed(2),
		Status:       string(i.Status),
	}
	if i.PaidAt != nil {
		row.PaidAt = i.PaidAt.Format(time.RFC3339)
	}
	if i.PaidAmount != nil {
		row.PaidAmount = i.PaidAmount.StringFixed(2)
	}
	if i.Note != nil {
		row.Note = *i.Note
	}
	return row
}

// PayInstallmentRequest is the payment payload. A missing paid_amount
// defaults to the installment amount.
type PayInstallmentRequest struct {
	PaidAmount *decimal.Decimal `json:"paid_amount" validate:"-"`
	Note       *string          `json:"note" validate:"omitempty,max=500"`
}

// ListInstallmentsRequest carries listing filters.
type ListInstallmentsRequest struct {
	Status       Status
	PromissoryID *int64
	Limit        int
	Offset       int
}
