package viewmodel

import (
	"strings"

	"github.com/shopspring/decimal"
)

// The row types below are the flat, denormalized shapes the projections
// consume. Monetary fields stay decimal-as-text exactly as transported;
// dates stay ISO strings. Handlers map their domain records onto these rows
// before aggregating.

type ClientRow struct {
	ID    int64
	Name  string
	Phone string
	CPF   string
}

type ProductRow struct {
	ID        int64
	Brand     string
	Model     string
	Year      int
	Plate     string
	Chassi    string
	Status    string
	SalePrice string
}

type SaleRow struct {
	ID          int64
	Status      string
	Total       string
	Discount    string
	EntryAmount string
}

type PromissoryRow struct {
	ID        int64
	ClientID  int64
	ProductID *int64
	Status    string
}

type InstallmentRow struct {
	ID           int64  `json:"id"`
	PromissoryID int64  `json:"promissory_id"`
	Number       int    `json:"number"`
	DueDate      string `json:"due_date"`
	Amount       string `json:"amount"`
	Status       string `json:"status"`
	PaidAt       string `json:"paid_at,omitempty"`
	PaidAmount   string `json:"paid_amount,omitempty"`
	Note         string `json:"note,omitempty"`
}

// CoerceDecimal parses a decimal-as-text amount, accepting either comma or
// dot as the fraction separator. Anything unparseable coerces to zero.
func CoerceDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
