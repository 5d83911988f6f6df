package viewmodel

import "github.com/shopspring/decimal"

// Metrics is the flat record of dashboard counters and sums. Sums are
// decimals so the JSON stays decimal-as-text.
type Metrics struct {
	ClientsTotal int `json:"clients_total"`

	ProductsTotal int             `json:"products_total"`
	InStock       int             `json:"in_stock"`
	Reserved      int             `json:"reserved"`
	Sold          int             `json:"sold"`
	StockValue    decimal.Decimal `json:"stock_value"`

	SalesTotal       int             `json:"sales_total"`
	SalesConfirmed   int             `json:"sales_confirmed"`
	SalesDraft       int             `json:"sales_draft"`
	SalesCanceled    int             `json:"sales_canceled"`
	RevenueConfirmed decimal.Decimal `json:"revenue_confirmed"`
	DiscountSum      decimal.Decimal `json:"discount_sum"`
	EntrySum         decimal.Decimal `json:"entry_sum"`

	PromissoriesTotal    int `json:"promissories_total"`
	PromissoriesDraft    int `json:"promissories_draft"`
	PromissoriesIssued   int `json:"promissories_issued"`
	PromissoriesPaid     int `json:"promissories_paid"`
	PromissoriesCanceled int `json:"promissories_canceled"`

	InstallmentsTotal    int             `json:"installments_total"`
	InstallmentsPending  int             `json:"installments_pending"`
	InstallmentsPaid     int             `json:"installments_paid"`
	InstallmentsCanceled int             `json:"installments_canceled"`
	PendingValue         decimal.Decimal `json:"pending_value"`
	PaidValue            decimal.Decimal `json:"paid_value"`
}

// Aggregate reduces the five raw collections into dashboard metrics in a
// single pass per collection. It is order independent and tolerates any
// collection still being empty while the others have loaded.
func Aggregate(clients []ClientRow, products []ProductRow, sales []SaleRow, promissories []PromissoryRow, installments []InstallmentRow) Metrics {
	m := Metrics{
		StockValue:       decimal.Zero,
		RevenueConfirmed: decimal.Zero,
		DiscountSum:      decimal.Zero,
		EntrySum:         decimal.Zero,
		PendingValue:     decimal.Zero,
		PaidValue:        decimal.Zero,
	}

	m.ClientsTotal = len(clients)

	for _, p := range products {
		m.ProductsTotal++
		switch p.Status {
		case "IN_STOCK":
			m.InStock++
			m.StockValue = m.StockValue.Add(CoerceDecimal(p.SalePrice))
		case "RESERVED":
			m.Reserved++
		case "SOLD":
			m.Sold++
		}
	}

	for _, s := range sales {
		m.SalesTotal++
		switch s.Status {
		case "CONFIRMED":
			m.SalesConfirmed++
			m.RevenueConfirmed = m.RevenueConfirmed.Add(CoerceDecimal(s.Total))
		case "DRAFT":
			m.SalesDraft++
		case "CANCELED":
			m.SalesCanceled++
		}
		m.DiscountSum = m.DiscountSum.Add(CoerceDecimal(s.Discount))
		m.EntrySum = m.EntrySum.Add(CoerceDecimal(s.EntryAmount))
	}

	for _, p := range promissories {
		m.PromissoriesTotal++
		switch p.Status {
		case "DRAFT":
			m.PromissoriesDraft++
		case "ISSUED":
			m.PromissoriesIssued++
		case "PAID":
			m.PromissoriesPaid++
		case "CANCELED":
			m.PromissoriesCanceled++
		}
	}

	for _, i := range installments {
		m.InstallmentsTotal++
		switch i.Status {
		case "PENDING":
			m.InstallmentsPending++
			m.PendingValue = m.PendingValue.Add(CoerceDecimal(i.Amount))
		case "PAID":
			m.InstallmentsPaid++
			m.PaidValue = m.PaidValue.Add(CoerceDecimal(i.PaidAmount))
		case "CANCELED":
			m.InstallmentsCanceled++
		}
	}

	return m
}
