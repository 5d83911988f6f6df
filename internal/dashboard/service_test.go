package dashboard

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/wimotos/wimotos/internal/viewmodel"
)

type stubRepo struct {
	clients      []viewmodel.ClientRow
	products     []viewmodel.ProductRow
	sales        []viewmodel.SaleRow
	promissories []viewmodel.PromissoryRow
	installments []viewmodel.InstallmentRow
}

func (s *stubRepo) Clients(ctx context.Context) ([]viewmodel.ClientRow, error) {
	return s.clients, nil
}

func (s *stubRepo) Products(ctx context.Context) ([]viewmodel.ProductRow, error) {
	return s.products, nil
}

func (s *stubRepo) Sales(ctx context.Context) ([]viewmodel.SaleRow, error) {
	return s.sales, nil
}

func (s *stubRepo) Promissories(ctx context.Context) ([]viewmodel.PromissoryRow, error) {
	return s.promissories, nil
}

func (s *stubRepo) Installments(ctx context.Context) ([]viewmodel.InstallmentRow, error) {
	return s.installments, nil
}

func TestMetricsReducesAllCollections(t *testing.T) {
	svc := NewService(&stubRepo{
		clients: []viewmodel.ClientRow{{ID: 1, Name: "Maria"}},
		products: []viewmodel.ProductRow{
			{ID: 1, Status: "IN_STOCK", SalePrice: "50000.00"},
			{ID: 2, Status: "SOLD", SalePrice: "30000.00"},
		},
		sales: []viewmodel.SaleRow{
			{ID: 1, Status: "CONFIRMED", Total: "30000.00", Discount: "500.00"},
		},
		promissories: []viewmodel.PromissoryRow{{ID: 1, ClientID: 1, Status: "ISSUED"}},
		installments: []viewmodel.InstallmentRow{
			{ID: 1, PromissoryID: 1, Status: "PENDING", Amount: "1000,00"},
		},
	})

	m, err := svc.Metrics(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, m.ClientsTotal)
	require.Equal(t, 2, m.ProductsTotal)
	require.True(t, m.StockValue.Equal(decimal.RequireFromString("50000.00")))
	require.Equal(t, 1, m.SalesConfirmed)
	require.True(t, m.RevenueConfirmed.Equal(decimal.RequireFromString("30000.00")))
	require.Equal(t, 1, m.PromissoriesIssued)
	require.True(t, m.PendingValue.Equal(decimal.RequireFromString("1000.00")))
}

func TestMetricsEmptyCollections(t *testing.T) {
	svc := NewService(&stubRepo{})

	m, err := svc.Metrics(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, m.ClientsTotal)
	require.True(t, m.StockValue.IsZero())
}
