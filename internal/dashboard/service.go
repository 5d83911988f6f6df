package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/wimotos/wimotos/internal/viewmodel"
)

// Service computes dashboard metrics over the raw collections.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Metrics loads the five collections concurrently and reduces them.
func (s *Service) Metrics(ctx context.Context) (*viewmodel.Metrics, error) {
	var (
		clients      []viewmodel.ClientRow
		products     []viewmodel.ProductRow
		sales        []viewmodel.SaleRow
		promissories []viewmodel.PromissoryRow
		installments []viewmodel.InstallmentRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { clients, err = s.repo.Clients(gctx); return })
	g.Go(func() (err error) { products, err = s.repo.Products(gctx); return })
	g.Go(func() (err error) { sales, err = s.repo.Sales(gctx); return })
	g.Go(func() (err error) { promissories, err = s.repo.Promissories(gctx); return })
	g.Go(func() (err error) { installments, err = s.repo.Installments(gctx); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	metrics := viewmodel.Aggregate(clients, products, sales, promissories, installments)
	return &metrics, nil
}
