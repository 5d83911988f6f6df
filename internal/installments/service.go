package installments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wimotos/wimotos/internal/shared"
	"github.com/wimotos/wimotos/internal/viewmodel"
)

var (
	// ErrInvalidStatus indicates a status outside the installment enum.
	ErrInvalidStatus = errors.New("invalid installment status")
	// ErrContractCanceled blocks payment against a canceled contract.
	ErrContractCanceled = errors.New("contract is canceled")
	// ErrInstallmentCanceled blocks payment of a canceled installment.
	ErrInstallmentCanceled = errors.New("installment is canceled")
	// ErrNegativePaidAmount blocks negative payment amounts.
	ErrNegativePaidAmount = errors.New("paid_amount must not be negative")
)

// Service wraps installment business rules.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns installments matching the filters.
func (s *Service) List(ctx context.Context, req ListInstallmentsRequest) ([]Installment, error) {
	if req.Status != "" && !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.repo.List(ctx, req)
}

// Get returns one installment.
func (s *Service) Get(ctx context.Context, id int64) (*Installment, error) {
	return s.repo.Get(ctx, id)
}

// Pay settles a PENDING installment, stamping paid_at and paid_amount.
// Paying an already PAID installment is a no-op. When every installment
// of the contract is PAID the contract itself flips to PAID.
func (s *Service) Pay(ctx context.Context, id int64, req PayInstallmentRequest) (*Installment, error) {
	inst, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	promStatus, err := s.repo.PromissoryStatus(ctx, inst.PromissoryID)
	if err != nil {
		return nil, err
	}
	if promStatus == "CANCELED" {
		return nil, fmt.Errorf("%w: %w", ErrContractCanceled, shared.ErrInvalidTransition)
	}
	switch inst.Status {
	case StatusCanceled:
		return nil, fmt.Errorf("%w: %w", ErrInstallmentCanceled, shared.ErrInvalidTransition)
	case StatusPaid:
		return inst, nil
	}

	amount := inst.Amount
	if req.PaidAmount != nil {
		amount = req.PaidAmount.Round(2)
	}
	if amount.IsNegative() {
		return nil, ErrNegativePaidAmount
	}

	if err := s.repo.Pay(ctx, id, s.now().UTC(), amount, req.Note); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// ByContract groups all installments by their contract, enriched from the
// promissory lookup, optionally filtered by a free-text query over the
// group's visible fields, including the resolved client and vehicle.
func (s *Service) ByContract(ctx context.Context, query string) ([]viewmodel.ContractGroup, error) {
	list, err := s.repo.List(ctx, ListInstallmentsRequest{})
	if err != nil {
		return nil, err
	}
	lookup, err := s.repo.PromissoryLookup(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]viewmodel.InstallmentRow, 0, len(list))
	for _, inst := range list {
		rows = append(rows, inst.Row())
	}

	groups := viewmodel.GroupByContract(rows, lookup)
	if query == "" {
		return groups, nil
	}

	clientsByID, err := s.repo.ClientLookup(ctx)
	if err != nil {
		return nil, err
	}
	productsByID, err := s.repo.ProductLookup(ctx)
	if err != nil {
		return nil, err
	}

	return viewmodel.Filter(query, groups, func(g viewmodel.ContractGroup) []string {
		fields := []string{
			fmt.Sprintf("%d", g.PromissoryID),
			stringOrEmpty(g.PromissoryStatus),
			stringOrEmpty(g.NextDueDate),
		}
		if g.ClientID != nil {
			fields = append(fields, fmt.Sprintf("%d", *g.ClientID))
			if c, ok := clientsByID[*g.ClientID]; ok {
				fields = append(fields, c.Name, c.Phone, c.CPF)
			}
		}
		if g.ProductID != nil {
			if p, ok := productsByID[*g.ProductID]; ok {
				fields = append(fields, p.Brand, p.Model, fmt.Sprintf("%d", p.Year), p.Plate, p.Chassi)
			}
		}
		return fields
	}), nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
