package promissories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wimotos/wimotos/internal/shared"
)

var (
	// ErrInvalidStatus indicates a status outside the promissory enum.
	ErrInvalidStatus = errors.New("invalid promissory status")
	// ErrHasPaidInstallments blocks cancellation of contracts with payments.
	ErrHasPaidInstallments = errors.New("contract has paid installments")
)

// Service wraps promissory business rules.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns promissories matching the filters.
func (s *Service) List(ctx context.Context, req ListPromissoriesRequest) ([]Promissory, error) {
	if req.Status != "" && !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.repo.List(ctx, req)
}

// Get returns one promissory.
func (s *Service) Get(ctx context.Context, id int64) (*Promissory, error) {
	return s.repo.Get(ctx, id)
}

// Issue moves a DRAFT contract to ISSUED and stamps issued_at. Issuing an
// already ISSUED or PAID contract is a no-op; CANCELED contracts refuse.
func (s *Service) Issue(ctx context.Context, id int64) (*Promissory, error) {
	prom, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch prom.Status {
	case StatusCanceled:
		return nil, fmt.Errorf("canceled contract cannot be issued: %w", shared.ErrInvalidTransition)
	case StatusIssued, StatusPaid:
		return prom, nil
	}

	if err := s.repo.MarkIssued(ctx, id, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Cancel moves a DRAFT or ISSUED contract to CANCELED and cancels its
// PENDING installments. Contracts with any paid installment, or already
// PAID, refuse; repeating a cancel is a no-op.
func (s *Service) Cancel(ctx context.Context, id int64) (*Promissory, error) {
	prom, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch prom.Status {
	case StatusCanceled:
		return prom, nil
	case StatusPaid:
		return nil, fmt.Errorf("paid contract cannot be canceled: %w", shared.ErrInvalidTransition)
	}

	statuses, err := s.repo.InstallmentStatuses(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, st := range statuses {
		if st == "PAID" {
			return nil, ErrHasPaidInstallments
		}
	}

	if err := s.repo.CancelWithInstallments(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}
