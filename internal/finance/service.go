package finance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidStatus indicates a status outside the payable enum.
	ErrInvalidStatus = errors.New("invalid payable status")
	// ErrInvalidAmount indicates a negative amount.
	ErrInvalidAmount = errors.New("amount must not be negative")
)

// Service wraps payable business rules.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns payables matching the filters, soonest due first.
func (s *Service) List(ctx context.Context, req ListPayablesRequest) ([]Payable, error) {
	if req.Status != "" && !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.repo.List(ctx, req)
}

// Get returns one payable.
func (s *Service) Get(ctx context.Context, id int64) (*Payable, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a new payable, defaulting to PENDING with a fresh
// reminder state.
func (s *Service) Create(ctx context.Context, req CreatePayableRequest) (*Payable, error) {
	status := req.Status
	if status == "" {
		status = StatusPending
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if req.Amount.IsNegative() {
		return nil, ErrInvalidAmount
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return nil, fmt.Errorf("parse due_date: %w", err)
	}

	payable := Payable{
		Company:     strings.TrimSpace(req.Company),
		Amount:      req.Amount.Round(2),
		DueDate:     dueDate,
		Status:      status,
		Description: req.Description,
		Notes:       req.Notes,
		Reminder:    ReminderState{Status: "PENDING"},
	}
	id, err := s.repo.Create(ctx, payable)
	if err != nil {
		return nil, fmt.Errorf("create payable: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Update applies the non-nil fields and returns the stored row.
func (s *Service) Update(ctx context.Context, id int64, req UpdatePayableRequest) (*Payable, error) {
	payable, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Company != nil {
		payable.Company = strings.TrimSpace(*req.Company)
	}
	if req.Amount != nil {
		if req.Amount.IsNegative() {
			return nil, ErrInvalidAmount
		}
		payable.Amount = req.Amount.Round(2)
	}
	if req.DueDate != nil {
		dueDate, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("parse due_date: %w", err)
		}
		payable.DueDate = dueDate
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		payable.Status = *req.Status
	}
	if req.Description != nil {
		payable.Description = req.Description
	}
	if req.Notes != nil {
		payable.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, *payable); err != nil {
		return nil, fmt.Errorf("update payable: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Pay settles the payable and retires its reminder so the worker never
// chases a bill that is already paid.
func (s *Service) Pay(ctx context.Context, id int64, req PayPayableRequest) (*Payable, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	paidAt := s.now().UTC()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}
	if err := s.repo.MarkPaid(ctx, id, paidAt); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}
