package promissories

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/wimotos/wimotos/internal/shared"
)

type memoryRepo struct {
	rows         map[int64]Promissory
	installments map[int64][]string
	nextID       int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: make(map[int64]Promissory), installments: make(map[int64][]string)}
}

func (r *memoryRepo) add(status Status, installmentStatuses ...string) int64 {
	r.nextID++
	r.rows[r.nextID] = Promissory{
		ID:       r.nextID,
		PublicID: "PROM-TEST",
		ClientID: 1,
		Total:    decimal.RequireFromString("1000.00"),
		Status:   status,
	}
	r.installments[r.nextID] = installmentStatuses
	return r.nextID
}

func (r *memoryRepo) List(ctx context.Context, req ListPromissoriesRequest) ([]Promissory, error) {
	var out []Promissory
	for _, p := range r.rows {
		if req.Status != "" && p.Status != req.Status {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Promissory, error) {
	p, ok := r.rows[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &p, nil
}

func (r *memoryRepo) InstallmentStatuses(ctx context.Context, promissoryID int64) ([]string, error) {
	return r.installments[promissoryID], nil
}

func (r *memoryRepo) MarkIssued(ctx context.Context, id int64, issuedAt time.Time) error {
	p, ok := r.rows[id]
	if !ok {
		return shared.ErrNotFound
	}
	p.Status = StatusIssued
	p.IssuedAt = &issuedAt
	r.rows[id] = p
	return nil
}

func (r *memoryRepo) CancelWithInstallments(ctx context.Context, id int64) error {
	p, ok := r.rows[id]
	if !ok {
		return shared.ErrNotFound
	}
	p.Status = StatusCanceled
	r.rows[id] = p

	statuses := r.installments[id]
	for i, st := range statuses {
		if st == "PENDING" {
			statuses[i] = "CANCELED"
		}
	}
	return nil
}

func TestIssueDraft(t *testing.T) {
	repo := newMemoryRepo()
	id := repo.add(StatusDraft)
	svc := NewService(repo)

	prom, err := svc.Issue(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, StatusIssued, prom.Status)
	require.NotNil(t, prom.IssuedAt)
}

func TestIssueIsIdempotentOnIssuedAndPaid(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	issued := repo.add(StatusIssued)
	prom, err := svc.Issue(context.Background(), issued)
	require.NoError(t, err)
	require.Equal(t, StatusIssued, prom.Status)

	paid := repo.add(StatusPaid)
	prom, err = svc.Issue(context.Background(), paid)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, prom.Status)
}

func TestIssueRejectsCanceled(t *testing.T) {
	repo := newMemoryRepo()
	id := repo.add(StatusCanceled)
	svc := NewService(repo)

	_, err := svc.Issue(context.Background(), id)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestCancelDraftCancelsPendingInstallments(t *testing.T) {
	repo := newMemoryRepo()
	id := repo.add(StatusDraft, "PENDING", "PENDING")
	svc := NewService(repo)

	prom, err := svc.Cancel(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, StatusCanceled, prom.Status)
	require.Equal(t, []string{"CANCELED", "CANCELED"}, repo.installments[id])
}

func TestCancelIssued(t *testing.T) {
	repo := newMemoryRepo()
	id := repo.add(StatusIssued, "PENDING")
	svc := NewService(repo)

	prom, err := svc.Cancel(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, StatusCanceled, prom.Status)
}

func TestCancelIsIdempotent(t *testing.T) {
	repo := newMemoryRepo()
	id := repo.add(StatusCanceled)
	svc := NewService(repo)

	prom, err := svc.Cancel(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, StatusCanceled, prom.Status)
}

func TestCancelRejectsPaidContract(t *testing.T) {
	repo := newMemoryRepo()
	id := repo.add(StatusPaid)
	svc := NewService(repo)

	_, err := svc.Cancel(context.Background(), id)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestCancelRejectsWhenInstallmentPaid(t *testing.T) {
	repo := newMemoryRepo()
	id := repo.add(StatusIssued, "PAID", "PENDING")
	svc := NewService(repo)

	_, err := svc.Cancel(context.Background(), id)
	require.ErrorIs(t, err, ErrHasPaidInstallments)
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.List(context.Background(), ListPromissoriesRequest{Status: Status("VOID")})
	require.ErrorIs(t, err, ErrInvalidStatus)
}
