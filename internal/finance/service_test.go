package finance

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/wimotos/wimotos/internal/shared"
)

type memoryRepo struct {
	rows   map[int64]Payable
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: make(map[int64]Payable)}
}

func (r *memoryRepo) List(ctx context.Context, req ListPayablesRequest) ([]Payable, error) {
	var out []Payable
	for _, p := range r.rows {
		if req.Status != "" && p.Status != req.Status {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Payable, error) {
	p, ok := r.rows[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &p, nil
}

func (r *memoryRepo) Create(ctx context.Context, payable Payable) (int64, error) {
	r.nextID++
	payable.ID = r.nextID
	r.rows[payable.ID] = payable
	return payable.ID, nil
}

func (r *memoryRepo) Update(ctx context.Context, payable Payable) error {
	existing, ok := r.rows[payable.ID]
	if !ok {
		return shared.ErrNotFound
	}
	payable.Reminder = existing.Reminder
	r.rows[payable.ID] = payable
	return nil
}

func (r *memoryRepo) MarkPaid(ctx context.Context, id int64, paidAt time.Time) error {
	p, ok := r.rows[id]
	if !ok {
		return shared.ErrNotFound
	}
	p.Status = StatusPaid
	p.Reminder.Status = "SENT"
	p.Reminder.SentAt = &paidAt
	p.Reminder.NextRetryAt = nil
	p.Reminder.LastError = nil
	r.rows[id] = p
	return nil
}

func strptr(s string) *string { return &s }

func createRequest() CreatePayableRequest {
	return CreatePayableRequest{
		Company: " Seguradora Alfa ",
		Amount:  decimal.RequireFromString("1200.555"),
		DueDate: "2025-09-10",
	}
}

func TestCreateDefaultsToPending(t *testing.T) {
	svc := NewService(newMemoryRepo())

	payable, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)
	require.Equal(t, StatusPending, payable.Status)
	require.Equal(t, "Seguradora Alfa", payable.Company)
	require.True(t, payable.Amount.Equal(decimal.RequireFromString("1200.56")))
	require.Equal(t, "PENDING", payable.Reminder.Status)
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	svc := NewService(newMemoryRepo())

	req := createRequest()
	req.Status = Status("OVERDUE")
	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCreateRejectsNegativeAmount(t *testing.T) {
	svc := NewService(newMemoryRepo())

	req := createRequest()
	req.Amount = decimal.RequireFromString("-10")
	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, UpdatePayableRequest{
		Notes: strptr("parcelado em 2x"),
	})
	require.NoError(t, err)
	require.Equal(t, "Seguradora Alfa", updated.Company)
	require.NotNil(t, updated.Notes)
	require.Equal(t, "parcelado em 2x", *updated.Notes)
}

func TestPaySettlesAndRetiresReminder(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	paid, err := svc.Pay(context.Background(), created.ID, PayPayableRequest{})
	require.NoError(t, err)
	require.Equal(t, StatusPaid, paid.Status)
	require.Equal(t, "SENT", paid.Reminder.Status)
	require.NotNil(t, paid.Reminder.SentAt)
	require.Nil(t, paid.Reminder.NextRetryAt)
}

func TestPayUnknownPayable(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Pay(context.Background(), 404, PayPayableRequest{})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.List(context.Background(), ListPayablesRequest{Status: Status("LATE")})
	require.ErrorIs(t, err, ErrInvalidStatus)
}
