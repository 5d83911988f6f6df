package sales

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/wimotos/wimotos/internal/shared"
)

type memoryRepo struct {
	rows     map[int64]Sale
	plans    map[int64]PromissoryPlan
	nextID   int64
	nextProm int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: make(map[int64]Sale), plans: make(map[int64]PromissoryPlan)}
}

func (r *memoryRepo) List(ctx context.Context, req ListSalesRequest) ([]Sale, int64, error) {
	var out []Sale
	for _, s := range r.rows {
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Sale, error) {
	s, ok := r.rows[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &s, nil
}

func (r *memoryRepo) CreateSale(ctx context.Context, sale Sale, plan *PromissoryPlan) (int64, *int64, error) {
	r.nextID++
	sale.ID = r.nextID
	r.rows[sale.ID] = sale

	if plan == nil {
		return sale.ID, nil, nil
	}
	r.nextProm++
	promID := r.nextProm
	r.plans[promID] = *plan
	return sale.ID, &promID, nil
}

func (r *memoryRepo) SetStatus(ctx context.Context, id int64, status Status) error {
	s, ok := r.rows[id]
	if !ok {
		return shared.ErrNotFound
	}
	s.Status = status
	r.rows[id] = s
	return nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decptr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strptr(s string) *string { return &s }

func newTestService(repo Repository) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time {
		return time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func cashRequest() CreateSaleRequest {
	return CreateSaleRequest{
		ClientID:    1,
		UserID:      1,
		ProductID:   1,
		Total:       dec("62000.00"),
		Discount:    dec("0.00"),
		PaymentType: PaymentCash,
	}
}

func TestCreateCashSaleHasNoPromissory(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	result, err := svc.Create(context.Background(), cashRequest())
	require.NoError(t, err)
	require.Nil(t, result.PromissoryID)
	require.Equal(t, StatusDraft, result.Sale.Status)
	require.Contains(t, result.Sale.PublicID, "VEN-")
	require.Empty(t, repo.plans)
}

func TestCreateRejectsNonPositiveTotal(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	req := cashRequest()
	req.Total = dec("0")
	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestCreateRejectsUnknownPaymentType(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	req := cashRequest()
	req.PaymentType = PaymentType("BARTER")
	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrInvalidPaymentType)
}

func TestCreatePromissoryBuildsEvenPlan(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	req := cashRequest()
	req.PaymentType = PaymentPromissory
	req.Total = dec("1200.00")
	req.EntryAmount = decptr("200.00")
	req.InstallmentsCount = 10

	result, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result.PromissoryID)

	plan := repo.plans[*result.PromissoryID]
	require.Contains(t, plan.PublicID, "PROM-")
	require.Len(t, plan.Installments, 10)
	for i, inst := range plan.Installments {
		require.Equal(t, i+1, inst.Number)
		require.True(t, inst.Amount.Equal(dec("100.00")), "installment %d: %s", i+1, inst.Amount)
	}
}

func TestCreatePromissoryFoldsRoundingIntoLastInstallment(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	req := cashRequest()
	req.PaymentType = PaymentPromissory
	req.Total = dec("100.00")
	req.InstallmentsCount = 3

	result, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	plan := repo.plans[*result.PromissoryID]
	require.Len(t, plan.Installments, 3)

	sum := decimal.Zero
	for _, inst := range plan.Installments {
		sum = sum.Add(inst.Amount)
	}
	require.True(t, sum.Equal(dec("100.00")), "sum: %s", sum)
	require.True(t, plan.Installments[0].Amount.Equal(plan.Installments[1].Amount))
	require.False(t, plan.Installments[2].Amount.Equal(plan.Installments[0].Amount))
}

func TestCreatePromissoryDueDatesAdvanceMonthly(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	req := cashRequest()
	req.PaymentType = PaymentPromissory
	req.Total = dec("300.00")
	req.InstallmentsCount = 3

	result, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	plan := repo.plans[*result.PromissoryID]
	require.Equal(t, time.Date(2025, time.February, 15, 0, 0, 0, 0, time.UTC), plan.Installments[0].DueDate)
	require.Equal(t, time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC), plan.Installments[1].DueDate)
	require.Equal(t, time.Date(2025, time.April, 15, 0, 0, 0, 0, time.UTC), plan.Installments[2].DueDate)
}

func TestCreatePromissoryHonorsFirstDueDateOverride(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	req := cashRequest()
	req.PaymentType = PaymentPromissory
	req.Total = dec("200.00")
	req.InstallmentsCount = 2
	req.FirstDueDate = strptr("2025-01-31")

	result, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	plan := repo.plans[*result.PromissoryID]
	require.Equal(t, time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC), plan.Installments[0].DueDate)
	// clamps to the end of February
	require.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), plan.Installments[1].DueDate)
}

func TestCreatePromissoryRequiresInstallmentsCount(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	req := cashRequest()
	req.PaymentType = PaymentPromissory
	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrInstallmentsRequired)
}

func TestCreatePromissoryRejectsEntryAboveTotal(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	req := cashRequest()
	req.PaymentType = PaymentPromissory
	req.Total = dec("100.00")
	req.EntryAmount = decptr("150.00")
	req.InstallmentsCount = 2
	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrEntryExceedsTotal)
}

func TestUpdateStatusDraftToConfirmed(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	result, err := svc.Create(context.Background(), cashRequest())
	require.NoError(t, err)

	sale, err := svc.UpdateStatus(context.Background(), result.Sale.ID, StatusConfirmed)
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, sale.Status)
}

func TestUpdateStatusIsIdempotent(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	result, err := svc.Create(context.Background(), cashRequest())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), result.Sale.ID, StatusConfirmed)
	require.NoError(t, err)

	sale, err := svc.UpdateStatus(context.Background(), result.Sale.ID, StatusConfirmed)
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, sale.Status)
}

func TestUpdateStatusRejectsConfirmedToCanceled(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	result, err := svc.Create(context.Background(), cashRequest())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), result.Sale.ID, StatusConfirmed)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), result.Sale.ID, StatusCanceled)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestAddMonthsClampsToShorterMonths(t *testing.T) {
	jan31 := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), addMonths(jan31, 1))

	jan31leap := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), addMonths(jan31leap, 1))

	require.Equal(t, time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC), addMonths(jan31, 2))
}
