package installments

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/wimotos/wimotos/internal/shared"
	"github.com/wimotos/wimotos/internal/viewmodel"
)

type memoryRepo struct {
	rows        map[int64]Installment
	promissory  map[int64]viewmodel.PromissoryRow
	promStatus  map[int64]string
	clients     map[int64]viewmodel.ClientRow
	products    map[int64]viewmodel.ProductRow
	nextID      int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		rows:       make(map[int64]Installment),
		promissory: make(map[int64]viewmodel.PromissoryRow),
		promStatus: make(map[int64]string),
		clients:    make(map[int64]viewmodel.ClientRow),
		products:   make(map[int64]viewmodel.ProductRow),
	}
}

func (r *memoryRepo) addContract(promissoryID int64, status string, clientID int64) {
	r.promStatus[promissoryID] = status
	r.promissory[promissoryID] = viewmodel.PromissoryRow{ID: promissoryID, ClientID: clientID, Status: status}
}

func (r *memoryRepo) addClient(id int64, name, phone, cpf string) {
	r.clients[id] = viewmodel.ClientRow{ID: id, Name: name, Phone: phone, CPF: cpf}
}

func (r *memoryRepo) addProduct(id int64, brand, model, plate string) {
	r.products[id] = viewmodel.ProductRow{ID: id, Brand: brand, Model: model, Plate: plate}
}

func (r *memoryRepo) linkProduct(promissoryID, productID int64) {
	p := r.promissory[promissoryID]
	p.ProductID = &productID
	r.promissory[promissoryID] = p
}

func (r *memoryRepo) addInstallment(promissoryID int64, number int, due string, amount string, status Status) int64 {
	r.nextID++
	dueDate, _ := time.Parse("2006-01-02", due)
	r.rows[r.nextID] = Installment{
		ID:           r.nextID,
		PromissoryID: promissoryID,
		Number:       number,
		DueDate:      dueDate,
		Amount:       decimal.RequireFromString(amount),
		Status:       status,
	}
	return r.nextID
}

func (r *memoryRepo) List(ctx context.Context, req ListInstallmentsRequest) ([]Installment, error) {
	var out []Installment
	for _, i := range r.rows {
		if req.Status != "" && i.Status != req.Status {
			continue
		}
		out = append(out, i)
	}
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Installment, error) {
	i, ok := r.rows[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &i, nil
}

func (r *memoryRepo) PromissoryStatus(ctx context.Context, promissoryID int64) (string, error) {
	st, ok := r.promStatus[promissoryID]
	if !ok {
		return "", shared.ErrNotFound
	}
	return st, nil
}

func (r *memoryRepo) PromissoryLookup(ctx context.Context) (map[int64]viewmodel.PromissoryRow, error) {
	return r.promissory, nil
}

func (r *memoryRepo) ClientLookup(ctx context.Context) (map[int64]viewmodel.ClientRow, error) {
	return r.clients, nil
}

func (r *memoryRepo) ProductLookup(ctx context.Context) (map[int64]viewmodel.ProductRow, error) {
	return r.products, nil
}

func (r *memoryRepo) Pay(ctx context.Context, id int64, paidAt time.Time, amount decimal.Decimal, note *string) error {
	i, ok := r.rows[id]
	if !ok {
		return shared.ErrNotFound
	}
	if i.Status != StatusPending {
		return shared.ErrInvalidTransition
	}
	i.Status = StatusPaid
	i.PaidAt = &paidAt
	i.PaidAmount = &amount
	if note != nil {
		i.Note = note
	}
	r.rows[id] = i

	allPaid := true
	for _, sib := range r.rows {
		if sib.PromissoryID == i.PromissoryID && sib.Status != StatusPaid {
			allPaid = false
		}
	}
	if allPaid {
		r.promStatus[i.PromissoryID] = "PAID"
	}
	return nil
}

func strptr(s string) *string { return &s }

func TestPayPendingInstallment(t *testing.T) {
	repo := newMemoryRepo()
	repo.addContract(10, "ISSUED", 1)
	id := repo.addInstallment(10, 1, "2025-02-01", "100.00", StatusPending)
	otherID := repo.addInstallment(10, 2, "2025-03-01", "100.00", StatusPending)
	svc := NewService(repo)

	inst, err := svc.Pay(context.Background(), id, PayInstallmentRequest{Note: strptr("pix")})
	require.NoError(t, err)
	require.Equal(t, StatusPaid, inst.Status)
	require.NotNil(t, inst.PaidAt)
	require.NotNil(t, inst.PaidAmount)
	require.True(t, inst.PaidAmount.Equal(decimal.RequireFromString("100.00")))
	require.Equal(t, "pix", *inst.Note)

	// the other installment stays pending, so the contract does not flip
	require.Equal(t, "ISSUED", repo.promStatus[10])
	_ = otherID
}

func TestPayDefaultsToInstallmentAmount(t *testing.T) {
	repo := newMemoryRepo()
	repo.addContract(10, "ISSUED", 1)
	id := repo.addInstallment(10, 1, "2025-02-01", "150.50", StatusPending)
	svc := NewService(repo)

	inst, err := svc.Pay(context.Background(), id, PayInstallmentRequest{})
	require.NoError(t, err)
	require.True(t, inst.PaidAmount.Equal(decimal.RequireFromString("150.50")))
}

func TestPayAcceptsExplicitAmount(t *testing.T) {
	repo := newMemoryRepo()
	repo.addContract(10, "ISSUED", 1)
	id := repo.addInstallment(10, 1, "2025-02-01", "150.50", StatusPending)
	svc := NewService(repo)

	amount := decimal.RequireFromString("140.00")
	inst, err := svc.Pay(context.Background(), id, PayInstallmentRequest{PaidAmount: &amount})
	require.NoError(t, err)
	require.True(t, inst.PaidAmount.Equal(amount))
}

func TestPayLastInstallmentSettlesContract(t *testing.T) {
	repo := newMemoryRepo()
	repo.addContract(10, "ISSUED", 1)
	first := repo.addInstallment(10, 1, "2025-02-01", "100.00", StatusPaid)
	last := repo.addInstallment(10, 2, "2025-03-01", "100.00", StatusPending)
	svc := NewService(repo)

	_, err := svc.Pay(context.Background(), last, PayInstallmentRequest{})
	require.NoError(t, err)
	require.Equal(t, "PAID", repo.promStatus[10])
	_ = first
}

func TestPayIsIdempotent(t *testing.T) {
	repo := newMemoryRepo()
	repo.addContract(10, "ISSUED", 1)
	id := repo.addInstallment(10, 1, "2025-02-01", "100.00", StatusPaid)
	svc := NewService(repo)

	inst, err := svc.Pay(context.Background(), id, PayInstallmentRequest{})
	require.NoError(t, err)
	require.Equal(t, StatusPaid, inst.Status)
}

func TestPayRejectsCanceledInstallment(t *testing.T) {
	repo := newMemoryRepo()
	repo.addContract(10, "ISSUED", 1)
	id := repo.addInstallment(10, 1, "2025-02-01", "100.00", StatusCanceled)
	svc := NewService(repo)

	_, err := svc.Pay(context.Background(), id, PayInstallmentRequest{})
	require.ErrorIs(t, err, ErrInstallmentCanceled)
}

func TestPayRejectsCanceledContract(t *testing.T) {
	repo := newMemoryRepo()
	repo.addContract(10, "CANCELED", 1)
	id := repo.addInstallment(10, 1, "2025-02-01", "100.00", StatusPending)
	svc := NewService(repo)

	_, err := svc.Pay(context.Background(), id, PayInstallmentRequest{})
	require.ErrorIs(t, err, ErrContractCanceled)
}

func TestPayRejectsNegativeAmount(t *testing.T) {
	repo := newMemoryRepo()
	repo.addContract(10, "ISSUED", 1)
	id := repo.addInstallment(10, 1, "2025-02-01", "100.00", StatusPending)
	svc := NewService(repo)

	amount := decimal.RequireFromString("-5")
	_, err := svc.Pay(context.Background(), id, PayInstallmentRequest{PaidAmount: &amount})
	require.ErrorIs(t, err, ErrNegativePaidAmount)
}

func TestByContractGroupsAndOrders(t *testing.T) {
	repo := newMemoryRepo()
	repo.addContract(10, "ISSUED", 7)
	repo.addContract(20, "ISSUED", 8)
	repo.addInstallment(10, 1, "2025-05-01", "100.00", StatusPending)
	repo.addInstallment(20, 1, "2025-02-01", "200.00", StatusPending)
	svc := NewService(repo)

	groups, err := svc.ByContract(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	require.Equal(t, int64(20), groups[0].PromissoryID)
	require.Equal(t, int64(10), groups[1].PromissoryID)
	require.NotNil(t, groups[0].ClientID)
	require.Equal(t, int64(8), *groups[0].ClientID)
}

// staleReadRepo serves reads that no longer match the stored row, standing
// in for an installment canceled between the service check and the update.
type staleReadRepo struct{ *memoryRepo }

func (r *staleReadRepo) Get(ctx context.Context, id int64) (*Installment, error) {
	inst, err := r.memoryRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	stale := *inst
	stale.Status = StatusPending
	return &stale, nil
}

func TestPayConflictsWhenRowIsNoLongerPending(t *testing.T) {
	repo := newMemoryRepo()
	repo.addContract(10, "ISSUED", 1)
	id := repo.addInstallment(10, 1, "2025-02-01", "100.00", StatusCanceled)
	svc := NewService(&staleReadRepo{repo})

	_, err := svc.Pay(context.Background(), id, PayInstallmentRequest{})
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
	require.Equal(t, StatusCanceled, repo.rows[id].Status)
}

func TestByContractFiltersByClientAndProductFields(t *testing.T) {
	repo := newMemoryRepo()
	repo.addContract(10, "ISSUED", 7)
	repo.addContract(20, "ISSUED", 8)
	repo.addClient(7, "Maria Souza", "62999998888", "39053344705")
	repo.addClient(8, "João Lima", "62988887777", "")
	repo.addProduct(100, "Honda", "CG 160", "ABC1D23")
	repo.linkProduct(10, 100)
	repo.addInstallment(10, 1, "2025-05-01", "100.00", StatusPending)
	repo.addInstallment(20, 1, "2025-02-01", "200.00", StatusPending)
	svc := NewService(repo)

	groups, err := svc.ByContract(context.Background(), "maria")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Equal(t, int64(10), groups[0].PromissoryID)

	groups, err = svc.ByContract(context.Background(), "abc1d23")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Equal(t, int64(10), groups[0].PromissoryID)

	groups, err = svc.ByContract(context.Background(), "joão")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Equal(t, int64(20), groups[0].PromissoryID)
}

func TestByContractFiltersByQuery(t *testing.T) {
	repo := newMemoryRepo()
	repo.addContract(10, "ISSUED", 7)
	repo.addContract(20, "PAID", 8)
	repo.addInstallment(10, 1, "2025-05-01", "100.00", StatusPending)
	repo.addInstallment(20, 1, "2025-02-01", "200.00", StatusPaid)
	svc := NewService(repo)

	groups, err := svc.ByContract(context.Background(), "ISSUED")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Equal(t, int64(10), groups[0].PromissoryID)
}
