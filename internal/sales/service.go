package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wimotos/wimotos/internal/shared"
)

var (
	// ErrProductUnavailable indicates a product that is not IN_STOCK.
	ErrProductUnavailable = errors.New("product is not available for sale")
	// ErrInvalidAmount indicates a non-positive total or negative discount/entry.
	ErrInvalidAmount = errors.New("invalid monetary amount")
	// ErrEntryExceedsTotal indicates an entry amount above the sale total.
	ErrEntryExceedsTotal = errors.New("entry amount exceeds total")
	// ErrInstallmentsRequired indicates a PROMISSORY sale without a count.
	ErrInstallmentsRequired = errors.New("promissory sales need installments_count >= 1")
	// ErrInvalidClient indicates an unknown client id.
	ErrInvalidClient = errors.New("unknown client")
	// ErrInvalidUser indicates an unknown user id.
	ErrInvalidUser = errors.New("unknown user")
	// ErrInvalidProduct indicates an unknown product id.
	ErrInvalidProduct = errors.New("unknown product")
	// ErrInvalidPaymentType indicates a payment type outside the enum.
	ErrInvalidPaymentType = errors.New("invalid payment type")
)

// Service wraps sale business rules.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns sales matching the filters plus the unpaged total.
func (s *Service) List(ctx context.Context, req ListSalesRequest) ([]Sale, int64, error) {
	if req.PaymentType != "" && !req.PaymentType.Valid() {
		return nil, 0, ErrInvalidPaymentType
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 200 {
		req.PageSize = 20
	}
	return s.repo.List(ctx, req)
}

// Get returns one sale.
func (s *Service) Get(ctx context.Context, id int64) (*Sale, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a DRAFT sale, marks the product SOLD, and for PROMISSORY
// payment builds the contract plan persisted in the same transaction.
// The first installment falls one month after the sale unless overridden.
func (s *Service) Create(ctx context.Context, req CreateSaleRequest) (*CreateSaleResult, error) {
	if !req.PaymentType.Valid() {
		return nil, fmt.Errorf("%q: %w", req.PaymentType, ErrInvalidPaymentType)
	}

	total := quantize(req.Total)
	discount := quantize(req.Discount)
	if !total.IsPositive() {
		return nil, fmt.Errorf("total must be positive: %w", ErrInvalidAmount)
	}
	if discount.IsNegative() {
		return nil, fmt.Errorf("discount must not be negative: %w", ErrInvalidAmount)
	}
	var entry *decimal.Decimal
	if req.EntryAmount != nil {
		e := quantize(*req.EntryAmount)
		if e.IsNegative() {
			return nil, fmt.Errorf("entry_amount must not be negative: %w", ErrInvalidAmount)
		}
		entry = &e
	}

	sale := Sale{
		PublicID:    publicID("VEN"),
		ClientID:    req.ClientID,
		UserID:      req.UserID,
		ProductID:   req.ProductID,
		Total:       total,
		Discount:    discount,
		EntryAmount: entry,
		PaymentType: req.PaymentType,
		Status:      StatusDraft,
	}

	var plan *PromissoryPlan
	if req.PaymentType == PaymentPromissory {
		built, err := s.buildPlan(total, entry, req.InstallmentsCount, req.FirstDueDate)
		if err != nil {
			return nil, err
		}
		plan = built
	}

	saleID, promissoryID, err := s.repo.CreateSale(ctx, sale, plan)
	if err != nil {
		return nil, err
	}
	stored, err := s.repo.Get(ctx, saleID)
	if err != nil {
		return nil, err
	}
	return &CreateSaleResult{Sale: stored, PromissoryID: promissoryID}, nil
}

// UpdateStatus applies a sale status transition. Repeating the current
// status is a no-op; only DRAFT sales may move, to CONFIRMED or CANCELED.
func (s *Service) UpdateStatus(ctx context.Context, id int64, next Status) (*Sale, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", next, shared.ErrInvalidTransition)
	}
	sale, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale.Status == next {
		return sale, nil
	}
	if sale.Status != StatusDraft {
		return nil, fmt.Errorf("%s -> %s: %w", sale.Status, next, shared.ErrInvalidTransition)
	}

	if err := s.repo.SetStatus(ctx, id, next); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) buildPlan(total decimal.Decimal, entry *decimal.Decimal, count int, firstDueDate *string) (*PromissoryPlan, error) {
	if count < 1 {
		return nil, ErrInstallmentsRequired
	}

	entryAmount := decimal.Zero
	if entry != nil {
		entryAmount = *entry
	}
	remaining := quantize(total.Sub(entryAmount))
	if remaining.IsNegative() {
		return nil, ErrEntryExceedsTotal
	}

	firstDue := addMonths(s.now().UTC().Truncate(24*time.Hour), 1)
	if firstDueDate != nil {
		parsed, err := time.Parse("2006-01-02", *firstDueDate)
		if err != nil {
			return nil, fmt.Errorf("parse first_due_date: %w", err)
		}
		firstDue = parsed
	}

	per := quantize(remaining.Div(decimal.NewFromInt(int64(count))))
	diff := remaining.Sub(per.Mul(decimal.NewFromInt(int64(count))))

	plan := &PromissoryPlan{
		PublicID:    publicID("PROM"),
		Total:       total,
		EntryAmount: quantize(entryAmount),
	}
	for n := 1; n <= count; n++ {
		amount := per
		if n == count && !diff.IsZero() {
			amount = quantize(amount.Add(diff))
		}
		plan.Installments = append(plan.Installments, InstallmentPlan{
			Number:  n,
			DueDate: addMonths(firstDue, n-1),
			Amount:  amount,
		})
	}
	return plan, nil
}

func quantize(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// addMonths advances d by months, clamping to the last day of shorter
// months (Jan 31 + 1 month lands on Feb 28/29, not Mar 2).
func addMonths(d time.Time, months int) time.Time {
	year, month, day := d.Date()
	target := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, d.Location())
	if last := daysIn(target.Year(), target.Month()); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, d.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func publicID(prefix string) string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return prefix + "-" + raw[:8]
}
