package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Lane selects which reminder sub-state of an installment to touch.
type Lane string

const (
	LaneDue     Lane = "due"
	LaneOverdue Lane = "overdue"
)

func (l Lane) columnPrefix() string {
	if l == LaneOverdue {
		return "wa_overdue"
	}
	return "wa_due"
}

// FinanceReminder is one payable eligible for a reminder.
type FinanceReminder struct {
	ID      int64
	Company string
	Amount  decimal.Decimal
	DueDate time.Time
	Tries   int
}

// InstallmentReminder is one installment eligible for a reminder.
type InstallmentReminder struct {
	ID               int64
	ContractPublicID string
	Number           int
	Amount           decimal.Decimal
	DueDate          time.Time
	Tries            int
}

// Store reads eligible rows and advances their reminder sub-state.
type Store interface {
	PendingFinance(ctx context.Context, asOf time.Time, limit int) ([]FinanceReminder, error)
	FinanceSending(ctx context.Context, id int64) error
	FinanceSent(ctx context.Context, id int64, at time.Time) error
	FinanceFailed(ctx context.Context, id int64, lastError string, tries int, retryAt time.Time) error

	DueSoonInstallments(ctx context.Context, from, until time.Time, limit int) ([]InstallmentReminder, error)
	OverdueInstallments(ctx context.Context, asOf time.Time, limit int) ([]InstallmentReminder, error)
	InstallmentSending(ctx context.Context, id int64, lane Lane) error
	InstallmentSent(ctx context.Context, id int64, lane Lane, at time.Time) error
	InstallmentFailed(ctx context.Context, id int64, lane Lane, lastError string, tries int, retryAt time.Time) error
}

type store struct {
	pool *pgxpool.Pool
}

// NewStore constructs the PostgreSQL backed reminder store.
func NewStore(pool *pgxpool.Pool) Store {
	return &store{pool: pool}
}

func (s *store) PendingFinance(ctx context.Context, asOf time.Time, limit int) ([]FinanceReminder, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, company, amount::text, due_date, wpp_tries
		 FROM finance
		 WHERE status = 'PENDING'
		   AND due_date <= $1
		   AND wpp_status NOT IN ('SENT', 'SENDING')
		   AND (wpp_next_retry_at IS NULL OR wpp_next_retry_at <= $2)
		 ORDER BY due_date, id
		 LIMIT $3`,
		asOf, asOf, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FinanceReminder
	for rows.Next() {
		var (
			f      FinanceReminder
			amount string
		)
		if err := rows.Scan(&f.ID, &f.Company, &amount, &f.DueDate, &f.Tries); err != nil {
			return nil, err
		}
		if f.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *store) FinanceSending(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx, "UPDATE finance SET wpp_status = 'SENDING' WHERE id = $1", id)
	return err
}

func (s *store) FinanceSent(ctx context.Context, id int64, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE finance SET wpp_status = 'SENT', wpp_sent_at = $1, wpp_last_error = NULL, wpp_next_retry_at = NULL
		 WHERE id = $2`, at, id)
	return err
}

func (s *store) FinanceFailed(ctx context.Context, id int64, lastError string, tries int, retryAt time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE finance SET wpp_status = 'FAILED', wpp_tries = $1, wpp_last_error = $2, wpp_next_retry_at = $3
		 WHERE id = $4`, tries, lastError, retryAt, id)
	return err
}

const installmentReminderQuery = `SELECT i.id, p.public_id, i.number, i.amount::text, i.due_date, i.%[1]s_tries
	 FROM installments i
	 JOIN promissories p ON p.id = i.promissory_id
	 WHERE i.status = 'PENDING'
	   AND %[2]s
	   AND i.%[1]s_status NOT IN ('SENT', 'SENDING')
	   AND (i.%[1]s_next_retry_at IS NULL OR i.%[1]s_next_retry_at <= $1)
	 ORDER BY i.due_date, i.id
	 LIMIT %[3]s`

func (s *store) DueSoonInstallments(ctx context.Context, from, until time.Time, limit int) ([]InstallmentReminder, error) {
	query := fmt.Sprintf(installmentReminderQuery, LaneDue.columnPrefix(),
		"i.due_date >= $2 AND i.due_date <= $3", "$4")
	return s.queryInstallments(ctx, query, from, from, until, limit)
}

func (s *store) OverdueInstallments(ctx context.Context, asOf time.Time, limit int) ([]InstallmentReminder, error) {
	query := fmt.Sprintf(installmentReminderQuery, LaneOverdue.columnPrefix(), "i.due_date < $2", "$3")
	return s.queryInstallments(ctx, query, asOf, asOf, limit)
}

func (s *store) queryInstallments(ctx context.Context, query string, args ...any) ([]InstallmentReminder, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InstallmentReminder
	for rows.Next() {
		var (
			i      InstallmentReminder
			amount string
		)
		if err := rows.Scan(&i.ID, &i.ContractPublicID, &i.Number, &amount, &i.DueDate, &i.Tries); err != nil {
			return nil, err
		}
		if i.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (s *store) InstallmentSending(ctx context.Context, id int64, lane Lane) error {
	query := fmt.Sprintf("UPDATE installments SET %s_status = 'SENDING' WHERE id = $1", lane.columnPrefix())
	_, err := s.pool.Exec(ctx, query, id)
	return err
}

func (s *store) InstallmentSent(ctx context.Context, id int64, lane Lane, at time.Time) error {
	prefix := lane.columnPrefix()
	query := fmt.Sprintf(
		`UPDATE installments SET %[1]s_status = 'SENT', %[1]s_sent_at = $1, %[1]s_last_error = NULL, %[1]s_next_retry_at = NULL
		 WHERE id = $2`, prefix)
	_, err := s.pool.Exec(ctx, query, at, id)
	return err
}

func (s *store) InstallmentFailed(ctx context.Context, id int64, lane Lane, lastError string, tries int, retryAt time.Time) error {
	prefix := lane.columnPrefix()
	query := fmt.Sprintf(
		`UPDATE installments SET %[1]s_status = 'FAILED', %[1]s_tries = $1, %[1]s_last_error = $2, %[1]s_next_retry_at = $3
		 WHERE id = $4`, prefix)
	_, err := s.pool.Exec(ctx, query, tries, lastError, retryAt, id)
	return err
}
