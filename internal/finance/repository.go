package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/wimotos/wimotos/internal/shared"
)

// Repository persists payables.
type Repository interface {
	List(ctx context.Context, req ListPayablesRequest) ([]Payable, error)
	Get(ctx context.Context, id int64) (*Payable, error)
	Create(ctx context.Context, payable Payable) (int64, error)
	Update(ctx context.Context, payable Payable) error
	MarkPaid(ctx context.Context, id int64, paidAt time.Time) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const payableColumns = `id, company, amount::text, due_date, status, description, notes,
	wpp_status, wpp_tries, wpp_last_error, wpp_sent_at, wpp_next_retry_at, created_at`

func scanPayable(row pgx.Row) (*Payable, error) {
	var (
		p      Payable
		amount string
	)
	err := row.Scan(&p.ID, &p.Company, &amount, &p.DueDate, &p.Status, &p.Description, &p.Notes,
		&p.Reminder.Status, &p.Reminder.Tries, &p.Reminder.LastError,
		&p.Reminder.SentAt, &p.Reminder.NextRetryAt, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if p.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, req ListPayablesRequest) ([]Payable, error) {
	query := "SELECT " + payableColumns + " FROM finance"
	var (
		conds  []string
		args   []any
		argPos = 1
	)

	if req.Status != "" {
		conds = append(conds, fmt.Sprintf("status = $%d", argPos))
		args = append(args, req.Status)
		argPos++
	}
	if req.Company != "" {
		conds = append(conds, fmt.Sprintf("company ILIKE $%d", argPos))
		args = append(args, "%"+req.Company+"%")
		argPos++
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	query += " ORDER BY due_date, id"
	if req.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argPos, argPos+1)
		args = append(args, req.Limit, req.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payable
	for rows.Next() {
		p, err := scanPayable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Payable, error) {
	return scanPayable(r.pool.QueryRow(ctx, "SELECT "+payableColumns+" FROM finance WHERE id = $1", id))
}

func (r *repository) Create(ctx context.Context, payable Payable) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO finance (company, amount, due_date, status, description, notes, wpp_status, wpp_tries)
		 VALUES ($1, $2, $3, $4, $5, $6, 'PENDING', 0)
		 RETURNING id`,
		payable.Company, payable.Amount.String(), payable.DueDate, payable.Status,
		payable.Description, payable.Notes,
	).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, payable Payable) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE finance SET company = $1, amount = $2, due_date = $3, status = $4, description = $5, notes = $6
		 WHERE id = $7`,
		payable.Company, payable.Amount.String(), payable.DueDate, payable.Status,
		payable.Description, payable.Notes, payable.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) MarkPaid(ctx context.Context, id int64, paidAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE finance SET status = 'PAID',
		        wpp_status = 'SENT', wpp_sent_at = $1, wpp_next_retry_at = NULL, wpp_last_error = NULL
		 WHERE id = $2`,
		paidAt, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
