package installments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/wimotos/wimotos/internal/platform/db"
	"github.com/wimotos/wimotos/internal/shared"
	"github.com/wimotos/wimotos/internal/viewmodel"
)

// Repository persists installments.
type Repository interface {
	List(ctx context.Context, req ListInstallmentsRequest) ([]Installment, error)
	Get(ctx context.Context, id int64) (*Installment, error)
	PromissoryStatus(ctx context.Context, promissoryID int64) (string, error)
	PromissoryLookup(ctx context.Context) (map[int64]viewmodel.PromissoryRow, error)
	ClientLookup(ctx context.Context) (map[int64]viewmodel.ClientRow, error)
	ProductLookup(ctx context.Context) (map[int64]viewmodel.ProductRow, error)
	Pay(ctx context.Context, id int64, paidAt time.Time, amount decimal.Decimal, note *string) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const installmentColumns = `id, promissory_id, number, due_date, amount::text, status,
	paid_at, paid_amount::text, note,
	wa_due_status, wa_due_tries, wa_due_last_error, wa_due_sent_at, wa_due_next_retry_at,
	wa_overdue_status, wa_overdue_tries, wa_overdue_last_error, wa_overdue_sent_at, wa_overdue_next_retry_at,
	created_at`

func scanInstallment(row pgx.Row) (*Installment, error) {
	var (
		i      Installment
		amount string
		paid   *string
	)
	err := row.Scan(&i.ID, &i.PromissoryID, &i.Number, &i.DueDate, &amount, &i.Status,
		&i.PaidAt, &paid, &i.Note,
		&i.DueReminder.Status, &i.DueReminder.Tries, &i.DueReminder.LastError,
		&i.DueReminder.SentAt, &i.DueReminder.NextRetryAt,
		&i.OverdueReminder.Status, &i.OverdueReminder.Tries, &i.OverdueReminder.LastError,
		&i.OverdueReminder.SentAt, &i.OverdueReminder.NextRetryAt,
		&i.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if i.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, err
	}
	if paid != nil {
		d, err := decimal.NewFromString(*paid)
		if err != nil {
			return nil, err
		}
		i.PaidAmount = &d
	}
	return &i, nil
}

func (r *repository) List(ctx context.Context, req ListInstallmentsRequest) ([]Installment, error) {
	query := "SELECT " + installmentColumns + " FROM installments"
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
	if req.PromissoryID != nil {
		conds = append(conds, fmt.Sprintf("promissory_id = $%d", argPos))
		args = append(args, *req.PromissoryID)
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

	var out []Installment
	for rows.Next() {
		i, err := scanInstallment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *i)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Installment, error) {
	return scanInstallment(r.pool.QueryRow(ctx, "SELECT "+installmentColumns+" FROM installments WHERE id = $1", id))
}

func (r *repository) PromissoryStatus(ctx context.Context, promissoryID int64) (string, error) {
	var status string
	err := r.pool.QueryRow(ctx, "SELECT status FROM promissories WHERE id = $1", promissoryID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", shared.ErrNotFound
	}
	return status, err
}

func (r *repository) PromissoryLookup(ctx context.Context) (map[int64]viewmodel.PromissoryRow, error) {
	rows, err := r.pool.Query(ctx, "SELECT id, client_id, product_id, status FROM promissories")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]viewmodel.PromissoryRow)
	for rows.Next() {
		var p viewmodel.PromissoryRow
		if err := rows.Scan(&p.ID, &p.ClientID, &p.ProductID, &p.Status); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (r *repository) ClientLookup(ctx context.Context) (map[int64]viewmodel.ClientRow, error) {
	rows, err := r.pool.Query(ctx, "SELECT id, name, phone, COALESCE(cpf, '') FROM clients")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]viewmodel.ClientRow)
	for rows.Next() {
		var c viewmodel.ClientRow
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.CPF); err != nil {
			return nil, err
		}
		out[c.ID] = c
	}
	return out, rows.Err()
}

func (r *repository) ProductLookup(ctx context.Context) (map[int64]viewmodel.ProductRow, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT id, brand, model, year, COALESCE(plate, ''), chassi, status, sale_price::text FROM products")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]viewmodel.ProductRow)
	for rows.Next() {
		var p viewmodel.ProductRow
		if err := rows.Scan(&p.ID, &p.Brand, &p.Model, &p.Year, &p.Plate, &p.Chassi, &p.Status, &p.SalePrice); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (r *repository) Pay(ctx context.Context, id int64, paidAt time.Time, amount decimal.Decimal, note *string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var promissoryID int64
		err := tx.QueryRow(ctx,
			`UPDATE installments SET status = 'PAID', paid_at = $1, paid_amount = $2, note = COALESCE($3, note)
			 WHERE id = $4 AND status = 'PENDING'
			 RETURNING promissory_id`,
			paidAt, amount.String(), note, id,
		).Scan(&promissoryID)
		if errors.Is(err, pgx.ErrNoRows) {
			// the row left PENDING between the service check and this update
			return shared.ErrInvalidTransition
		}
		if err != nil {
			return err
		}

		var unpaid int64
		err = tx.QueryRow(ctx,
			"SELECT COUNT(*) FROM installments WHERE promissory_id = $1 AND status <> 'PAID'",
			promissoryID).Scan(&unpaid)
		if err != nil {
			return err
		}
		if unpaid == 0 {
			_, err = tx.Exec(ctx, "UPDATE promissories SET status = 'PAID' WHERE id = $1", promissoryID)
		}
		return err
	})
}
