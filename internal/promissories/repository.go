package promissories

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
)

// Repository persists promissories.
type Repository interface {
	List(ctx context.Context, req ListPromissoriesRequest) ([]Promissory, error)
	Get(ctx context.Context, id int64) (*Promissory, error)
	InstallmentStatuses(ctx context.Context, promissoryID int64) ([]string, error)
	MarkIssued(ctx context.Context, id int64, issuedAt time.Time) error
	CancelWithInstallments(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const promissoryColumns = "id, public_id, sale_id, client_id, product_id, total::text, entry_amount::text, status, issued_at, created_at"

func scanPromissory(row pgx.Row) (*Promissory, error) {
	var (
		p            Promissory
		total, entry string
	)
	err := row.Scan(&p.ID, &p.PublicID, &p.SaleID, &p.ClientID, &p.ProductID,
		&total, &entry, &p.Status, &p.IssuedAt, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if p.Total, err = decimal.NewFromString(total); err != nil {
		return nil, err
	}
	if p.EntryAmount, err = decimal.NewFromString(entry); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, req ListPromissoriesRequest) ([]Promissory, error) {
	query := "SELECT " + promissoryColumns + " FROM promissories"
	var args []any
	argPos := 1

	if req.Status != "" {
		query += fmt.Sprintf(" WHERE status = $%d", argPos)
		args = append(args, req.Status)
		argPos++
	}
	query += " ORDER BY id DESC"
	if req.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argPos, argPos+1)
		args = append(args, req.Limit, req.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Promissory
	for rows.Next() {
		p, err := scanPromissory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Promissory, error) {
	return scanPromissory(r.pool.QueryRow(ctx, "SELECT "+promissoryColumns+" FROM promissories WHERE id = $1", id))
}

func (r *repository) InstallmentStatuses(ctx context.Context, promissoryID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, "SELECT status FROM installments WHERE promissory_id = $1", promissoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var st string
		if err := rows.Scan(&st); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (r *repository) MarkIssued(ctx context.Context, id int64, issuedAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE promissories SET status = 'ISSUED', issued_at = $1 WHERE id = $2", issuedAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) CancelWithInstallments(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, "UPDATE promissories SET status = 'CANCELED' WHERE id = $1", id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		_, err = tx.Exec(ctx,
			"UPDATE installments SET status = 'CANCELED' WHERE promissory_id = $1 AND status = 'PENDING'", id)
		return err
	})
}
