package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/wimotos/wimotos/internal/platform/db"
	"github.com/wimotos/wimotos/internal/shared"
)

// Repository persists sales. CreateSale also writes the product status
// flip and the promissory plan inside one transaction.
type Repository interface {
	List(ctx context.Context, req ListSalesRequest) ([]Sale, int64, error)
	Get(ctx context.Context, id int64) (*Sale, error)
	CreateSale(ctx context.Context, sale Sale, plan *PromissoryPlan) (int64, *int64, error)
	SetStatus(ctx context.Context, id int64, status Status) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const saleColumns = "id, public_id, client_id, user_id, product_id, total::text, discount::text, entry_amount::text, payment_type, status, created_at"

func scanSale(row pgx.Row) (*Sale, error) {
	var (
		s           Sale
		total, disc string
		entry       *string
	)
	err := row.Scan(&s.ID, &s.PublicID, &s.ClientID, &s.UserID, &s.ProductID,
		&total, &disc, &entry, &s.PaymentType, &s.Status, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if s.Total, err = decimal.NewFromString(total); err != nil {
		return nil, err
	}
	if s.Discount, err = decimal.NewFromString(disc); err != nil {
		return nil, err
	}
	if entry != nil {
		e, err := decimal.NewFromString(*entry)
		if err != nil {
			return nil, err
		}
		s.EntryAmount = &e
	}
	return &s, nil
}

func (r *repository) List(ctx context.Context, req ListSalesRequest) ([]Sale, int64, error) {
	var (
		conds  []string
		args   []any
		argPos = 1
	)
	add := func(cond string, value any) {
		conds = append(conds, fmt.Sprintf(cond, argPos))
		args = append(args, value)
		argPos++
	}

	if req.ClientID != nil {
		add("client_id = $%d", *req.ClientID)
	}
	if req.UserID != nil {
		add("user_id = $%d", *req.UserID)
	}
	if req.ProductID != nil {
		add("product_id = $%d", *req.ProductID)
	}
	if req.PaymentType != "" {
		add("payment_type = $%d", req.PaymentType)
	}
	if req.DateFrom != nil {
		add("created_at >= $%d", *req.DateFrom)
	}
	if req.DateTo != nil {
		add("created_at <= $%d", *req.DateTo)
	}

	where := ""
	for i, cond := range conds {
		if i == 0 {
			where = " WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM sales"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM sales%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		saleColumns, where, argPos, argPos+1)
	args = append(args, req.PageSize, (req.Page-1)*req.PageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *s)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Sale, error) {
	return scanSale(r.pool.QueryRow(ctx, "SELECT "+saleColumns+" FROM sales WHERE id = $1", id))
}

func (r *repository) CreateSale(ctx context.Context, sale Sale, plan *PromissoryPlan) (int64, *int64, error) {
	var (
		saleID       int64
		promissoryID *int64
	)
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := checkExists(ctx, tx, "clients", sale.ClientID, ErrInvalidClient); err != nil {
			return err
		}
		if err := checkExists(ctx, tx, "users", sale.UserID, ErrInvalidUser); err != nil {
			return err
		}

		var productStatus string
		err := tx.QueryRow(ctx, "SELECT status FROM products WHERE id = $1 FOR UPDATE", sale.ProductID).
			Scan(&productStatus)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInvalidProduct
		}
		if err != nil {
			return err
		}
		if productStatus != "IN_STOCK" {
			return ErrProductUnavailable
		}

		var entry *string
		if sale.EntryAmount != nil {
			s := sale.EntryAmount.String()
			entry = &s
		}
		err = tx.QueryRow(ctx,
			`INSERT INTO sales (public_id, client_id, user_id, product_id, total, discount, entry_amount, payment_type, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 RETURNING id`,
			sale.PublicID, sale.ClientID, sale.UserID, sale.ProductID,
			sale.Total.String(), sale.Discount.String(), entry, sale.PaymentType, sale.Status,
		).Scan(&saleID)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, "UPDATE products SET status = 'SOLD' WHERE id = $1", sale.ProductID); err != nil {
			return err
		}

		if plan == nil {
			return nil
		}

		var promID int64
		err = tx.QueryRow(ctx,
			`INSERT INTO promissories (public_id, sale_id, client_id, product_id, total, entry_amount, status)
			 VALUES ($1, $2, $3, $4, $5, $6, 'DRAFT')
			 RETURNING id`,
			plan.PublicID, saleID, sale.ClientID, sale.ProductID,
			plan.Total.String(), plan.EntryAmount.String(),
		).Scan(&promID)
		if err != nil {
			return err
		}
		promissoryID = &promID

		for _, inst := range plan.Installments {
			_, err := tx.Exec(ctx,
				`INSERT INTO installments (promissory_id, number, due_date, amount, status)
				 VALUES ($1, $2, $3, $4, 'PENDING')`,
				promID, inst.Number, inst.DueDate, inst.Amount.String())
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return saleID, promissoryID, nil
}

func (r *repository) SetStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx, "UPDATE sales SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func checkExists(ctx context.Context, tx pgx.Tx, table string, id int64, missing error) error {
	var found int64
	err := tx.QueryRow(ctx, "SELECT id FROM "+table+" WHERE id = $1", id).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return missing
	}
	return err
}
