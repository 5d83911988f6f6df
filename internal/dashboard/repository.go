package dashboard

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wimotos/wimotos/internal/viewmodel"
)

// Repository loads the flat collections the metrics reduction consumes.
type Repository interface {
	Clients(ctx context.Context) ([]viewmodel.ClientRow, error)
	Products(ctx context.Context) ([]viewmodel.ProductRow, error)
	Sales(ctx context.Context) ([]viewmodel.SaleRow, error)
	Promissories(ctx context.Context) ([]viewmodel.PromissoryRow, error)
	Installments(ctx context.Context) ([]viewmodel.InstallmentRow, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Clients(ctx context.Context) ([]viewmodel.ClientRow, error) {
	rows, err := r.pool.Query(ctx, "SELECT id, name, phone, COALESCE(cpf, '') FROM clients")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []viewmodel.ClientRow
	for rows.Next() {
		var c viewmodel.ClientRow
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.CPF); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) Products(ctx context.Context) ([]viewmodel.ProductRow, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT id, brand, model, year, COALESCE(plate, ''), chassi, status, sale_price::text FROM products")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []viewmodel.ProductRow
	for rows.Next() {
		var p viewmodel.ProductRow
		if err := rows.Scan(&p.ID, &p.Brand, &p.Model, &p.Year, &p.Plate, &p.Chassi, &p.Status, &p.SalePrice); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) Sales(ctx context.Context) ([]viewmodel.SaleRow, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT id, status, total::text, discount::text, COALESCE(entry_amount::text, '') FROM sales")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []viewmodel.SaleRow
	for rows.Next() {
		var s viewmodel.SaleRow
		if err := rows.Scan(&s.ID, &s.Status, &s.Total, &s.Discount, &s.EntryAmount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repository) Promissories(ctx context.Context) ([]viewmodel.PromissoryRow, error) {
	rows, err := r.pool.Query(ctx, "SELECT id, client_id, product_id, status FROM promissories")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []viewmodel.PromissoryRow
	for rows.Next() {
		var p viewmodel.PromissoryRow
		if err := rows.Scan(&p.ID, &p.ClientID, &p.ProductID, &p.Status); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) Installments(ctx context.Context) ([]viewmodel.InstallmentRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, promissory_id, number, due_date::text, amount::text, status,
		        COALESCE(paid_at::text, ''), COALESCE(paid_amount::text, ''), COALESCE(note, '')
		 FROM installments`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []viewmodel.InstallmentRow
	for rows.Next() {
		var i viewmodel.InstallmentRow
		if err := rows.Scan(&i.ID, &i.PromissoryID, &i.Number, &i.DueDate, &i.Amount, &i.Status,
			&i.PaidAt, &i.PaidAmount, &i.Note); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}
