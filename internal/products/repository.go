package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wimotos/wimotos/internal/platform/db"
	"github.com/wimotos/wimotos/internal/shared"
)

// Repository persists products and their image rows.
type Repository interface {
	List(ctx context.Context, req ListProductsRequest) ([]Product, error)
	Get(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, product Product) (int64, error)
	Update(ctx context.Context, product Product) error
	AddImages(ctx context.Context, productID int64, urls []string) error
	DeleteImage(ctx context.Context, productID, imageID int64) (string, error)
	SetStatus(ctx context.Context, id int64, status Status) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productColumns = "id, brand, model, year, plate, chassi, km, color, cost_price::text, sale_price::text, status, created_at"

func scanProduct(row pgx.Row) (*Product, error) {
	var (
		p          Product
		cost, sale string
	)
	err := row.Scan(&p.ID, &p.Brand, &p.Model, &p.Year, &p.Plate, &p.Chassi, &p.KM,
		&p.Color, &cost, &sale, &p.Status, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if p.CostPrice, err = parsePrice(cost); err != nil {
		return nil, err
	}
	if p.SalePrice, err = parsePrice(sale); err != nil {
		return nil, err
	}
	p.Images = []Image{}
	return &p, nil
}

func (r *repository) List(ctx context.Context, req ListProductsRequest) ([]Product, error) {
	query := "SELECT " + productColumns + " FROM products"
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
	if req.Search != "" {
		conds = append(conds, fmt.Sprintf("(brand ILIKE $%d OR model ILIKE $%d OR plate ILIKE $%d OR chassi ILIKE $%d)",
			argPos, argPos, argPos, argPos))
		args = append(args, "%"+req.Search+"%")
		argPos++
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
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

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachImages(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id))
	if err != nil {
		return nil, err
	}
	list := []Product{*p}
	if err := r.attachImages(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *repository) attachImages(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(products))
	index := make(map[int64]int, len(products))
	for i, p := range products {
		ids = append(ids, p.ID)
		index[p.ID] = i
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, url, position FROM product_images
		 WHERE product_id = ANY($1)
		 ORDER BY product_id, position, id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			img       Image
			productID int64
		)
		if err := rows.Scan(&img.ID, &productID, &img.URL, &img.Position); err != nil {
			return err
		}
		if i, ok := index[productID]; ok {
			products[i].Images = append(products[i].Images, img)
		}
	}
	return rows.Err()
}

func (r *repository) Create(ctx context.Context, product Product) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO products (brand, model, year, plate, chassi, km, color, cost_price, sale_price, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 RETURNING id`,
			product.Brand, product.Model, product.Year, product.Plate, product.Chassi, product.KM,
			product.Color, product.CostPrice.String(), product.SalePrice.String(), product.Status,
		).Scan(&id)
		if err != nil {
			return err
		}
		return insertImages(ctx, tx, id, imageURLs(product.Images), 0)
	})
	return id, err
}

func (r *repository) Update(ctx context.Context, product Product) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET brand = $1, model = $2, year = $3, plate = $4, chassi = $5,
		        km = $6, color = $7, cost_price = $8, sale_price = $9, status = $10
		 WHERE id = $11`,
		product.Brand, product.Model, product.Year, product.Plate, product.Chassi, product.KM,
		product.Color, product.CostPrice.String(), product.SalePrice.String(), product.Status, product.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) AddImages(ctx context.Context, productID int64, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var next int
		err := tx.QueryRow(ctx,
			"SELECT COALESCE(MAX(position) + 1, 0) FROM product_images WHERE product_id = $1",
			productID).Scan(&next)
		if err != nil {
			return err
		}
		return insertImages(ctx, tx, productID, urls, next)
	})
}

func (r *repository) DeleteImage(ctx context.Context, productID, imageID int64) (string, error) {
	var url string
	err := r.pool.QueryRow(ctx,
		"DELETE FROM product_images WHERE id = $1 AND product_id = $2 RETURNING url",
		imageID, productID).Scan(&url)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", shared.ErrNotFound
	}
	return url, err
}

func (r *repository) SetStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx, "UPDATE products SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func insertImages(ctx context.Context, tx pgx.Tx, productID int64, urls []string, startPos int) error {
	for i, url := range urls {
		_, err := tx.Exec(ctx,
			"INSERT INTO product_images (product_id, url, position) VALUES ($1, $2, $3)",
			productID, url, startPos+i)
		if err != nil {
			return err
		}
	}
	return nil
}

func imageURLs(images []Image) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		out = append(out, img.URL)
	}
	return out
}
