package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wimotos/wimotos/internal/shared"
)

// Repository persists clients.
type Repository interface {
	List(ctx context.Context, req ListClientsRequest) ([]Client, error)
	Get(ctx context.Context, id int64) (*Client, error)
	Create(ctx context.Context, client Client) (int64, error)
	Update(ctx context.Context, client Client) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const clientColumns = "id, name, phone, cpf, address, notes, created_at"

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.CPF, &c.Address, &c.Notes, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context, req ListClientsRequest) ([]Client, error) {
	query := "SELECT " + clientColumns + " FROM clients"
	var args []any
	argPos := 1

	if req.Search != "" {
		query += fmt.Sprintf(" WHERE name ILIKE $%d OR phone LIKE $%d OR cpf LIKE $%d", argPos, argPos, argPos)
		args = append(args, "%"+req.Search+"%")
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

	var out []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Client, error) {
	return scanClient(r.pool.QueryRow(ctx, "SELECT "+clientColumns+" FROM clients WHERE id = $1", id))
}

func (r *repository) Create(ctx context.Context, client Client) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO clients (name, phone, cpf, address, notes)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		client.Name, client.Phone, client.CPF, client.Address, client.Notes,
	).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, client Client) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE clients SET name = $1, phone = $2, cpf = $3, address = $4, notes = $5
		 WHERE id = $6`,
		client.Name, client.Phone, client.CPF, client.Address, client.Notes, client.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
