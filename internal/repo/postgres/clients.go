package postgres

import (
	"context"
	"errors"

	"github.com/fleetmind/rentalhub/internal/domain/client"
	"github.com/fleetmind/rentalhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ClientsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewClientsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ClientsRepo {
	return &ClientsRepo{pool: pool, prom: prom}
}

func (r *ClientsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *ClientsRepo) Create(ctx context.Context, req client.CreateClientRequest) (client.Client, error) {
	c := client.NewFromCreateRequest(req)

	err := r.observe("clients.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO clients (id, name, last_name, email, phone, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			c.ID, c.Name, c.LastName, c.Email, c.Phone, c.CreatedAt, c.UpdatedAt,
		)
		return e
	})

	if err != nil {
		return client.Client{}, err
	}

	return c, nil
}

func (r *ClientsRepo) List(ctx context.Context) ([]client.Client, error) {
	var rows pgx.Rows
	var err error

	err = r.observe("clients.list", func() error {
		rows, err = r.pool.Query(ctx,
			`SELECT id, name, last_name, email, phone, created_at, updated_at
			 FROM clients
			 ORDER BY last_name ASC, name ASC, id ASC`,
		)
		return err
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]client.Client, 0)

	for rows.Next() {
		var c client.Client

		err = rows.Scan(&c.ID, &c.Name, &c.LastName, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)

		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return out, nil
}

func (r *ClientsRepo) GetByID(ctx context.Context, id string) (client.Client, error) {
	var c client.Client

	err := r.observe("clients.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name, last_name, email, phone, created_at, updated_at
			 FROM clients
			 WHERE id = $1`, id,
		).Scan(&c.ID, &c.Name, &c.LastName, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return client.Client{}, client.ErrNotFound
		}
		return client.Client{}, err
	}

	return c, nil
}

func (r *ClientsRepo) Update(ctx context.Context, id string, req client.UpdateClientRequest) (client.Client, error) {
	var c client.Client

	err := r.observe("clients.update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE clients
				SET name = $2,
						last_name = $3,
						email = $4,
						phone = $5,
						updated_at = NOW()
			WHERE id = $1
			RETURNING id, name, last_name, email, phone, created_at, updated_at`,
			id,
			req.Name,
			req.LastName,
			req.Email,
			req.Phone,
		).Scan(&c.ID, &c.Name, &c.LastName, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return client.Client{}, client.ErrNotFound
		}
		return client.Client{}, err
	}

	return c, nil
}

func (r *ClientsRepo) Delete(ctx context.Context, id string) error {
	var tag pgconn.CommandTag
	var err error

	err = r.observe("clients.delete", func() error {
		tag, err = r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return client.ErrNotFound
	}

	return nil
}
