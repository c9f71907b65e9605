package postgres

import (
	"context"
	"errors"

	"github.com/fleetmind/rentalhub/internal/domain/brand"
	"github.com/fleetmind/rentalhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BrandsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewBrandsRepo(pool *pgxpool.Pool, prom *observability.Prom) *BrandsRepo {
	return &BrandsRepo{pool: pool, prom: prom}
}

func (r *BrandsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *BrandsRepo) Create(ctx context.Context, req brand.CreateBrandRequest) (brand.Brand, error) {
	b := brand.NewFromCreateRequest(req)

	err := r.observe("brands.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO brands (id, name, created_at, updated_at) VALUES ($1,$2,$3,$4)`,
			b.ID, b.Name, b.CreatedAt, b.UpdatedAt,
		)
		return e
	})

	if err != nil {
		return brand.Brand{}, err
	}

	return b, nil
}

func (r *BrandsRepo) List(ctx context.Context) ([]brand.Brand, error) {
	var rows pgx.Rows
	var err error

	err = r.observe("brands.list", func() error {
		rows, err = r.pool.Query(ctx,
			`SELECT id, name, created_at, updated_at FROM brands ORDER BY name ASC, id ASC`,
		)
		return err
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]brand.Brand, 0)

	for rows.Next() {
		var b brand.Brand

		err = rows.Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt)

		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return out, nil
}

func (r *BrandsRepo) GetByID(ctx context.Context, id string) (brand.Brand, error) {
	var b brand.Brand

	err := r.observe("brands.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name, created_at, updated_at FROM brands WHERE id = $1`, id,
		).Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return brand.Brand{}, brand.ErrNotFound
		}
		return brand.Brand{}, err
	}

	return b, nil
}

func (r *BrandsRepo) Update(ctx context.Context, id string, req brand.UpdateBrandRequest) (brand.Brand, error) {
	var b brand.Brand

	err := r.observe("brands.update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE brands
				SET name = $2,
						updated_at = NOW()
			WHERE id = $1
			RETURNING id, name, created_at, updated_at`,
			id, req.Name,
		).Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return brand.Brand{}, brand.ErrNotFound
		}
		return brand.Brand{}, err
	}

	return b, nil
}

func (r *BrandsRepo) Delete(ctx context.Context, id string) error {
	var tag pgconn.CommandTag
	var err error

	err = r.observe("brands.delete", func() error {
		tag, err = r.pool.Exec(ctx, `DELETE FROM brands WHERE id = $1`, id)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return brand.ErrNotFound
	}

	return nil
}
