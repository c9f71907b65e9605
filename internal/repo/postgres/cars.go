package postgres

import (
	"context"
	"errors"

	"github.com/fleetmind/rentalhub/internal/domain/brand"
	"github.com/fleetmind/rentalhub/internal/domain/car"
	"github.com/fleetmind/rentalhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CarsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewCarsRepo(pool *pgxpool.Pool, prom *observability.Prom) *CarsRepo {
	return &CarsRepo{pool: pool, prom: prom}
}

func (r *CarsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return true
	}
	return false
}

func (r *CarsRepo) Create(ctx context.Context, req car.CreateCarRequest) (car.Car, error) {
	c := car.NewFromCreateRequest(req)

	err := r.observe("cars.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO cars (id, model, year, color, daily_price, available, brand_id, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			c.ID, c.Model, c.Year, c.Color, c.DailyPrice, c.Available, c.BrandID, c.CreatedAt, c.UpdatedAt,
		)
		return e
	})

	if err != nil {
		// brand_id references brands(id)
		if isForeignKeyViolation(err) {
			return car.Car{}, brand.ErrNotFound
		}
		return car.Car{}, err
	}

	return c, nil
}

func (r *CarsRepo) List(ctx context.Context) ([]car.Car, error) {
	var rows pgx.Rows
	var err error

	err = r.observe("cars.list", func() error {
		rows, err = r.pool.Query(ctx, `
			SELECT c.id, c.model, c.year, c.color, c.daily_price, c.available, c.brand_id,
			       b.name,
			       c.created_at, c.updated_at
			FROM cars c
			JOIN brands b ON b.id = c.brand_id
			ORDER BY c.created_at ASC, c.id ASC
		`)
		return err
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]car.Car, 0)

	for rows.Next() {
		var c car.Car

		err = rows.Scan(&c.ID, &c.Model, &c.Year, &c.Color, &c.DailyPrice, &c.Available, &c.BrandID, &c.BrandName, &c.CreatedAt, &c.UpdatedAt)

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

func (r *CarsRepo) GetByID(ctx context.Context, id string) (car.Car, error) {
	var c car.Car

	err := r.observe("cars.get_by_id", func() error {
		return r.pool.QueryRow(ctx, `
			SELECT c.id, c.model, c.year, c.color, c.daily_price, c.available, c.brand_id,
			       b.name,
			       c.created_at, c.updated_at
			FROM cars c
			JOIN brands b ON b.id = c.brand_id
			WHERE c.id = $1
		`, id).Scan(&c.ID, &c.Model, &c.Year, &c.Color, &c.DailyPrice, &c.Available, &c.BrandID, &c.BrandName, &c.CreatedAt, &c.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return car.Car{}, car.ErrNotFound
		}
		return car.Car{}, err
	}

	return c, nil
}

func (r *CarsRepo) Update(ctx context.Context, id string, req car.UpdateCarRequest) (car.Car, error) {
	var c car.Car

	err := r.observe("cars.update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE cars
				SET model = $2,
						year = $3,
						color = $4,
						daily_price = $5,
						brand_id = $6,
						available = $7,
						updated_at = NOW()
			WHERE id = $1
			RETURNING id, model, year, color, daily_price, available, brand_id, created_at, updated_at`,
			id,
			req.Model,
			req.Year,
			req.Color,
			req.DailyPrice,
			req.BrandID,
			req.Available,
		).Scan(
			&c.ID,
			&c.Model,
			&c.Year,
			&c.Color,
			&c.DailyPrice,
			&c.Available,
			&c.BrandID,
			&c.CreatedAt,
			&c.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return car.Car{}, car.ErrNotFound
		}
		if isForeignKeyViolation(err) {
			return car.Car{}, brand.ErrNotFound
		}
		return car.Car{}, err
	}

	return c, nil
}

func (r *CarsRepo) Delete(ctx context.Context, id string) error {
	var tag pgconn.CommandTag
	var err error

	err = r.observe("cars.delete", func() error {
		tag, err = r.pool.Exec(ctx, `DELETE FROM cars WHERE id = $1`, id)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return car.ErrNotFound
	}

	return nil
}
