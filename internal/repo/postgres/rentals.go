package postgres

import (
	"context"
	"errors"

	"github.com/fleetmind/rentalhub/internal/domain/car"
	"github.com/fleetmind/rentalhub/internal/domain/client"
	"github.com/fleetmind/rentalhub/internal/domain/rental"
	"github.com/fleetmind/rentalhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CreatedRental carries the joined display fields plus the client email the
// confirmation job needs; the email never leaves the handler.
type CreatedRental struct {
	rental.Rental
	ClientEmail string
}

type RentalsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewRentalsRepo(pool *pgxpool.Pool, prom *observability.Prom) *RentalsRepo {
	return &RentalsRepo{pool: pool, prom: prom}
}

func (repo *RentalsRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (repo *RentalsRepo) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return repo.pool.BeginTx(ctx, pgx.TxOptions{})
}

// CreateTx performs the whole rental transition inside the caller's
// transaction: lock the car row, check the availability flag, verify the
// client, insert the rental and flip the flag. Either all of it commits or
// none of it does, so a rental can never reference a still-available car.

func (repo *RentalsRepo) CreateTx(ctx context.Context, tx pgx.Tx, req rental.CreateRentalRequest) (created CreatedRental, err error) {
	// 1) lock car row + check availability
	var carModel string
	var available bool

	err = repo.observe("rentals.create_tx.car_lock", func() error {
		return tx.QueryRow(ctx, `
		SELECT model, available
		FROM cars
		WHERE id = $1
		FOR UPDATE
	`, req.CarID).Scan(&carModel, &available)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = car.ErrNotFound
		}
		return
	}

	// 2) client must exist; its name and email feed the confirmation mail
	var clientName, clientLastName, clientEmail string

	err = repo.observe("rentals.create_tx.client_check", func() error {
		return tx.QueryRow(ctx, `
		SELECT name, last_name, email
		FROM clients
		WHERE id = $1
	`, req.ClientID).Scan(&clientName, &clientLastName, &clientEmail)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = client.ErrNotFound
		}
		return
	}

	if !available {
		err = car.ErrUnavailable
		return
	}

	rent := rental.NewFromCreateRequest(req)

	err = repo.observe("rentals.create_tx.insert", func() error {
		_, e := tx.Exec(ctx, `
		INSERT INTO rentals (id, car_id, client_id, start_date, end_date, total, status, payment_method, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, rent.ID, rent.CarID, rent.ClientID, rent.StartDate, rent.EndDate, rent.Total, rent.Status, rent.PaymentMethod, rent.CreatedAt, rent.UpdatedAt)
		return e
	})

	if err != nil {
		return
	}

	// 3) take the car off the lot in the same transaction
	err = repo.observe("rentals.create_tx.flag_car", func() error {
		_, e := tx.Exec(ctx, `
		UPDATE cars
		SET available = FALSE,
		    updated_at = NOW()
		WHERE id = $1
	`, req.CarID)
		return e
	})

	if err != nil {
		return
	}

	rent.CarModel = carModel
	rent.ClientName = clientName
	rent.ClientLastName = clientLastName

	created = CreatedRental{Rental: rent, ClientEmail: clientEmail}
	return
}

// Create is the single-shot variant wrapping CreateTx in its own transaction.
func (repo *RentalsRepo) Create(ctx context.Context, req rental.CreateRentalRequest) (created CreatedRental, err error) {
	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	created, err = repo.CreateTx(ctx, tx, req)

	if err != nil {
		return
	}

	err = tx.Commit(ctx)

	return
}

func (repo *RentalsRepo) List(ctx context.Context) (rentals []rental.Rental, err error) {
	var rows pgx.Rows

	err = repo.observe("rentals.list", func() error {
		rows, err = repo.pool.Query(ctx, `
	SELECT r.id, r.car_id, r.client_id, r.start_date, r.end_date, r.total, r.status, r.payment_method,
	       r.created_at, r.updated_at,
	       c.model, cl.name, cl.last_name
	FROM rentals r
	JOIN cars c ON c.id = r.car_id
	JOIN clients cl ON cl.id = r.client_id
	ORDER BY r.created_at ASC, r.id ASC
	`)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	rentals = make([]rental.Rental, 0)

	for rows.Next() {
		var r rental.Rental

		e := rows.Scan(&r.ID, &r.CarID, &r.ClientID, &r.StartDate, &r.EndDate, &r.Total, &r.Status, &r.PaymentMethod,
			&r.CreatedAt, &r.UpdatedAt,
			&r.CarModel, &r.ClientName, &r.ClientLastName)

		if e != nil {
			err = e
			return
		}
		rentals = append(rentals, r)
	}

	e := rows.Err()

	if e != nil {
		err = e
		return
	}

	return
}

func (repo *RentalsRepo) GetByID(ctx context.Context, id string) (found rental.Rental, err error) {
	var r rental.Rental

	err = repo.observe("rentals.get_by_id", func() error {
		return repo.pool.QueryRow(ctx, `
		SELECT r.id, r.car_id, r.client_id, r.start_date, r.end_date, r.total, r.status, r.payment_method,
		       r.created_at, r.updated_at,
		       c.model, cl.name, cl.last_name
		FROM rentals r
		JOIN cars c ON c.id = r.car_id
		JOIN clients cl ON cl.id = r.client_id
		WHERE r.id = $1
		`, id).Scan(&r.ID, &r.CarID, &r.ClientID, &r.StartDate, &r.EndDate, &r.Total, &r.Status, &r.PaymentMethod,
			&r.CreatedAt, &r.UpdatedAt,
			&r.CarModel, &r.ClientName, &r.ClientLastName)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = rental.ErrNotFound
		}
		return
	}

	found = r
	return
}

// Update overwrites the mutable fields wholesale. It deliberately does not
// re-validate availability or re-toggle flags when carId or status change.

func (repo *RentalsRepo) Update(ctx context.Context, id string, req rental.UpdateRentalRequest) (updated rental.Rental, err error) {
	var r rental.Rental

	err = repo.observe("rentals.update", func() error {
		return repo.pool.QueryRow(ctx, `
		UPDATE rentals
			SET car_id = $2,
					client_id = $3,
					start_date = $4,
					end_date = $5,
					total = $6,
					status = $7,
					payment_method = $8,
					updated_at = NOW()
		WHERE id = $1
		RETURNING id, car_id, client_id, start_date, end_date, total, status, payment_method, created_at, updated_at
		`, id, req.CarID, req.ClientID, req.StartDate, req.EndDate, req.Total, req.Status, req.PaymentMethod,
		).Scan(&r.ID, &r.CarID, &r.ClientID, &r.StartDate, &r.EndDate, &r.Total, &r.Status, &r.PaymentMethod, &r.CreatedAt, &r.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = rental.ErrNotFound
		}
		return
	}

	updated = r
	return
}

// Delete removes a rental and puts its car back on the lot. The car update is
// best-effort: the car may have been deleted separately, which must not block
// removing the rental.

func (repo *RentalsRepo) Delete(ctx context.Context, id string) (err error) {
	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return
	}

	defer func() { _ = tx.Rollback(ctx) }()

	var carID string

	err = repo.observe("rentals.delete.lookup", func() error {
		return tx.QueryRow(ctx, `SELECT car_id FROM rentals WHERE id = $1 FOR UPDATE`, id).Scan(&carID)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = rental.ErrNotFound
		}
		return
	}

	err = repo.observe("rentals.delete.restore_car", func() error {
		// zero rows affected is fine here
		_, e := tx.Exec(ctx, `
		UPDATE cars
		SET available = TRUE,
		    updated_at = NOW()
		WHERE id = $1
	`, carID)
		return e
	})

	if err != nil {
		return
	}

	var tag pgconn.CommandTag

	err = repo.observe("rentals.delete.remove", func() error {
		var e error
		tag, e = tx.Exec(ctx, `DELETE FROM rentals WHERE id = $1`, id)
		return e
	})

	if err != nil {
		return
	}

	if tag.RowsAffected() == 0 {
		err = rental.ErrNotFound
		return
	}

	err = tx.Commit(ctx)
	return
}
