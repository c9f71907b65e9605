package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fleetmind/rentalhub/internal/config"
	"github.com/fleetmind/rentalhub/internal/domain/car"
	"github.com/fleetmind/rentalhub/internal/domain/client"
	"github.com/fleetmind/rentalhub/internal/domain/job"
	"github.com/fleetmind/rentalhub/internal/domain/rental"
	"github.com/fleetmind/rentalhub/internal/jobs"
	"github.com/fleetmind/rentalhub/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

type RentalsRepository interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	CreateTx(ctx context.Context, tx pgx.Tx, req rental.CreateRentalRequest) (postgres.CreatedRental, error)
	List(ctx context.Context) ([]rental.Rental, error)
	GetByID(ctx context.Context, id string) (rental.Rental, error)
	Update(ctx context.Context, id string, req rental.UpdateRentalRequest) (rental.Rental, error)
	Delete(ctx context.Context, id string) error
}

type JobsCreator interface {
	CreateTx(ctx context.Context, tx pgx.Tx, req job.CreateRequest) (job.Job, error)
}

type RentalsHandler struct {
	repo     RentalsRepository
	jobsRepo JobsCreator
}

func NewRentalsHandler(repo RentalsRepository, jobsRepo JobsCreator) *RentalsHandler {
	return &RentalsHandler{repo: repo, jobsRepo: jobsRepo}
}

// Create books a car. The availability check, the rental insert and the
// confirmation-email job all commit in one transaction.

func (h *RentalsHandler) Create(ctx *gin.Context) {
	var req rental.CreateRentalRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if !req.EndDate.After(req.StartDate) {
		RespondBadRequest(ctx, "endDate must be after startDate", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	tx, err := h.repo.BeginTx(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not create rental")
		return
	}

	defer func() { _ = tx.Rollback(cctx) }()

	created, err := h.repo.CreateTx(cctx, tx, req)

	if err != nil {
		switch {
		case errors.Is(err, car.ErrNotFound):
			RespondNotFound(ctx, "Car not found")
		case errors.Is(err, car.ErrUnavailable):
			RespondConflict(ctx, "Car is not available")
		case errors.Is(err, client.ErrNotFound):
			RespondNotFound(ctx, "Client not found")
		default:
			RespondInternal(ctx, "Could not create rental")
		}
		return
	}

	payload := jobs.RentalConfirmationPayload{
		RentalID:    created.ID,
		CarModel:    created.CarModel,
		ClientName:  created.ClientName,
		Email:       created.ClientEmail,
		StartDate:   created.StartDate,
		EndDate:     created.EndDate,
		Total:       created.Total,
		RequestedAt: time.Now().UTC(),
	}

	raw, err := payload.JSON()

	if err != nil {
		RespondInternal(ctx, "Could not create rental")
		return
	}

	key := "rental:confirm:" + created.ID

	_, err = h.jobsRepo.CreateTx(cctx, tx, job.CreateRequest{
		Type:           jobs.TypeRentalConfirmation,
		Payload:        raw,
		RunAt:          time.Now().UTC(),
		MaxAttempts:    10,
		IdempotencyKey: &key,
	})

	if err != nil {
		// duplicate idempotency key means the job already exists, which is fine
		if !postgres.IsUniqueViolation(err) {
			RespondInternal(ctx, "Could not create rental")
			return
		}
	}

	err = tx.Commit(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not create rental")
		return
	}

	RespondData(ctx, http.StatusCreated, created.Rental)
}

func (h *RentalsHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	rentals, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list rentals")
		return
	}

	RespondData(ctx, http.StatusOK, rentals)
}

func (h *RentalsHandler) GetByID(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	r, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, rental.ErrNotFound) {
			RespondNotFound(ctx, "Rental not found")
			return
		}
		RespondInternal(ctx, "Could not fetch rental")
		return
	}

	RespondData(ctx, http.StatusOK, r)
}

// Update overwrites the rental fields. Changing carId or status here does not
// re-toggle car availability; delete and recreate to rebook.

func (h *RentalsHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")

	var req rental.UpdateRentalRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if !req.EndDate.After(req.StartDate) {
		RespondBadRequest(ctx, "endDate must be after startDate", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	r, err := h.repo.Update(cctx, id, req)

	if err != nil {
		if errors.Is(err, rental.ErrNotFound) {
			RespondNotFound(ctx, "Rental not found")
			return
		}
		RespondInternal(ctx, "Could not update rental")
		return
	}

	RespondData(ctx, http.StatusOK, r)
}

func (h *RentalsHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, rental.ErrNotFound) {
			RespondNotFound(ctx, "Rental not found")
			return
		}
		RespondInternal(ctx, "Could not delete rental")
		return
	}

	RespondMessage(ctx, http.StatusOK, "Rental deleted")
}
