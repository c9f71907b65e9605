package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fleetmind/rentalhub/internal/config"
	"github.com/fleetmind/rentalhub/internal/domain/brand"
	"github.com/fleetmind/rentalhub/internal/domain/car"
	"github.com/gin-gonic/gin"
)

type CarsRepository interface {
	Create(ctx context.Context, req car.CreateCarRequest) (car.Car, error)
	List(ctx context.Context) ([]car.Car, error)
	GetByID(ctx context.Context, id string) (car.Car, error)
	Update(ctx context.Context, id string, req car.UpdateCarRequest) (car.Car, error)
	Delete(ctx context.Context, id string) error
}

type CarsHandler struct {
	repo CarsRepository
}

func NewCarsHandler(repo CarsRepository) *CarsHandler {
	return &CarsHandler{repo: repo}
}

func (h *CarsHandler) Create(ctx *gin.Context) {
	var req car.CreateCarRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	c, err := h.repo.Create(cctx, req)

	if err != nil {
		// FK on brand_id surfaces as brand.ErrNotFound
		if errors.Is(err, brand.ErrNotFound) {
			RespondBadRequest(ctx, "Brand does not exist", nil)
			return
		}
		RespondInternal(ctx, "Could not create car")
		return
	}

	RespondData(ctx, http.StatusCreated, c)
}

func (h *CarsHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	cars, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list cars")
		return
	}

	RespondData(ctx, http.StatusOK, cars)
}

func (h *CarsHandler) GetByID(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	c, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, car.ErrNotFound) {
			RespondNotFound(ctx, "Car not found")
			return
		}
		RespondInternal(ctx, "Could not fetch car")
		return
	}

	RespondData(ctx, http.StatusOK, c)
}

func (h *CarsHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")

	var req car.UpdateCarRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	c, err := h.repo.Update(cctx, id, req)

	if err != nil {
		switch {
		case errors.Is(err, car.ErrNotFound):
			RespondNotFound(ctx, "Car not found")
		case errors.Is(err, brand.ErrNotFound):
			RespondBadRequest(ctx, "Brand does not exist", nil)
		default:
			RespondInternal(ctx, "Could not update car")
		}
		return
	}

	RespondData(ctx, http.StatusOK, c)
}

func (h *CarsHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, car.ErrNotFound) {
			RespondNotFound(ctx, "Car not found")
			return
		}
		RespondInternal(ctx, "Could not delete car")
		return
	}

	RespondMessage(ctx, http.StatusOK, "Car deleted")
}
