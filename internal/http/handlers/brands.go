package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fleetmind/rentalhub/internal/config"
	"github.com/fleetmind/rentalhub/internal/domain/brand"
	"github.com/gin-gonic/gin"
)

type BrandsRepository interface {
	Create(ctx context.Context, req brand.CreateBrandRequest) (brand.Brand, error)
	List(ctx context.Context) ([]brand.Brand, error)
	GetByID(ctx context.Context, id string) (brand.Brand, error)
	Update(ctx context.Context, id string, req brand.UpdateBrandRequest) (brand.Brand, error)
	Delete(ctx context.Context, id string) error
}

type BrandsHandler struct {
	repo BrandsRepository
}

func NewBrandsHandler(repo BrandsRepository) *BrandsHandler {
	return &BrandsHandler{repo: repo}
}

func (h *BrandsHandler) Create(ctx *gin.Context) {
	var req brand.CreateBrandRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	b, err := h.repo.Create(cctx, req)

	if err != nil {
		RespondInternal(ctx, "Could not create brand")
		return
	}

	RespondData(ctx, http.StatusCreated, b)
}

func (h *BrandsHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	brands, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list brands")
		return
	}

	RespondData(ctx, http.StatusOK, brands)
}

func (h *BrandsHandler) GetByID(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	b, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, brand.ErrNotFound) {
			RespondNotFound(ctx, "Brand not found")
			return
		}
		RespondInternal(ctx, "Could not fetch brand")
		return
	}

	RespondData(ctx, http.StatusOK, b)
}

func (h *BrandsHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")

	var req brand.UpdateBrandRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	b, err := h.repo.Update(cctx, id, req)

	if err != nil {
		if errors.Is(err, brand.ErrNotFound) {
			RespondNotFound(ctx, "Brand not found")
			return
		}
		RespondInternal(ctx, "Could not update brand")
		return
	}

	RespondData(ctx, http.StatusOK, b)
}

func (h *BrandsHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, brand.ErrNotFound) {
			RespondNotFound(ctx, "Brand not found")
			return
		}
		RespondInternal(ctx, "Could not delete brand")
		return
	}

	RespondMessage(ctx, http.StatusOK, "Brand deleted")
}
