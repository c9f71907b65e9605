package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fleetmind/rentalhub/internal/config"
	"github.com/fleetmind/rentalhub/internal/domain/client"
	"github.com/gin-gonic/gin"
)

type ClientsRepository interface {
	Create(ctx context.Context, req client.CreateClientRequest) (client.Client, error)
	List(ctx context.Context) ([]client.Client, error)
	GetByID(ctx context.Context, id string) (client.Client, error)
	Update(ctx context.Context, id string, req client.UpdateClientRequest) (client.Client, error)
	Delete(ctx context.Context, id string) error
}

type ClientsHandler struct {
	repo ClientsRepository
}

func NewClientsHandler(repo ClientsRepository) *ClientsHandler {
	return &ClientsHandler{repo: repo}
}

func (h *ClientsHandler) Create(ctx *gin.Context) {
	var req client.CreateClientRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	c, err := h.repo.Create(cctx, req)

	if err != nil {
		RespondInternal(ctx, "Could not create client")
		return
	}

	RespondData(ctx, http.StatusCreated, c)
}

func (h *ClientsHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	clients, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list clients")
		return
	}

	RespondData(ctx, http.StatusOK, clients)
}

func (h *ClientsHandler) GetByID(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	c, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			RespondNotFound(ctx, "Client not found")
			return
		}
		RespondInternal(ctx, "Could not fetch client")
		return
	}

	RespondData(ctx, http.StatusOK, c)
}

func (h *ClientsHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")

	var req client.UpdateClientRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	c, err := h.repo.Update(cctx, id, req)

	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			RespondNotFound(ctx, "Client not found")
			return
		}
		RespondInternal(ctx, "Could not update client")
		return
	}

	RespondData(ctx, http.StatusOK, c)
}

func (h *ClientsHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			RespondNotFound(ctx, "Client not found")
			return
		}
		RespondInternal(ctx, "Could not delete client")
		return
	}

	RespondMessage(ctx, http.StatusOK, "Client deleted")
}
