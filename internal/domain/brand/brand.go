package brand

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Brand struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("brand not found")

type CreateBrandRequest struct {
	Name string `json:"name" binding:"required,min=2,max=80"`
}

type UpdateBrandRequest struct {
	Name string `json:"name" binding:"required,min=2,max=80"`
}

func NewFromCreateRequest(req CreateBrandRequest) Brand {
	now := time.Now().UTC()

	return Brand{
		ID:        uuid.NewString(),
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
