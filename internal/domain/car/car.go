package car

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Car struct {
	ID         string    `json:"id"`
	Model      string    `json:"model"`
	Year       int       `json:"year"`
	Color      string    `json:"color,omitempty"`
	DailyPrice float64   `json:"dailyPrice"`
	Available  bool      `json:"available"`
	BrandID    string    `json:"brandId"`
	BrandName  string    `json:"brandName,omitempty"` // joined for display
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

var (
	ErrNotFound    = errors.New("car not found")
	ErrUnavailable = errors.New("car is not available")
)

type CreateCarRequest struct {
	Model      string  `json:"model" binding:"required,min=1,max=120"`
	Year       int     `json:"year" binding:"required,min=1950,max=2100"`
	Color      string  `json:"color" binding:"omitempty,max=40"`
	DailyPrice float64 `json:"dailyPrice" binding:"required,gt=0"`
	BrandID    string  `json:"brandId" binding:"required"`
}

// a full update payload; availability is included so admins can take a car
// off the lot manually.
type UpdateCarRequest struct {
	Model      string  `json:"model" binding:"required,min=1,max=120"`
	Year       int     `json:"year" binding:"required,min=1950,max=2100"`
	Color      string  `json:"color" binding:"omitempty,max=40"`
	DailyPrice float64 `json:"dailyPrice" binding:"required,gt=0"`
	BrandID    string  `json:"brandId" binding:"required"`
	Available  bool    `json:"available"`
}

// New cars always enter the fleet available.

func NewFromCreateRequest(req CreateCarRequest) Car {
	now := time.Now().UTC()

	return Car{
		ID:         uuid.NewString(),
		Model:      req.Model,
		Year:       req.Year,
		Color:      req.Color,
		DailyPrice: req.DailyPrice,
		Available:  true,
		BrandID:    req.BrandID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
