package rental

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Rental struct {
	ID            string    `json:"id"`
	CarID         string    `json:"carId"`
	ClientID      string    `json:"clientId"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	Total         float64   `json:"total"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	// joined for display only, never written
	CarModel       string `json:"carModel,omitempty"`
	ClientName     string `json:"clientName,omitempty"`
	ClientLastName string `json:"clientLastName,omitempty"`
}

var ErrNotFound = errors.New("rental not found")

type CreateRentalRequest struct {
	CarID         string    `json:"carId" binding:"required"`
	ClientID      string    `json:"clientId" binding:"required"`
	StartDate     time.Time `json:"startDate" binding:"required"`
	EndDate       time.Time `json:"endDate" binding:"required"`
	Total         float64   `json:"total" binding:"required,gt=0"`
	Status        string    `json:"status" binding:"omitempty,oneof=active completed cancelled"`
	PaymentMethod string    `json:"paymentMethod" binding:"omitempty,max=40"`
}

// full-field overwrite; does not re-validate car availability (see handler).
type UpdateRentalRequest struct {
	CarID         string    `json:"carId" binding:"required"`
	ClientID      string    `json:"clientId" binding:"required"`
	StartDate     time.Time `json:"startDate" binding:"required"`
	EndDate       time.Time `json:"endDate" binding:"required"`
	Total         float64   `json:"total" binding:"required,gt=0"`
	Status        string    `json:"status" binding:"omitempty,oneof=active completed cancelled"`
	PaymentMethod string    `json:"paymentMethod" binding:"omitempty,max=40"`
}

func NewFromCreateRequest(req CreateRentalRequest) Rental {
	now := time.Now().UTC()

	status := req.Status
	if status == "" {
		status = "active"
	}

	return Rental{
		ID:            uuid.NewString(),
		CarID:         req.CarID,
		ClientID:      req.ClientID,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Total:         req.Total,
		Status:        status,
		PaymentMethod: req.PaymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
