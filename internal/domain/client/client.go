package client

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("client not found")

type CreateClientRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=120"`
	LastName string `json:"lastName" binding:"required,min=2,max=120"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone" binding:"omitempty,max=30"`
}

type UpdateClientRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=120"`
	LastName string `json:"lastName" binding:"required,min=2,max=120"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone" binding:"omitempty,max=30"`
}

func NewFromCreateRequest(req CreateClientRequest) Client {
	now := time.Now().UTC()

	return Client{
		ID:        uuid.NewString(),
		Name:      req.Name,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
