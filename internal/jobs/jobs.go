package jobs

import (
	"encoding/json"
	"errors"
	"time"
)

const (
	TypeRentalConfirmation = "rental.confirmation"
)

var (
	ErrInvalidJobType    = errors.New("invalid job type")
	ErrInvalidJobPayload = errors.New("invalid job payload")
)

// RentalConfirmationPayload is enqueued in the same transaction that creates
// the rental; the worker loads nothing else, everything needed to send the
// email travels in the payload.
type RentalConfirmationPayload struct {
	RentalID    string    `json:"rentalId"`
	CarModel    string    `json:"carModel"`
	ClientName  string    `json:"clientName"`
	Email       string    `json:"email"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Total       float64   `json:"total"`
	RequestedAt time.Time `json:"requestedAt"`
}

func (p RentalConfirmationPayload) JSON() (json.RawMessage, error) {
	b, err := json.Marshal(p)

	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

func DecodeRentalConfirmation(raw json.RawMessage) (RentalConfirmationPayload, error) {
	if len(raw) == 0 {
		return RentalConfirmationPayload{}, ErrInvalidJobPayload
	}

	var p RentalConfirmationPayload

	if err := json.Unmarshal(raw, &p); err != nil {
		return RentalConfirmationPayload{}, ErrInvalidJobPayload
	}

	if p.RentalID == "" || p.Email == "" {
		return RentalConfirmationPayload{}, ErrInvalidJobPayload
	}

	return p, nil
}
