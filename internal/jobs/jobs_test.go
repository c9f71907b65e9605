package jobs_test

import (
	"errors"
	"testing"
	"time"

	"github.com/fleetmind/rentalhub/internal/jobs"
)

func TestRentalConfirmationRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)

	p := jobs.RentalConfirmationPayload{
		RentalID:    "rental-1",
		CarModel:    "Corolla",
		ClientName:  "Ana",
		Email:       "ana@example.com",
		StartDate:   now,
		EndDate:     now.AddDate(0, 0, 3),
		Total:       150,
		RequestedAt: now,
	}

	raw, err := p.JSON()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	got, err := jobs.DecodeRentalConfirmation(raw)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if got.RentalID != p.RentalID || got.Email != p.Email || got.Total != p.Total {
		t.Fatalf("round trip mismatch: got %+v", got)
	}
}

func TestDecodeRejectsEmptyPayload(t *testing.T) {
	_, err := jobs.DecodeRentalConfirmation(nil)
	if !errors.Is(err, jobs.ErrInvalidJobPayload) {
		t.Fatalf("got %v, want ErrInvalidJobPayload", err)
	}
}

func TestDecodeRejectsMissingFields(t *testing.T) {
	_, err := jobs.DecodeRentalConfirmation([]byte(`{"carModel":"Corolla"}`))
	if !errors.Is(err, jobs.ErrInvalidJobPayload) {
		t.Fatalf("got %v, want ErrInvalidJobPayload", err)
	}
}
