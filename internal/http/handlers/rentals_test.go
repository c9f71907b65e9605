package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fleetmind/rentalhub/internal/domain/car"
	"github.com/fleetmind/rentalhub/internal/domain/client"
	"github.com/fleetmind/rentalhub/internal/domain/job"
	"github.com/fleetmind/rentalhub/internal/domain/rental"
	"github.com/fleetmind/rentalhub/internal/http/handlers"
	"github.com/fleetmind/rentalhub/internal/jobs"
	"github.com/fleetmind/rentalhub/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

func newUUID() string {
	return uuid.NewString()
}

// small helper which returns a gin engine to mount one handler per test

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

// fakeTx only needs Commit/Rollback; the handler never touches the rest.

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeRentalsRepo struct {
	tx         *fakeTx
	createTxFn func(ctx context.Context, tx pgx.Tx, req rental.CreateRentalRequest) (postgres.CreatedRental, error)
	listFn     func(ctx context.Context) ([]rental.Rental, error)
	getFn      func(ctx context.Context, id string) (rental.Rental, error)
	updateFn   func(ctx context.Context, id string, req rental.UpdateRentalRequest) (rental.Rental, error)
	deleteFn   func(ctx context.Context, id string) error
}

func (f *fakeRentalsRepo) BeginTx(ctx context.Context) (pgx.Tx, error) {
	if f.tx == nil {
		f.tx = &fakeTx{}
	}
	return f.tx, nil
}

func (f *fakeRentalsRepo) CreateTx(ctx context.Context, tx pgx.Tx, req rental.CreateRentalRequest) (postgres.CreatedRental, error) {
	if f.createTxFn != nil {
		return f.createTxFn(ctx, tx, req)
	}
	return postgres.CreatedRental{}, nil
}

func (f *fakeRentalsRepo) List(ctx context.Context) ([]rental.Rental, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return []rental.Rental{}, nil
}

func (f *fakeRentalsRepo) GetByID(ctx context.Context, id string) (rental.Rental, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return rental.Rental{}, nil
}

func (f *fakeRentalsRepo) Update(ctx context.Context, id string, req rental.UpdateRentalRequest) (rental.Rental, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return rental.Rental{}, nil
}

func (f *fakeRentalsRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type fakeJobsRepo struct {
	created    []job.CreateRequest
	createTxFn func(ctx context.Context, tx pgx.Tx, req job.CreateRequest) (job.Job, error)
}

func (f *fakeJobsRepo) CreateTx(ctx context.Context, tx pgx.Tx, req job.CreateRequest) (job.Job, error) {
	f.created = append(f.created, req)
	if f.createTxFn != nil {
		return f.createTxFn(ctx, tx, req)
	}
	return job.New(req), nil
}

func rentalBody(carID, clientID string, start, end time.Time) string {
	return `{
		"carId": "` + carID + `",
		"clientId": "` + clientID + `",
		"startDate": "` + start.Format(time.RFC3339) + `",
		"endDate": "` + end.Format(time.RFC3339) + `",
		"total": 450.0,
		"paymentMethod": "card"
	}`
}

func TestCreateRentalHandler(t *testing.T) {
	now := time.Now().UTC()
	carID := newUUID()
	clientID := newUUID()

	tests := []struct {
		name           string
		body           string
		repoSetup      func(*fakeRentalsRepo)
		wantStatusCode int
		wantJobs       int
	}{
		{
			name: "success",
			body: rentalBody(carID, clientID, now, now.Add(72*time.Hour)),
			repoSetup: func(f *fakeRentalsRepo) {
				f.createTxFn = func(ctx context.Context, tx pgx.Tx, req rental.CreateRentalRequest) (postgres.CreatedRental, error) {
					r := rental.NewFromCreateRequest(req)
					r.CarModel = "Corolla"
					r.ClientName = "Ada"
					r.ClientLastName = "Lovelace"
					return postgres.CreatedRental{Rental: r, ClientEmail: "ada@example.com"}, nil
				}
			},
			wantStatusCode: http.StatusCreated,
			wantJobs:       1,
		},
		{
			name: "car_not_found",
			body: rentalBody(carID, clientID, now, now.Add(72*time.Hour)),
			repoSetup: func(f *fakeRentalsRepo) {
				f.createTxFn = func(ctx context.Context, tx pgx.Tx, req rental.CreateRentalRequest) (postgres.CreatedRental, error) {
					return postgres.CreatedRental{}, car.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "car_unavailable",
			body: rentalBody(carID, clientID, now, now.Add(72*time.Hour)),
			repoSetup: func(f *fakeRentalsRepo) {
				f.createTxFn = func(ctx context.Context, tx pgx.Tx, req rental.CreateRentalRequest) (postgres.CreatedRental, error) {
					return postgres.CreatedRental{}, car.ErrUnavailable
				}
			},
			wantStatusCode: http.StatusConflict,
		},
		{
			name: "client_not_found",
			body: rentalBody(carID, clientID, now, now.Add(72*time.Hour)),
			repoSetup: func(f *fakeRentalsRepo) {
				f.createTxFn = func(ctx context.Context, tx pgx.Tx, req rental.CreateRentalRequest) (postgres.CreatedRental, error) {
					return postgres.CreatedRental{}, client.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "validation_error",
			body:           `{"carId": ""}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "end_before_start",
			body:           rentalBody(carID, clientID, now.Add(72*time.Hour), now),
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			body: rentalBody(carID, clientID, now, now.Add(72*time.Hour)),
			repoSetup: func(f *fakeRentalsRepo) {
				f.createTxFn = func(ctx context.Context, tx pgx.Tx, req rental.CreateRentalRequest) (postgres.CreatedRental, error) {
					return postgres.CreatedRental{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRentalsRepo{}
			jobsRepo := &fakeJobsRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(repo)
			}

			h := handlers.NewRentalsHandler(repo, jobsRepo)
			r := setupRouter(http.MethodPost, "/rentals", h.Create)

			req := httptest.NewRequest(http.MethodPost, "/rentals", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if len(jobsRepo.created) != tt.wantJobs {
				t.Fatalf("got %d jobs enqueued, want %d", len(jobsRepo.created), tt.wantJobs)
			}

			if tt.wantStatusCode == http.StatusCreated {
				if repo.tx == nil || !repo.tx.committed {
					t.Fatalf("expected transaction to be committed")
				}

				j := jobsRepo.created[0]

				if j.Type != jobs.TypeRentalConfirmation {
					t.Fatalf("got job type %q, want %q", j.Type, jobs.TypeRentalConfirmation)
				}

				p, err := jobs.DecodeRentalConfirmation(j.Payload)
				if err != nil {
					t.Fatalf("failed to decode job payload: %v", err)
				}
				if p.Email != "ada@example.com" {
					t.Fatalf("got payload email %q, want ada@example.com", p.Email)
				}
				if p.CarModel != "Corolla" {
					t.Fatalf("got payload car model %q, want Corolla", p.CarModel)
				}
			} else if repo.tx != nil && repo.tx.committed {
				t.Fatalf("transaction committed on failure path")
			}
		})
	}
}

func TestGetRentalByIDHandler(t *testing.T) {
	validID := newUUID()
	missingID := newUUID()

	tests := []struct {
		name           string
		url            string
		repoSetup      func(*fakeRentalsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/rentals/" + validID,
			repoSetup: func(f *fakeRentalsRepo) {
				f.getFn = func(ctx context.Context, id string) (rental.Rental, error) {
					return rental.Rental{ID: id, CarModel: "Corolla", Status: "active"}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			url:  "/rentals/" + missingID,
			repoSetup: func(f *fakeRentalsRepo) {
				f.getFn = func(ctx context.Context, id string) (rental.Rental, error) {
					return rental.Rental{}, rental.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "repo_error",
			url:  "/rentals/" + validID,
			repoSetup: func(f *fakeRentalsRepo) {
				f.getFn = func(ctx context.Context, id string) (rental.Rental, error) {
					return rental.Rental{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRentalsRepo{}
			if tt.repoSetup != nil {
				tt.repoSetup(repo)
			}

			h := handlers.NewRentalsHandler(repo, &fakeJobsRepo{})
			r := setupRouter(http.MethodGet, "/rentals/:id", h.GetByID)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestListRentalsHandler(t *testing.T) {
	now := time.Now().UTC()

	repo := &fakeRentalsRepo{
		listFn: func(ctx context.Context) ([]rental.Rental, error) {
			return []rental.Rental{
				{ID: newUUID(), CarModel: "Corolla", ClientName: "Ada", StartDate: now, EndDate: now.Add(48 * time.Hour), Total: 200, Status: "active"},
				{ID: newUUID(), CarModel: "Civic", ClientName: "Grace", StartDate: now, EndDate: now.Add(24 * time.Hour), Total: 100, Status: "completed"},
			}, nil
		},
	}

	h := handlers.NewRentalsHandler(repo, &fakeJobsRepo{})
	r := setupRouter(http.MethodGet, "/rentals", h.List)

	req := httptest.NewRequest(http.MethodGet, "/rentals", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Data []rental.Rental `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("got %d rentals, want 2", len(resp.Data))
	}
}

func TestUpdateRentalHandler(t *testing.T) {
	now := time.Now().UTC()
	validID := newUUID()
	missingID := newUUID()
	carID := newUUID()
	clientID := newUUID()

	body := `{
		"carId": "` + carID + `",
		"clientId": "` + clientID + `",
		"startDate": "` + now.Format(time.RFC3339) + `",
		"endDate": "` + now.Add(48*time.Hour).Format(time.RFC3339) + `",
		"total": 300.0,
		"status": "completed"
	}`

	tests := []struct {
		name           string
		url            string
		body           string
		repoSetup      func(*fakeRentalsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/rentals/" + validID,
			body: body,
			repoSetup: func(f *fakeRentalsRepo) {
				f.updateFn = func(ctx context.Context, id string, req rental.UpdateRentalRequest) (rental.Rental, error) {
					return rental.Rental{ID: id, CarID: req.CarID, Status: req.Status, Total: req.Total}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			url:  "/rentals/" + missingID,
			body: body,
			repoSetup: func(f *fakeRentalsRepo) {
				f.updateFn = func(ctx context.Context, id string, req rental.UpdateRentalRequest) (rental.Rental, error) {
					return rental.Rental{}, rental.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "validation_error",
			url:            "/rentals/" + validID,
			body:           `{"carId": ""}`,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRentalsRepo{}
			if tt.repoSetup != nil {
				tt.repoSetup(repo)
			}

			h := handlers.NewRentalsHandler(repo, &fakeJobsRepo{})
			r := setupRouter(http.MethodPut, "/rentals/:id", h.Update)

			req := httptest.NewRequest(http.MethodPut, tt.url, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestDeleteRentalHandler(t *testing.T) {
	validID := newUUID()
	missingID := newUUID()

	tests := []struct {
		name           string
		url            string
		repoSetup      func(*fakeRentalsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/rentals/" + validID,
			repoSetup: func(f *fakeRentalsRepo) {
				f.deleteFn = func(ctx context.Context, id string) error {
					return nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			url:  "/rentals/" + missingID,
			repoSetup: func(f *fakeRentalsRepo) {
				f.deleteFn = func(ctx context.Context, id string) error {
					return rental.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "repo_error",
			url:  "/rentals/" + validID,
			repoSetup: func(f *fakeRentalsRepo) {
				f.deleteFn = func(ctx context.Context, id string) error {
					return errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRentalsRepo{}
			if tt.repoSetup != nil {
				tt.repoSetup(repo)
			}

			h := handlers.NewRentalsHandler(repo, &fakeJobsRepo{})
			r := setupRouter(http.MethodDelete, "/rentals/:id", h.Delete)

			req := httptest.NewRequest(http.MethodDelete, tt.url, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}
