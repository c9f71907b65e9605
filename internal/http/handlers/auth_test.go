package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fleetmind/rentalhub/internal/auth"
	"github.com/fleetmind/rentalhub/internal/config"
	"github.com/fleetmind/rentalhub/internal/domain/user"
	"github.com/fleetmind/rentalhub/internal/http/handlers"
	"github.com/fleetmind/rentalhub/internal/http/middlewares"
	"github.com/fleetmind/rentalhub/internal/mailer"
	"github.com/fleetmind/rentalhub/internal/resettoken"
	"github.com/fleetmind/rentalhub/internal/security"
	"github.com/gin-gonic/gin"
)

type fakeUsersStore struct {
	byEmail map[string]user.User
	byID    map[string]user.User

	updatedHashes map[string]string
}

func newFakeUsersStore(users ...user.User) *fakeUsersStore {
	s := &fakeUsersStore{
		byEmail:       make(map[string]user.User),
		byID:          make(map[string]user.User),
		updatedHashes: make(map[string]string),
	}
	for _, u := range users {
		s.byEmail[u.Email] = u
		s.byID[u.ID] = u
	}
	return s
}

func (s *fakeUsersStore) GetByEmail(ctx context.Context, email string) (user.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (s *fakeUsersStore) GetByID(ctx context.Context, id string) (user.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (s *fakeUsersStore) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	if _, ok := s.byID[id]; !ok {
		return user.ErrNotFound
	}
	s.updatedHashes[id] = passwordHash
	return nil
}

type fakeMailer struct {
	sent    []mailer.Message
	failErr error
}

func (m *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

func newAuthFixture(t *testing.T, users *fakeUsersStore, mail *fakeMailer) (*handlers.AuthHandler, *auth.Manager) {
	t.Helper()

	jwtManager := auth.NewManager("test-secret", time.Hour)
	resets := resettoken.NewRegistry(resettoken.NewMemoryStore(), 15*time.Minute)
	cfg := config.Config{Env: "test", FrontendURL: "http://localhost:5173"}

	return handlers.NewAuthHandler(users, users, jwtManager, resets, mail, nil, cfg), jwtManager
}

func seedUser(t *testing.T, email, password string) user.User {
	t.Helper()

	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	return user.User{
		ID:           newUUID(),
		Name:         "Ada",
		Email:        email,
		PasswordHash: hash,
		Role:         "user",
	}
}

func TestLoginHandler(t *testing.T) {
	u := seedUser(t, "ada@example.com", "correct horse")

	tests := []struct {
		name           string
		body           string
		wantStatusCode int
	}{
		{
			name:           "success",
			body:           `{"email": "ada@example.com", "password": "correct horse"}`,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "wrong_password",
			body:           `{"email": "ada@example.com", "password": "wrong"}`,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "unknown_email",
			body:           `{"email": "nobody@example.com", "password": "whatever"}`,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "validation_error",
			body:           `{"email": "not-an-email"}`,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			h, _ := newAuthFixture(t, newFakeUsersStore(u), &fakeMailer{})
			r := setupRouter(http.MethodPost, "/auth/login", h.Login)

			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusOK {
				var resp struct {
					Message string `json:"message"`
					Token   string `json:"token"`
					User    struct {
						ID    string `json:"id"`
						Email string `json:"email"`
						Role  string `json:"role"`
					} `json:"user"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if resp.Token == "" {
					t.Fatalf("expected a token in the response")
				}
				if resp.User.Email != u.Email {
					t.Fatalf("got user email %q, want %q", resp.User.Email, u.Email)
				}
				if strings.Contains(w.Body.String(), "passwordHash") || strings.Contains(w.Body.String(), u.PasswordHash) {
					t.Fatalf("password hash leaked in response: %s", w.Body.String())
				}
			}
		})
	}
}

func TestMeHandler(t *testing.T) {
	u := seedUser(t, "ada@example.com", "correct horse")

	h, jwtManager := newAuthFixture(t, newFakeUsersStore(u), &fakeMailer{})
	authmw := middlewares.NewAuthMiddleware(jwtManager)

	r := gin.New()
	r.GET("/auth/me", authmw.RequireAuth(), h.Me)

	token, err := jwtManager.GenerateToken(u.ID, u.Role)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	tests := []struct {
		name           string
		header         string
		wantStatusCode int
	}{
		{
			name:           "success",
			header:         "Bearer " + token,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing_header",
			header:         "",
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "wrong_scheme",
			header:         "Basic abc123",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "garbage_token",
			header:         "Bearer not.a.jwt",
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

// linkToken pulls the user id and raw token out of the mailed reset link:
// <frontend>/reset-password/<userID>/<raw>
func linkToken(t *testing.T, html string) (string, string) {
	t.Helper()

	idx := strings.Index(html, "/reset-password/")
	if idx == -1 {
		t.Fatalf("no reset link in email: %s", html)
	}

	rest := html[idx+len("/reset-password/"):]
	end := strings.IndexAny(rest, `"'`)
	if end == -1 {
		t.Fatalf("unterminated reset link in email: %s", html)
	}

	parts := strings.Split(rest[:end], "/")
	if len(parts) != 2 {
		t.Fatalf("unexpected reset link shape: %s", rest[:end])
	}
	return parts[0], parts[1]
}

func TestForgotAndResetPasswordFlow(t *testing.T) {
	u := seedUser(t, "ada@example.com", "old password")
	users := newFakeUsersStore(u)
	mail := &fakeMailer{}

	h, _ := newAuthFixture(t, users, mail)

	r := gin.New()
	r.POST("/auth/forgot-password", h.ForgotPassword)
	r.POST("/auth/reset-password", h.ResetPassword)

	// 1) request the reset email
	req := httptest.NewRequest(http.MethodPost, "/auth/forgot-password", bytes.NewBufferString(`{"email": "ada@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("forgot-password got status %d, body=%s", w.Code, w.Body.String())
	}
	if len(mail.sent) != 1 {
		t.Fatalf("got %d emails, want 1", len(mail.sent))
	}
	if mail.sent[0].To != "ada@example.com" {
		t.Fatalf("email went to %q", mail.sent[0].To)
	}

	userID, raw := linkToken(t, mail.sent[0].HTML)
	if userID != u.ID {
		t.Fatalf("link user id %q, want %q", userID, u.ID)
	}

	// 2) a wrong token is rejected and does not burn the entry
	badBody := `{"id": "` + u.ID + `", "token": "deadbeef", "password": "new password 1"}`
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/auth/reset-password", bytes.NewBufferString(badBody))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("wrong token got status %d, body=%s", w.Code, w.Body.String())
	}
	if len(users.updatedHashes) != 0 {
		t.Fatalf("password updated despite wrong token")
	}

	// 3) the real token still works after the failed attempt
	goodBody := `{"id": "` + u.ID + `", "token": "` + raw + `", "password": "new password 1"}`
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/auth/reset-password", bytes.NewBufferString(goodBody))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("reset-password got status %d, body=%s", w.Code, w.Body.String())
	}

	newHash, ok := users.updatedHashes[u.ID]
	if !ok {
		t.Fatalf("password hash was not updated")
	}
	if err := security.CheckPassword(newHash, "new password 1"); err != nil {
		t.Fatalf("stored hash does not match new password: %v", err)
	}

	// 4) the token is single use
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/auth/reset-password", bytes.NewBufferString(goodBody))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("token reuse got status %d, body=%s", w.Code, w.Body.String())
	}
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	h, _ := newAuthFixture(t, newFakeUsersStore(), &fakeMailer{})
	r := setupRouter(http.MethodPost, "/auth/forgot-password", h.ForgotPassword)

	req := httptest.NewRequest(http.MethodPost, "/auth/forgot-password", bytes.NewBufferString(`{"email": "nobody@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}
}

func TestForgotPasswordMailFailure(t *testing.T) {
	u := seedUser(t, "ada@example.com", "old password")
	mail := &fakeMailer{failErr: errors.New("smtp down")}

	h, _ := newAuthFixture(t, newFakeUsersStore(u), mail)
	r := setupRouter(http.MethodPost, "/auth/forgot-password", h.ForgotPassword)

	req := httptest.NewRequest(http.MethodPost, "/auth/forgot-password", bytes.NewBufferString(`{"email": "ada@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusInternalServerError, w.Body.String())
	}
}
