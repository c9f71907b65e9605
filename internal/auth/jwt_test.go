package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/fleetmind/rentalhub/internal/auth"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	token, err := m.GenerateToken("user-123", "admin")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := m.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if claims.UserID != "user-123" {
		t.Fatalf("got sub %q, want user-123", claims.UserID)
	}
	if claims.Role != "admin" {
		t.Fatalf("got rol %q, want admin", claims.Role)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	m := auth.NewManager("test-secret", time.Nanosecond)

	token, err := m.GenerateToken("user-123", "user")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	_, err = m.VerifyToken(token)
	if !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := auth.NewManager("secret-a", time.Hour)
	verifier := auth.NewManager("secret-b", time.Hour)

	token, err := issuer.GenerateToken("user-123", "user")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	_, err = verifier.VerifyToken(token)
	if !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	_, err := m.VerifyToken("not-a-token")
	if !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
}
