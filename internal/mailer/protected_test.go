package mailer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fleetmind/rentalhub/internal/mailer"
)

type fakeMailer struct {
	sendFn func(ctx context.Context, msg mailer.Message) error
	calls  int
}

func (f *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	f.calls++
	if f.sendFn != nil {
		return f.sendFn(ctx, msg)
	}
	return nil
}

func TestProtectedMailerOpensAfterThreshold(t *testing.T) {
	inner := &fakeMailer{
		sendFn: func(ctx context.Context, msg mailer.Message) error {
			return errors.New("smtp down")
		},
	}

	p := mailer.NewProtectedMailer(inner, mailer.ProtectedConfig{
		FailureThreshold: 2,
		Cooldown:         time.Hour,
	})

	msg := mailer.Message{To: "a@example.com", Subject: "x", HTML: "y"}

	for i := 0; i < 2; i++ {
		if err := p.Send(context.Background(), msg); err == nil {
			t.Fatalf("send %d should have failed", i)
		}
	}

	// circuit is open now: inner must not be called again
	err := p.Send(context.Background(), msg)
	if !errors.Is(err, mailer.ErrCircuitOpen) {
		t.Fatalf("got %v, want ErrCircuitOpen", err)
	}
	if inner.calls != 2 {
		t.Fatalf("inner called %d times, want 2", inner.calls)
	}
}

func TestProtectedMailerClosesAfterSuccess(t *testing.T) {
	failing := true
	inner := &fakeMailer{
		sendFn: func(ctx context.Context, msg mailer.Message) error {
			if failing {
				return errors.New("smtp down")
			}
			return nil
		},
	}

	p := mailer.NewProtectedMailer(inner, mailer.ProtectedConfig{
		FailureThreshold: 1,
		Cooldown:         time.Millisecond,
	})

	msg := mailer.Message{To: "a@example.com", Subject: "x", HTML: "y"}

	if err := p.Send(context.Background(), msg); err == nil {
		t.Fatal("first send should fail")
	}

	// wait out the cooldown, then recover
	time.Sleep(5 * time.Millisecond)
	failing = false

	if err := p.Send(context.Background(), msg); err != nil {
		t.Fatalf("half-open trial failed: %v", err)
	}

	if err := p.Send(context.Background(), msg); err != nil {
		t.Fatalf("closed-circuit send failed: %v", err)
	}
}
