package common

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewEventID(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		id, err := NewEventID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if len(id) != 32 {
			t.Fatalf("expected 32 hex chars, got %q", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestNextBackoffWithJitter(t *testing.T) {
	t.Parallel()

	for attempt := 0; attempt < 10; attempt++ {
		d := NextBackoffWithJitter(attempt)
		base := time.Second << attempt
		if base > 30*time.Second {
			base = 30 * time.Second
		}
		if d < base/2 || d >= base {
			t.Fatalf("attempt %d: backoff %s outside [%s, %s)", attempt, d, base/2, base)
		}
	}
}

func TestSleepCtx_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := SleepCtx(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if err := SleepCtx(context.Background(), 0); err != nil {
		t.Fatalf("expected nil for zero duration, got %v", err)
	}
}
