package lock

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLocalLock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	l := NewLocal()
	l.now = func() time.Time { return now }

	tok, ok, err := l.Lock(ctx, "submit:s-1", time.Second)
	if err != nil || !ok {
		t.Fatalf("Lock = %v, %v", ok, err)
	}

	if _, ok, _ := l.Lock(ctx, "submit:s-1", time.Second); ok {
		t.Error("lock acquired twice")
	}
	if _, ok, _ := l.Lock(ctx, "submit:s-2", time.Second); !ok {
		t.Error("independent key blocked")
	}

	if err := l.Unlock(ctx, "submit:s-1", "other"); !errors.Is(err, ErrNotHeld) {
		t.Errorf("foreign unlock err = %v", err)
	}
	if err := l.Unlock(ctx, "submit:s-1", tok); err != nil {
		t.Fatal(err)
	}

	if _, ok, _ := l.Lock(ctx, "submit:s-1", time.Second); !ok {
		t.Error("lock not released")
	}

	now = now.Add(2 * time.Second)
	if _, ok, _ := l.Lock(ctx, "submit:s-1", time.Second); !ok {
		t.Error("expired lease still blocks")
	}
}
