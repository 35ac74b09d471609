package power

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/bft-labs/warmboot/pkg/log"
)

func TestSuspendReturnsAfterDuration(t *testing.T) {
	m := New(clock.New(), log.Noop{})
	start := time.Now()
	if err := m.Suspend(context.Background(), 5*time.Millisecond); err != nil {
		t.Fatalf("Suspend: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 5*time.Millisecond {
		t.Fatalf("Suspend returned after %v, want >= 5ms", elapsed)
	}
}

func TestSuspendAbortsOnCancel(t *testing.T) {
	m := New(clock.New(), log.Noop{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := m.Suspend(ctx, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
