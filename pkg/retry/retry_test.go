package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig() Config {
	return Config{
		MaxAttempts: 3,
		InitDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Strategy:    Constant,
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_ReturnsLastError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_StopShortCircuits(t *testing.T) {
	fatal := errors.New("permanent")
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return Stop(fatal)
	})
	if !errors.Is(err, fatal) {
		t.Errorf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call after Stop, got %d", calls)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{
		MaxAttempts: 5,
		InitDelay:   time.Hour,
		Strategy:    Constant,
	}
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := Do(ctx, cfg, func() error { return errors.New("transient") })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDo_ZeroAttemptsIsNoop(t *testing.T) {
	calls := 0
	if err := Do(context.Background(), Config{}, func() error {
		calls++
		return errors.New("never seen")
	}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if calls != 0 {
		t.Errorf("expected 0 calls, got %d", calls)
	}
}

func TestDelay_CapsAtMaxDelay(t *testing.T) {
	cfg := Config{
		InitDelay: time.Second,
		MaxDelay:  2 * time.Second,
		Strategy:  Exponential,
	}
	if d := cfg.delay(5); d > 2*time.Second {
		t.Errorf("expected delay capped at 2s, got %v", d)
	}
}
