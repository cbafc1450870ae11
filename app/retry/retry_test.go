package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	policy := Policy{MaxAttempts: 3, Backoff: Fixed(time.Hour)}

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	policy := Policy{MaxAttempts: 3, Backoff: Fixed(time.Millisecond)}

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestDo_ExhaustsBudget(t *testing.T) {
	policy := Policy{MaxAttempts: 3, Backoff: Fixed(time.Millisecond)}

	failure := errors.New("permanent")
	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		return failure
	})

	if err == nil {
		t.Fatal("Expected an error after exhausting attempts")
	}
	if !errors.Is(err, failure) {
		t.Errorf("Expected wrapped original error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	policy := Policy{}

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestDo_CancelledContext(t *testing.T) {
	policy := Policy{MaxAttempts: 5, Backoff: Fixed(time.Minute)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := policy.Do(ctx, func() error {
		calls++
		return errors.New("transient")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Errorf("Expected 0 calls on cancelled context, got %d", calls)
	}
}

func TestDo_CancelledDuringBackoff(t *testing.T) {
	policy := Policy{MaxAttempts: 2, Backoff: Fixed(time.Minute)}

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- policy.Do(ctx, func() error {
			calls++
			return errors.New("transient")
		})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Do did not return after context cancellation")
	}

	if calls != 1 {
		t.Errorf("Expected 1 call before cancellation, got %d", calls)
	}
}
