package ingest

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryWithBackoff_Success(t *testing.T) {
	calls := 0
	operation := func() error {
		calls++
		return nil
	}

	err := RetryWithBackoff(context.Background(), operation, 3, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("Expected 1 call, got %d", calls)
	}
}

func TestRetryWithBackoff_EventualSuccess(t *testing.T) {
	calls := 0
	operation := func() error {
		calls++
		if calls < 3 {
			return errors.New("transient failure")
		}
		return nil
	}

	err := RetryWithBackoff(context.Background(), operation, 5, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Expected eventual success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("Expected 3 calls, got %d", calls)
	}
}

func TestRetryWithBackoff_AllAttemptsFail(t *testing.T) {
	calls := 0
	wantErr := errors.New("persistent failure")
	operation := func() error {
		calls++
		return wantErr
	}

	err := RetryWithBackoff(context.Background(), operation, 3, 10*time.Millisecond)
	if !errors.Is(err, wantErr) {
		t.Fatalf("Expected last error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("Expected 3 calls, got %d", calls)
	}
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	operation := func() error {
		cancel()
		return errors.New("failure")
	}

	err := RetryWithBackoff(ctx, operation, 10, 10*time.Millisecond)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestRetryWithBackoff_InvalidAttempts(t *testing.T) {
	err := RetryWithBackoff(context.Background(), func() error { return nil }, 0, time.Millisecond)
	if !errors.Is(err, ErrInvalidMaxAttempts) {
		t.Fatalf("Expected ErrInvalidMaxAttempts, got %v", err)
	}
}
