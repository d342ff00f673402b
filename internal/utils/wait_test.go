package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitForReturnsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WaitFor(ctx, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWaitForElapses(t *testing.T) {
	t.Parallel()

	if err := WaitFor(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error for zero duration: %v", err)
	}
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		base    time.Duration
		attempt int
		expect  time.Duration
	}{
		{name: "first attempt uses base", base: time.Second, attempt: 0, expect: time.Second},
		{name: "doubles per attempt", base: time.Second, attempt: 2, expect: 4 * time.Second},
		{name: "capped", base: time.Second, attempt: 10, expect: maxBackoff},
		{name: "zero base", base: 0, attempt: 3, expect: 0},
		{name: "negative attempt", base: time.Second, attempt: -1, expect: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Backoff(tt.base, tt.attempt); got != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}
