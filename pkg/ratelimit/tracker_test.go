package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func TestTracker_IgnoresNonThrottledResponses(t *testing.T) {
	tracker := NewTracker(nil, "acme", zerolog.Nop())
	ctx := context.Background()

	for _, status := range []int{200, 304, 404, 500, 503} {
		if err := tracker.UpdateFromResponse(ctx, status, http.Header{}); err != nil {
			t.Fatalf("status %d: unexpected error: %v", status, err)
		}
	}

	state, err := tracker.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state.IsThrottled() {
		t.Error("tracker throttled without a 429")
	}
}

func TestTracker_MemoryThrottleWindow(t *testing.T) {
	tracker := NewTracker(nil, "acme", zerolog.Nop())
	ctx := context.Background()

	h := http.Header{}
	h.Set("x-ms-retry-after-ms", "50")
	if err := tracker.UpdateFromResponse(ctx, http.StatusTooManyRequests, h); err != nil {
		t.Fatalf("UpdateFromResponse failed: %v", err)
	}

	state, _ := tracker.GetState(ctx)
	if !state.IsThrottled() {
		t.Fatal("expected throttled state")
	}
	if state.RetryAfter != 50*time.Millisecond {
		t.Errorf("RetryAfter = %v, want 50ms", state.RetryAfter)
	}

	start := time.Now()
	if err := tracker.Wait(ctx); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("Wait returned after %v, expected to wait for the window", elapsed)
	}
}

func TestTracker_DefaultAndCappedRetryAfter(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{name: "missing hint", value: "", want: DefaultRetryAfter},
		{name: "capped hint", value: "600000", want: MaxRetryAfter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewTracker(nil, "acme", zerolog.Nop())
			h := http.Header{}
			if tt.value != "" {
				h.Set("x-ms-retry-after-ms", tt.value)
			}
			_ = tracker.UpdateFromResponse(context.Background(), http.StatusTooManyRequests, h)

			state, _ := tracker.GetState(context.Background())
			if state.RetryAfter != tt.want {
				t.Errorf("RetryAfter = %v, want %v", state.RetryAfter, tt.want)
			}
		})
	}
}

func TestTracker_WaitHonorsContext(t *testing.T) {
	tracker := NewTracker(nil, "acme", zerolog.Nop())
	h := http.Header{}
	h.Set("x-ms-retry-after-ms", "10000")
	_ = tracker.UpdateFromResponse(context.Background(), http.StatusTooManyRequests, h)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := tracker.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait = %v, want context.DeadlineExceeded", err)
	}
}

func TestTracker_RedisSharedState(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	client.FlushDB(ctx)

	first := NewTracker(client, "acme", zerolog.Nop())
	second := NewTracker(client, "acme", zerolog.Nop())

	h := http.Header{}
	h.Set("x-ms-retry-after-ms", "2000")
	if err := first.UpdateFromResponse(ctx, http.StatusTooManyRequests, h); err != nil {
		t.Fatalf("UpdateFromResponse failed: %v", err)
	}

	state, err := second.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if !state.IsThrottled() {
		t.Error("second tracker should observe the shared throttle window")
	}
}
