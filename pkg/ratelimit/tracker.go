package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Sternrassler/docdb-client/pkg/headers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for throttle tracking.
var (
	docdbThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docdb_throttled_responses_total",
		Help: "Total number of 429 responses received",
	})

	docdbThrottleWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "docdb_throttle_wait_seconds",
		Help:    "Time requests spent waiting for a throttle window to close",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	})
)

// Tracker records throttle windows and gates requests.
// With a nil Redis client the state is kept in process memory.
type Tracker struct {
	redis  *redis.Client
	key    string
	logger zerolog.Logger

	mu    sync.Mutex
	local ThrottleState
}

// NewTracker creates a throttle tracker for one account.
func NewTracker(redisClient *redis.Client, account string, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:  redisClient,
		key:    RedisKeyPrefix + account,
		logger: logger,
	}
}

// GetState returns the current throttle state. An account without recorded
// throttling reports a zero state.
func (t *Tracker) GetState(ctx context.Context) (*ThrottleState, error) {
	if t.redis == nil {
		t.mu.Lock()
		defer t.mu.Unlock()
		state := t.local
		return &state, nil
	}

	data, err := t.redis.Get(ctx, t.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &ThrottleState{}, nil
		}
		return nil, fmt.Errorf("get throttle state: %w", err)
	}

	var state ThrottleState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse throttle state: %w", err)
	}

	return &state, nil
}

// UpdateFromResponse opens a throttle window when the server answered 429.
// Other status codes are ignored.
func (t *Tracker) UpdateFromResponse(ctx context.Context, statusCode int, h http.Header) error {
	if statusCode != http.StatusTooManyRequests {
		return nil
	}

	retryAfter, ok := headers.RetryAfterFromHeaders(h)
	if !ok {
		retryAfter = DefaultRetryAfter
	}
	if retryAfter > MaxRetryAfter {
		retryAfter = MaxRetryAfter
	}

	now := time.Now()
	state := ThrottleState{
		RetryAfter:     retryAfter,
		ThrottledUntil: now.Add(retryAfter),
		LastUpdate:     now,
	}

	docdbThrottledTotal.Inc()

	t.logger.Warn().
		Dur("retry_after", retryAfter).
		Time("throttled_until", state.ThrottledUntil).
		Msg("Request throttled by server")

	if t.redis == nil {
		t.mu.Lock()
		if state.ThrottledUntil.After(t.local.ThrottledUntil) {
			t.local = state
		}
		t.mu.Unlock()
		return nil
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal throttle state: %w", err)
	}

	// The key expires with the window, so an idle account carries no state.
	if err := t.redis.Set(ctx, t.key, data, retryAfter).Err(); err != nil {
		return fmt.Errorf("store throttle state in redis: %w", err)
	}

	return nil
}

// Wait blocks until the throttle window closes or ctx is done.
func (t *Tracker) Wait(ctx context.Context) error {
	state, err := t.GetState(ctx)
	if err != nil {
		return fmt.Errorf("get throttle state: %w", err)
	}

	wait := state.TimeUntilReady()
	if wait == 0 {
		return nil
	}

	t.logger.Debug().
		Dur("wait_duration", wait).
		Msg("Waiting for throttle window to close")

	start := time.Now()
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		docdbThrottleWaitSeconds.Observe(time.Since(start).Seconds())
		return nil
	}
}
