package reconcile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/saas-gatekeeper/internal/models"
)

// flippingSource отдаёт план free первые flipAfter загрузок, затем pro.
// flipAfter < 0 означает «никогда не переключается».
type flippingSource struct {
	mu        sync.Mutex
	fetches   int
	flipAfter int
	err       error
}

func (f *flippingSource) Get(_ context.Context, userUID string) (*models.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	if f.flipAfter >= 0 && f.fetches > f.flipAfter {
		return &models.Subscription{UserUID: userUID, PlanID: "pro", Interval: "month"}, nil
	}
	return models.FreeSubscription(userUID), nil
}

func (f *flippingSource) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		planID   string
		attempts int
		want     Status
	}{
		{name: "free below budget is pending", planID: "free", attempts: 1, want: StatusPending},
		{name: "free at budget is exhausted", planID: "free", attempts: 3, want: StatusExhausted},
		{name: "paid plan succeeds regardless of attempts", planID: "pro", attempts: 3, want: StatusSucceeded},
		{name: "paid plan succeeds on first attempt", planID: "pro", attempts: 1, want: StatusSucceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.planID, tt.attempts, DefaultMaxAttempts))
		})
	}
}

func TestRun_FlipsAfterSecondTick(t *testing.T) {
	src := &flippingSource{flipAfter: 2}
	poller := New(src, newNoopLogger(), 5*time.Millisecond, 3)

	var observed []Status
	status, err := poller.Run(context.Background(), "uid-1", func(s Status) {
		observed = append(observed, s)
	})

	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, status)
	assert.Equal(t, []Status{StatusPending, StatusPending, StatusSucceeded}, observed)
	assert.Equal(t, 3, src.fetchCount())

	// Ни одного тика после терминального состояния.
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 3, src.fetchCount())
}

func TestRun_NeverFlipsExhaustsBudget(t *testing.T) {
	src := &flippingSource{flipAfter: -1}
	poller := New(src, newNoopLogger(), 5*time.Millisecond, 3)

	var observed []Status
	status, err := poller.Run(context.Background(), "uid-1", func(s Status) {
		observed = append(observed, s)
	})

	require.NoError(t, err)
	assert.Equal(t, StatusExhausted, status)
	assert.Equal(t, []Status{StatusPending, StatusPending, StatusExhausted}, observed)
	assert.Equal(t, 3, src.fetchCount())

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 3, src.fetchCount(), "no tick may fire after exhaustion")
}

func TestRun_SucceedsOnFirstTick(t *testing.T) {
	src := &flippingSource{flipAfter: 0}
	poller := New(src, newNoopLogger(), 5*time.Millisecond, 3)

	var observed []Status
	status, err := poller.Run(context.Background(), "uid-1", func(s Status) {
		observed = append(observed, s)
	})

	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, status)
	assert.Equal(t, []Status{StatusSucceeded}, observed)
	assert.Equal(t, 1, src.fetchCount())
}

func TestRun_FetchErrorSpendsAttempt(t *testing.T) {
	src := &flippingSource{flipAfter: -1, err: errors.New("db error")}
	poller := New(src, newNoopLogger(), 5*time.Millisecond, 3)

	status, err := poller.Run(context.Background(), "uid-1", nil)

	require.NoError(t, err)
	assert.Equal(t, StatusExhausted, status)
	assert.Equal(t, 3, src.fetchCount())
}

func TestRun_ContextCancellationStopsLoop(t *testing.T) {
	src := &flippingSource{flipAfter: -1}
	poller := New(src, newNoopLogger(), 50*time.Millisecond, 3)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(70 * time.Millisecond)
		cancel()
	}()

	status, err := poller.Run(ctx, "uid-1", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusPending, status)

	fetched := src.fetchCount()
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, fetched, src.fetchCount(), "no tick may fire after cancellation")
}

func TestNew_Defaults(t *testing.T) {
	poller := New(&flippingSource{}, newNoopLogger(), 0, 0)

	assert.Equal(t, DefaultInterval, poller.interval)
	assert.Equal(t, DefaultMaxAttempts, poller.maxAttempts)
}
