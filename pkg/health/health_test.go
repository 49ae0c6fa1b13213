package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadyEndpoint_NotReadyByDefault(t *testing.T) {
	h := New()

	rec := httptest.NewRecorder()
	h.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not ready")
}

func TestReadyEndpoint_AfterSetReady(t *testing.T) {
	h := New()
	h.SetReady(true)

	rec := httptest.NewRecorder()
	h.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSetReady_DrainsOnShutdown(t *testing.T) {
	h := New()
	h.SetReady(true)
	require.True(t, h.IsReady())

	h.SetReady(false)
	assert.False(t, h.IsReady())
}

func TestLiveEndpoint_HealthyByDefault(t *testing.T) {
	h := New()
	h.AddLivenessCheck("noop", time.Second, func(context.Context) error { return nil })

	rec := httptest.NewRecorder()
	h.LiveEndpoint(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCheck_FlipsAfterConsecutiveFailures(t *testing.T) {
	c := newCheck("db", time.Second, func(context.Context) error {
		return errors.New("connection refused")
	})

	// Two failures are tolerated, the third flips the check.
	c.run(context.Background())
	assert.True(t, c.healthy.Load())
	c.run(context.Background())
	assert.True(t, c.healthy.Load())
	c.run(context.Background())
	assert.False(t, c.healthy.Load())
}

func TestCheck_RecoversAfterOneSuccess(t *testing.T) {
	fail := true
	c := newCheck("db", time.Second, func(context.Context) error {
		if fail {
			return errors.New("connection refused")
		}
		return nil
	})

	for i := 0; i < failureThreshold; i++ {
		c.run(context.Background())
	}
	require.False(t, c.healthy.Load())

	fail = false
	c.run(context.Background())
	assert.True(t, c.healthy.Load())
}

func TestIsReady_FailedCheckBlocksReadiness(t *testing.T) {
	h := New()
	h.SetReady(true)
	h.AddReadinessCheck("db", time.Second, func(context.Context) error {
		return errors.New("connection refused")
	})

	require.True(t, h.IsReady())

	h.mu.RLock()
	c := h.readiness[0]
	h.mu.RUnlock()
	for i := 0; i < failureThreshold; i++ {
		c.run(context.Background())
	}

	assert.False(t, h.IsReady())

	rec := httptest.NewRecorder()
	h.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestStartStop(t *testing.T) {
	h := New()
	probed := make(chan struct{}, 1)
	h.AddReadinessCheck("probe", time.Second, func(context.Context) error {
		select {
		case probed <- struct{}{}:
		default:
		}
		return nil
	})

	h.Start(context.Background(), 10*time.Millisecond)
	defer h.Stop()

	select {
	case <-probed:
	case <-time.After(time.Second):
		t.Fatal("check was never run")
	}

	h.Stop()
	h.Stop() // idempotent
}

func TestGoroutineCountCheck(t *testing.T) {
	require.NoError(t, GoroutineCountCheck(10_000)(context.Background()))
	require.Error(t, GoroutineCountCheck(0)(context.Background()))
}
