package usecases_test

import (
	"sync"
	"testing"
	"time"

	"github.com/samirrijal/panoplace/internal/core/domain"
	"github.com/samirrijal/panoplace/internal/core/usecases"
)

func TestHealthTracker_StartsDisconnected(t *testing.T) {
	h := usecases.NewHealthTracker(usecases.HealthConfig{}, nil)
	defer h.Stop()

	if got := h.Status(); got != domain.StatusDisconnected {
		t.Errorf("initial status = %q", got)
	}
}

func TestHealthTracker_DegradedAfterThreeFailures(t *testing.T) {
	h := usecases.NewHealthTracker(usecases.HealthConfig{}, nil)
	defer h.Stop()

	h.RecordFailure()
	h.RecordFailure()
	if got := h.Status(); got == domain.StatusError {
		t.Fatal("status must not be error before the threshold")
	}

	h.RecordFailure()
	if got := h.Status(); got != domain.StatusError {
		t.Errorf("status = %q after 3 consecutive failures, want error", got)
	}

	// One success resets the cycle.
	h.RecordSuccess()
	if got := h.Status(); got != domain.StatusConnected {
		t.Errorf("status = %q after success, want connected", got)
	}
	if h.Failures() != 0 {
		t.Errorf("failures = %d after success, want 0", h.Failures())
	}
}

func TestHealthTracker_FailureWindowDecay(t *testing.T) {
	h := usecases.NewHealthTracker(usecases.HealthConfig{
		FailureReset: 30 * time.Millisecond,
	}, nil)
	defer h.Stop()

	h.RecordFailure()
	h.RecordFailure()

	// Let the rolling window elapse: the counter is zeroed, so the next
	// failure starts a fresh run and must not reach the threshold.
	time.Sleep(60 * time.Millisecond)
	h.RecordFailure()

	if got := h.Status(); got == domain.StatusError {
		t.Error("sparse failures must not accumulate into the error state")
	}
	if h.Failures() != 1 {
		t.Errorf("failures = %d, want 1", h.Failures())
	}
}

func TestHealthTracker_ConnectedDecaysToDisconnected(t *testing.T) {
	h := usecases.NewHealthTracker(usecases.HealthConfig{
		DecayAfter: 20 * time.Millisecond,
	}, nil)
	defer h.Stop()

	h.RecordSuccess()
	if got := h.Status(); got != domain.StatusConnected {
		t.Fatalf("status = %q, want connected", got)
	}

	time.Sleep(60 * time.Millisecond)
	if got := h.Status(); got != domain.StatusDisconnected {
		t.Errorf("status = %q after decay window, want disconnected", got)
	}
}

func TestHealthTracker_SuccessRefreshesDecay(t *testing.T) {
	h := usecases.NewHealthTracker(usecases.HealthConfig{
		DecayAfter: 50 * time.Millisecond,
	}, nil)
	defer h.Stop()

	h.RecordSuccess()
	time.Sleep(30 * time.Millisecond)
	h.RecordSuccess() // refresh
	time.Sleep(30 * time.Millisecond)

	if got := h.Status(); got != domain.StatusConnected {
		t.Errorf("status = %q, decay timer should have been refreshed", got)
	}
}

func TestHealthTracker_DegradedDoesNotDecay(t *testing.T) {
	h := usecases.NewHealthTracker(usecases.HealthConfig{
		DecayAfter: 20 * time.Millisecond,
	}, nil)
	defer h.Stop()

	h.RecordSuccess()
	h.RecordFailure()
	h.RecordFailure()
	h.RecordFailure()
	if got := h.Status(); got != domain.StatusError {
		t.Fatalf("status = %q, want error", got)
	}

	// The decay timer from the earlier success must not pull the tracker
	// out of the error state; only a success exits it.
	time.Sleep(60 * time.Millisecond)
	if got := h.Status(); got != domain.StatusError {
		t.Errorf("status = %q, error state must persist until a success", got)
	}
}

func TestHealthTracker_OnChangeCallback(t *testing.T) {
	var mu sync.Mutex
	var seen []domain.Status
	h := usecases.NewHealthTracker(usecases.HealthConfig{}, func(s domain.Status) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})
	defer h.Stop()

	h.RecordSuccess()
	h.RecordFailure()
	h.RecordFailure()
	h.RecordFailure()

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 {
		t.Fatalf("callbacks = %v, want [connected error]", seen)
	}
	if seen[0] != domain.StatusConnected || seen[1] != domain.StatusError {
		t.Errorf("callbacks = %v", seen)
	}
}
