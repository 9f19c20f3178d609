package usecases

import (
	"sync"
	"time"

	"github.com/samirrijal/panoplace/internal/core/domain"
	"github.com/samirrijal/panoplace/internal/pkg/metrics"
)

// Health tracking defaults. Timer durations are injectable so tests can
// run the windows at millisecond scale.
const (
	DefaultDecayAfter       = 8 * time.Second
	DefaultFailureReset     = 30 * time.Second
	DefaultFailureThreshold = 3
)

// HealthConfig tunes the tracker. Zero values fall back to the defaults.
type HealthConfig struct {
	DecayAfter       time.Duration // success staleness before connected -> disconnected
	FailureReset     time.Duration // rolling window zeroing the failure counter
	FailureThreshold int           // consecutive failures before degraded
}

// HealthTracker is a three-state machine over resolution outcomes.
//
//	connected     entered on any success; decays to disconnected when no
//	              further success arrives within DecayAfter
//	disconnected  idle default
//	error         (degraded) entered at FailureThreshold consecutive
//	              failures; exits only on the next success
//
// Sparse failures do not accumulate: each failure restarts a reset timer
// that zeroes the counter after FailureReset of quiet.
type HealthTracker struct {
	mu       sync.Mutex
	status   domain.Status
	failures int

	decayAfter   time.Duration
	failureReset time.Duration
	threshold    int

	decayTimer *time.Timer
	resetTimer *time.Timer

	onChange func(domain.Status)
}

// NewHealthTracker creates a tracker in the disconnected state.
// onChange, if non-nil, is invoked (without the lock held) whenever the
// externally visible status changes, including timer-driven transitions.
func NewHealthTracker(cfg HealthConfig, onChange func(domain.Status)) *HealthTracker {
	if cfg.DecayAfter <= 0 {
		cfg.DecayAfter = DefaultDecayAfter
	}
	if cfg.FailureReset <= 0 {
		cfg.FailureReset = DefaultFailureReset
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = DefaultFailureThreshold
	}
	return &HealthTracker{
		status:       domain.StatusDisconnected,
		decayAfter:   cfg.DecayAfter,
		failureReset: cfg.FailureReset,
		threshold:    cfg.FailureThreshold,
		onChange:     onChange,
	}
}

// RecordSuccess zeroes the failure counter, cancels the reset window,
// enters connected, and refreshes the decay timer.
func (h *HealthTracker) RecordSuccess() {
	h.mu.Lock()
	h.failures = 0
	if h.resetTimer != nil {
		h.resetTimer.Stop()
		h.resetTimer = nil
	}
	changed := h.status != domain.StatusConnected
	h.status = domain.StatusConnected

	if h.decayTimer != nil {
		h.decayTimer.Stop()
	}
	h.decayTimer = time.AfterFunc(h.decayAfter, h.decay)
	h.mu.Unlock()

	h.publish(changed, domain.StatusConnected)
}

// RecordFailure increments the counter, restarts the reset window, and
// enters the error state once the threshold is reached.
func (h *HealthTracker) RecordFailure() {
	h.mu.Lock()
	h.failures++
	if h.resetTimer != nil {
		h.resetTimer.Stop()
	}
	h.resetTimer = time.AfterFunc(h.failureReset, h.resetFailures)

	changed := false
	if h.failures >= h.threshold && h.status != domain.StatusError {
		h.status = domain.StatusError
		changed = true
	}
	status := h.status
	h.mu.Unlock()

	h.publish(changed, status)
}

// Status returns the externally visible status.
func (h *HealthTracker) Status() domain.Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Failures returns the current consecutive failure count.
func (h *HealthTracker) Failures() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.failures
}

// Stop cancels pending timers. The tracker must not be used afterwards.
func (h *HealthTracker) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.decayTimer != nil {
		h.decayTimer.Stop()
	}
	if h.resetTimer != nil {
		h.resetTimer.Stop()
	}
}

// decay fires when no success arrived within the decay window. Only the
// connected state decays; degraded is held until a success.
func (h *HealthTracker) decay() {
	h.mu.Lock()
	changed := h.status == domain.StatusConnected
	if changed {
		h.status = domain.StatusDisconnected
	}
	status := h.status
	h.mu.Unlock()

	h.publish(changed, status)
}

// resetFailures fires when no further failure arrived within the rolling
// window. The counter is zeroed without a state change.
func (h *HealthTracker) resetFailures() {
	h.mu.Lock()
	h.failures = 0
	h.mu.Unlock()
	metrics.ConsecutiveFailures.Set(0)
}

func (h *HealthTracker) publish(changed bool, status domain.Status) {
	metrics.ConsecutiveFailures.Set(float64(h.Failures()))
	switch status {
	case domain.StatusConnected:
		metrics.HealthState.Set(1)
	case domain.StatusError:
		metrics.HealthState.Set(2)
	default:
		metrics.HealthState.Set(0)
	}
	if changed && h.onChange != nil {
		h.onChange(status)
	}
}
