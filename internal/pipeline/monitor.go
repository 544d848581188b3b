package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/teemow/meetsched/internal/logging"
)

// ErrPollInProgress is returned by PollNow when a poll is already
// running. Overlapping polls are a correctness bug, not a performance
// concern: the processed-set claim and the source's read-state are not
// designed for concurrent mutation.
var ErrPollInProgress = errors.New("pipeline: poll already in progress")

// DefaultPollInterval is the default delay between polls.
const DefaultPollInterval = 60 * time.Second

// DefaultTickDeadline bounds one poll. A hung external call is
// abandoned at the deadline so it cannot freeze future ticks; the
// affected messages stay claimed and unread at the source.
const DefaultTickDeadline = 45 * time.Second

// Monitor drives the controller with a periodic timer. A tick that
// fires while the previous poll is still running is skipped, never run
// concurrently.
type Monitor struct {
	controller *Controller
	interval   time.Duration
	deadline   time.Duration
	logger     *slog.Logger

	mu      sync.Mutex
	polling bool
}

// NewMonitor creates a monitor around the controller. Zero interval or
// deadline select the defaults.
func NewMonitor(controller *Controller, interval, deadline time.Duration, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if deadline <= 0 {
		deadline = DefaultTickDeadline
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Monitor{
		controller: controller,
		interval:   interval,
		deadline:   deadline,
		logger:     logger,
	}
}

// Run polls immediately and then on every timer tick until the context
// is cancelled. An in-flight poll is abandoned at its per-tick deadline
// or at the next external-call boundary after cancellation; the window
// between a transmitted reply and its acknowledgement is the one moment
// where cancellation can leave a replied message unacknowledged.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("monitor started",
		slog.Duration("interval", m.interval),
		slog.Duration("deadline", m.deadline),
	)

	m.tick(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopped")
			return ctx.Err()
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

// PollNow runs a single poll on demand, honoring the same
// non-reentrancy guard as the timer.
func (m *Monitor) PollNow(ctx context.Context) (PollResult, error) {
	if !m.tryAcquire() {
		return PollResult{}, ErrPollInProgress
	}
	defer m.release()

	tctx, cancel := context.WithTimeout(ctx, m.deadline)
	defer cancel()

	return m.controller.PollOnce(tctx)
}

func (m *Monitor) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if !m.tryAcquire() {
		m.logger.Warn("previous poll still running, skipping tick")
		return
	}
	defer m.release()

	tctx, cancel := context.WithTimeout(ctx, m.deadline)
	defer cancel()

	if _, err := m.controller.PollOnce(tctx); err != nil {
		m.logger.Error("poll failed", logging.Err(err))
	}
}

func (m *Monitor) tryAcquire() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.polling {
		return false
	}
	m.polling = true
	return true
}

func (m *Monitor) release() {
	m.mu.Lock()
	m.polling = false
	m.mu.Unlock()
}
