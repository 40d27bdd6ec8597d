package service

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultIncomeDebounce is the quiet window before a payroll result is
// written into the viewed period's income
const DefaultIncomeDebounce = 500 * time.Millisecond

// IncomeApplier receives a debounced take-home figure for a period
type IncomeApplier func(period string, income int64)

// IncomeFeed coalesces rapid payroll recomputations into one income write.
// At most one task is pending at a time; scheduling again replaces it and
// restarts the window.
type IncomeFeed struct {
	delay  time.Duration
	apply  IncomeApplier
	logger zerolog.Logger

	mu      sync.Mutex
	pending *pendingIncome
	seq     uint64
	stopped bool
}

type pendingIncome struct {
	seq    uint64
	period string
	income int64
	timer  *time.Timer
}

// NewIncomeFeed creates a feed that calls apply once the window elapses
func NewIncomeFeed(delay time.Duration, apply IncomeApplier, logger zerolog.Logger) *IncomeFeed {
	if delay <= 0 {
		delay = DefaultIncomeDebounce
	}
	return &IncomeFeed{
		delay:  delay,
		apply:  apply,
		logger: logger.With().Str("component", "income_feed").Logger(),
	}
}

// Schedule queues income for period, superseding any pending task
func (f *IncomeFeed) Schedule(period string, income int64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stopped {
		return
	}
	f.stopPendingLocked()

	f.seq++
	task := &pendingIncome{seq: f.seq, period: period, income: income}
	task.timer = time.AfterFunc(f.delay, func() { f.fire(task.seq) })
	f.pending = task

	f.logger.Debug().
		Str("period", period).
		Int64("income", income).
		Dur("delay", f.delay).
		Msg("Income update scheduled")
}

// Cancel drops the pending task if it belongs to period
func (f *IncomeFeed) Cancel(period string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pending == nil || f.pending.period != period {
		return false
	}
	f.stopPendingLocked()
	f.logger.Debug().Str("period", period).Msg("Pending income update cancelled")
	return true
}

// Pending reports the queued period and income, if any
func (f *IncomeFeed) Pending() (string, int64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pending == nil {
		return "", 0, false
	}
	return f.pending.period, f.pending.income, true
}

// Stop cancels the pending task and rejects further scheduling
func (f *IncomeFeed) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stopped = true
	f.stopPendingLocked()
}

func (f *IncomeFeed) stopPendingLocked() {
	if f.pending != nil {
		f.pending.timer.Stop()
		f.pending = nil
	}
}

// fire runs on the timer goroutine. A task that was replaced or cancelled
// after its timer started is ignored.
func (f *IncomeFeed) fire(seq uint64) {
	f.mu.Lock()
	task := f.pending
	if task == nil || task.seq != seq || f.stopped {
		f.mu.Unlock()
		return
	}
	f.pending = nil
	f.mu.Unlock()

	f.apply(task.period, task.income)
}
