package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/sweeper"
	"github.com/rs/zerolog/log"
)

type SweepState int32

const (
	StateIdle SweepState = iota
	StateSweeping
)

func (s SweepState) String() string {
	if s == StateSweeping {
		return "sweeping"
	}
	return "idle"
}

type Sweeper interface {
	Sweep(ctx context.Context) sweeper.SweepReport
}

// Lease guards a sweep across instances. Failing to acquire it drops the
// tick like an overlapping one.
type Lease interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// SweepScheduler runs at most one sweep at a time. Ticks that arrive while
// a sweep is running are dropped, not queued.
type SweepScheduler struct {
	sweeper  Sweeper
	interval time.Duration
	lease    Lease

	// base is canceled by Stop and bounds every sweep.
	base       context.Context
	cancelBase context.CancelFunc

	state atomic.Int32
	wg    sync.WaitGroup

	mu      sync.RWMutex
	last    *sweeper.SweepReport
	lastErr string
	dropped int64
	stopped bool
	cron    *gocron.Scheduler
}

func NewSweepScheduler(sw Sweeper, interval time.Duration, lease Lease) *SweepScheduler {
	base, cancel := context.WithCancel(context.Background())
	return &SweepScheduler{
		sweeper:    sw,
		interval:   interval,
		lease:      lease,
		base:       base,
		cancelBase: cancel,
	}
}

func (s *SweepScheduler) State() SweepState {
	return SweepState(s.state.Load())
}

// Trigger runs a sweep in the calling goroutine. It reports false when the
// sweep was skipped because another one holds the state or the lease.
func (s *SweepScheduler) Trigger(ctx context.Context) bool {
	run, ok := s.begin(ctx)
	if !ok {
		return false
	}
	return run()
}

// TriggerAsync claims the Sweeping state and the lease, then runs the sweep
// in the background. It reports whether a sweep was started.
func (s *SweepScheduler) TriggerAsync(ctx context.Context) bool {
	run, ok := s.begin(ctx)
	if !ok {
		return false
	}
	go run()
	return true
}

// begin moves Idle to Sweeping and takes the lease. On success the returned
// func performs the sweep and always leaves the state Idle.
func (s *SweepScheduler) begin(ctx context.Context) (func() bool, bool) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		log.Debug().Msg("sweep scheduler stopped, tick dropped")
		return nil, false
	}
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateSweeping)) {
		s.dropped++
		s.mu.Unlock()
		log.Debug().Msg("sweep already running, tick dropped")
		return nil, false
	}
	s.wg.Add(1)
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	stopOnBase := context.AfterFunc(s.base, cancel)
	finish := func() {
		stopOnBase()
		cancel()
		s.state.Store(int32(StateIdle))
		s.wg.Done()
	}

	if !s.acquireLease(ctx) {
		finish()
		return nil, false
	}

	return func() (ran bool) {
		defer finish()
		if s.lease != nil {
			defer func() {
				if err := s.lease.Release(context.WithoutCancel(ctx)); err != nil {
					log.Warn().Err(err).Msg("failed to release sweep lease")
				}
			}()
		}
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("sweep panicked")
				s.recordErr(fmt.Sprintf("panic: %v", r))
				ran = false
			}
		}()

		report := s.sweeper.Sweep(ctx)

		s.mu.Lock()
		s.last = &report
		s.lastErr = ""
		s.mu.Unlock()
		return true
	}, true
}

func (s *SweepScheduler) acquireLease(ctx context.Context) (ok bool) {
	if s.lease == nil {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("sweep lease panicked")
			s.recordErr(fmt.Sprintf("panic: %v", r))
			ok = false
		}
	}()

	acquired, err := s.lease.Acquire(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to acquire sweep lease")
		s.recordErr(err.Error())
		return false
	}
	if !acquired {
		log.Debug().Msg("sweep lease held elsewhere, tick dropped")
		return false
	}
	return true
}

func (s *SweepScheduler) recordErr(msg string) {
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
}

type SchedulerStats struct {
	State      string               `json:"state"`
	Interval   string               `json:"interval"`
	Dropped    int64                `json:"droppedTicks"`
	LastError  string               `json:"lastError,omitempty"`
	LastReport *sweeper.SweepReport `json:"lastReport,omitempty"`
}

func (s *SweepScheduler) Stats() SchedulerStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := SchedulerStats{
		State:     s.State().String(),
		Interval:  s.interval.String(),
		Dropped:   s.dropped,
		LastError: s.lastErr,
	}
	if s.last != nil {
		report := *s.last
		stats.LastReport = &report
	}
	return stats
}

// Start fires a sweep immediately and then every interval until Stop.
func (s *SweepScheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return errors.New("sweep interval must be positive")
	}

	cron := gocron.NewScheduler(time.UTC)
	if _, err := cron.Every(s.interval).StartImmediately().Do(func() {
		s.Trigger(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	s.mu.Lock()
	s.cron = cron
	s.mu.Unlock()

	cron.StartAsync()
	log.Info().Dur("interval", s.interval).Msg("sweep scheduler started")
	return nil
}

// Stop halts the timer, cancels a running sweep and waits for it to return.
// Triggers after Stop are dropped.
func (s *SweepScheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	cron := s.cron
	s.cron = nil
	s.mu.Unlock()

	s.cancelBase()
	if cron != nil {
		cron.Stop()
	}
	s.wg.Wait()
	log.Info().Msg("sweep scheduler stopped")
}
