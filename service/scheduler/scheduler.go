/*
Package scheduler triggers a crawl of the configured seed URLs once per
interval in the background.

Ticks are aligned on start + k*interval. Cycles never overlap: a tick that
fires while the previous cycle is still running is dropped and counted as
skipped. A cycle runs on a context detached from the one that stops the
scheduler, so stopping waits for it instead of cancelling it mid-flight.
*/
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mycok/webscout/crawler"
)

var (
	// ErrCycleAbandoned is returned by Stop when the in-flight cycle did not
	// complete within the shutdown timeout.
	ErrCycleAbandoned = errors.New("crawl cycle abandoned at shutdown")

	// ErrAlreadyRunning is returned by Start when the loop is already active.
	ErrAlreadyRunning = errors.New("scheduler already running")

	// ErrCycleInProgress is returned by RunCycle while another cycle runs.
	ErrCycleInProgress = errors.New("crawl cycle already in progress")
)

// Stats summarizes the scheduler activity since it was created.
type Stats struct {
	Running       bool            `json:"running"`
	Interval      time.Duration   `json:"interval"`
	SeedCount     int             `json:"seed_count"`
	CyclesRun     uint64          `json:"cycles_run"`
	CyclesSkipped uint64          `json:"cycles_skipped"`
	CycleActive   bool            `json:"cycle_active"`
	LastReport    *crawler.Report `json:"last_report,omitempty"`
}

// Scheduler owns the seed list and periodically runs the crawler over it.
type Scheduler struct {
	cfg Config

	mu         sync.Mutex
	seeds      []string
	interval   time.Duration
	stopCh     chan struct{}
	loopDone   chan struct{}
	lastReport *crawler.Report

	cycleActive   atomic.Bool
	cycleWG       sync.WaitGroup
	cyclesRun     atomic.Uint64
	cyclesSkipped atomic.Uint64
}

// New creates and returns a fully configured scheduler. The loop does not
// start until Start or Run is called.
func New(config Config) (*Scheduler, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("scheduler: config validation failed: %w", err)
	}

	return &Scheduler{
		cfg:      config,
		seeds:    append([]string(nil), config.Seeds...),
		interval: config.Interval,
	}, nil
}

// Name returns the name of the service.
func (s *Scheduler) Name() string { return "crawl-scheduler" }

// Run starts the loop with the configured interval and seeds, blocks until
// ctx is cancelled and then stops the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	interval, seeds := s.interval, s.seeds
	s.mu.Unlock()

	if err := s.Start(interval, seeds); err != nil {
		return err
	}

	<-ctx.Done()

	return s.Stop()
}

// Start begins a background loop that crawls seeds once per interval. The
// first cycle runs one interval after Start returns.
func (s *Scheduler) Start(interval time.Duration, seeds []string) error {
	if interval <= 0 {
		return fmt.Errorf("scheduler: invalid interval %s", interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopCh != nil {
		return ErrAlreadyRunning
	}

	s.interval = interval
	s.seeds = append([]string(nil), seeds...)
	s.stopCh = make(chan struct{})
	s.loopDone = make(chan struct{})

	s.cfg.Logger.WithFields(logrus.Fields{
		"interval":   interval.String(),
		"seed_count": len(seeds),
	}).Info("starting crawl scheduler")

	go s.loop(s.cfg.Clock.Now(), interval, s.stopCh, s.loopDone)

	return nil
}

// Stop terminates the loop and waits for the in-flight cycle, if any. When
// the cycle outlives the shutdown timeout it is abandoned and Stop returns
// ErrCycleAbandoned. Calling Stop on a stopped scheduler is a no-op.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	stopCh, loopDone := s.stopCh, s.loopDone
	s.stopCh, s.loopDone = nil, nil
	s.mu.Unlock()

	if stopCh == nil {
		return nil
	}

	close(stopCh)
	<-loopDone

	cycleDone := make(chan struct{})
	go func() {
		s.cycleWG.Wait()
		close(cycleDone)
	}()

	select {
	case <-cycleDone:
		s.cfg.Logger.Info("stopped crawl scheduler")

		return nil
	case <-s.cfg.Clock.After(s.cfg.ShutdownTimeout):
		s.cfg.Logger.WithField(
			"shutdown_timeout", s.cfg.ShutdownTimeout.String(),
		).Warn("abandoning in-flight crawl cycle")

		return ErrCycleAbandoned
	}
}

// SetSeeds replaces the seed list. The change applies from the next cycle.
func (s *Scheduler) SetSeeds(seeds []string) {
	s.mu.Lock()
	s.seeds = append([]string(nil), seeds...)
	s.mu.Unlock()
}

// Seeds returns a copy of the current seed list.
func (s *Scheduler) Seeds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.seeds...)
}

// RunCycle runs a single crawl cycle synchronously on ctx. It fails with
// ErrCycleInProgress instead of overlapping a running cycle.
func (s *Scheduler) RunCycle(ctx context.Context) (crawler.Report, error) {
	if !s.cycleActive.CompareAndSwap(false, true) {
		return crawler.Report{}, ErrCycleInProgress
	}
	defer s.cycleActive.Store(false)

	return s.runCycle(ctx)
}

// Stats returns a snapshot of the scheduler activity.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		Running:       s.stopCh != nil,
		Interval:      s.interval,
		SeedCount:     len(s.seeds),
		CyclesRun:     s.cyclesRun.Load(),
		CyclesSkipped: s.cyclesSkipped.Load(),
		CycleActive:   s.cycleActive.Load(),
	}
	if s.lastReport != nil {
		rep := *s.lastReport
		st.LastReport = &rep
	}

	return st
}

func (s *Scheduler) loop(start time.Time, interval time.Duration, stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for k := int64(1); ; k++ {
		now := s.cfg.Clock.Now()
		wait := start.Add(time.Duration(k) * interval).Sub(now)
		if wait < 0 {
			// The clock jumped past one or more ticks; realign on the next one.
			k = int64(now.Sub(start)/interval) + 1
			wait = start.Add(time.Duration(k) * interval).Sub(now)
		}

		select {
		case <-stopCh:
			return
		case <-s.cfg.Clock.After(wait):
			s.tick()
		}
	}
}

func (s *Scheduler) tick() {
	if !s.cycleActive.CompareAndSwap(false, true) {
		s.cyclesSkipped.Add(1)
		s.cfg.Logger.Warn("previous crawl cycle still running; skipping tick")

		return
	}

	s.cycleWG.Add(1)
	go func() {
		defer s.cycleWG.Done()
		defer s.cycleActive.Store(false)

		_, _ = s.runCycle(context.Background())
	}()
}

func (s *Scheduler) runCycle(ctx context.Context) (crawler.Report, error) {
	seeds := s.Seeds()
	if len(seeds) == 0 {
		s.cfg.Logger.Warn("no seed urls configured; crawl cycle is a no-op")
	}

	s.cfg.Logger.WithField("seed_count", len(seeds)).Info("starting crawl cycle")
	startedAt := s.cfg.Clock.Now()

	rep, err := s.cfg.Crawler.Crawl(ctx, seeds)
	s.cyclesRun.Add(1)

	s.mu.Lock()
	s.lastReport = &rep
	s.mu.Unlock()

	if err != nil {
		s.cfg.Logger.WithField("err", err).Error("crawl cycle failed")

		return rep, fmt.Errorf("crawl cycle: %w", err)
	}

	s.cfg.Logger.WithFields(logrus.Fields{
		"indexed_count": len(rep.Indexed),
		"skipped_count": len(rep.Skipped),
		"elapsed_time":  s.cfg.Clock.Now().Sub(startedAt).String(),
	}).Info("completed crawl cycle")

	return rep, nil
}
