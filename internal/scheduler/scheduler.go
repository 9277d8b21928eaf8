// Package scheduler drives the warm-up call and the periodic tick that
// dispatches pending sites to the refresh engine.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RefreshEngine is the subset of broker.RefreshEngine the scheduler needs.
// Declared locally so the scheduler can be tested against a lightweight
// stub without importing the broker package's HTTP plumbing.
type RefreshEngine interface {
	PostQuery(ctx context.Context, sites []string) (string, error)
}

// PendingSet is the subset of pending.Set the scheduler drains.
type PendingSet interface {
	Drain() []string
}

// Scheduler warms the cache at startup and periodically drains the
// pending set into refresh batches.
type Scheduler struct {
	engine       RefreshEngine
	pending      PendingSet
	initialSites []string
	period       time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	started  bool
}

// New builds a Scheduler. period is the tick interval (default 15
// minutes per spec); initialSites seed the startup warm-up call.
func New(engine RefreshEngine, pending PendingSet, initialSites []string, period time.Duration) *Scheduler {
	return &Scheduler{
		engine:       engine,
		pending:      pending,
		initialSites: initialSites,
		period:       period,
		stopCh:       make(chan struct{}),
	}
}

// Start performs the one-off warm-up call and then spawns the periodic
// tick loop. Safe to call only once; ctx governs the lifetime of both the
// warm-up and every subsequent tick's post_query call.
func (s *Scheduler) Start(ctx context.Context) {
	if s.started {
		slog.Warn("scheduler already started, ignoring duplicate Start call")
		return
	}
	s.started = true

	if _, err := s.engine.PostQuery(ctx, s.initialSites); err != nil {
		slog.Warn("warm-up post_query failed", "error", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	sites := s.pending.Drain()
	if len(sites) == 0 {
		return
	}
	if _, err := s.engine.PostQuery(ctx, sites); err != nil {
		slog.Warn("tick post_query failed", "error", err)
	}
}

// Stop signals the tick loop to exit and waits for it to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}
