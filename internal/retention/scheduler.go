// Package retention purges artifacts older than the retention policy allows.
package retention

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/domain"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/observability"
)

// LockFileName is the advisory lock taken under the storage root for the
// duration of a sweep.
const LockFileName = ".sweep.lock"

// State of the scheduler.
type State int32

const (
	StateIdle State = iota
	StateSweeping
)

func (s State) String() string {
	if s == StateSweeping {
		return "sweeping"
	}
	return "idle"
}

// SweepReport summarizes one sweep.
type SweepReport struct {
	Started time.Time
	Scanned int
	Deleted int
	Failed  int
	// Skipped is set when another process held the sweep lock.
	Skipped bool
}

// Scheduler deletes expired artifacts on a fixed interval.
type Scheduler struct {
	root   string
	policy domain.RetentionPolicy
	logger *observability.Logger
	now    func() time.Time
	remove func(string) error
	state  atomic.Int32
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithRemove replaces os.Remove for deleting expired artifacts.
func WithRemove(remove func(path string) error) Option {
	return func(s *Scheduler) {
		s.remove = remove
	}
}

// NewScheduler creates a scheduler over the category directories of policy under root.
func NewScheduler(root string, policy domain.RetentionPolicy, logger *observability.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = observability.Nop()
	}
	s := &Scheduler{
		root:   root,
		policy: policy,
		logger: logger.WithComponent("retention"),
		now:    time.Now,
		remove: os.Remove,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns whether a sweep is in progress.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Run sweeps immediately and then once per interval until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info().
		Dur("max_age", s.policy.MaxAge).
		Dur("interval", s.policy.SweepInterval).
		Msg("Retention scheduler started")

	s.sweepAndLog(ctx)

	ticker := time.NewTicker(s.policy.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Stopping retention scheduler")
			return
		case <-ticker.C:
			s.sweepAndLog(ctx)
		}
	}
}

func (s *Scheduler) sweepAndLog(ctx context.Context) {
	report, err := s.Sweep(ctx)
	if errors.Is(err, context.Canceled) {
		s.logger.Info().Msg("Retention sweep interrupted by shutdown")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Retention sweep failed")
		return
	}
	if report.Skipped {
		s.logger.Info().Msg("Retention sweep skipped, lock held elsewhere")
		return
	}
	s.logger.Info().
		Int("scanned", report.Scanned).
		Int("deleted", report.Deleted).
		Int("failed", report.Failed).
		Msg("Retention sweep finished")
}

// Sweep deletes every regular file in the category directories whose
// modification time is more than MaxAge before now. Deletion failures are
// logged and counted; the sweep continues.
func (s *Scheduler) Sweep(ctx context.Context) (SweepReport, error) {
	report := SweepReport{Started: s.now()}

	lock := flock.New(filepath.Join(s.root, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return report, domain.CleanupError("Failed to acquire sweep lock", err)
	}
	if !locked {
		report.Skipped = true
		return report, nil
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to release sweep lock")
		}
	}()

	s.state.Store(int32(StateSweeping))
	defer s.state.Store(int32(StateIdle))

	cutoff := report.Started.Add(-s.policy.MaxAge)

	for _, c := range s.policy.Categories {
		dir := filepath.Join(s.root, c.Dir)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				s.logger.Warn().Err(err).Str("dir", dir).Msg("Failed to list directory")
			}
			continue
		}

		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			if !e.Type().IsRegular() {
				continue
			}
			info, err := e.Info()
			if err != nil {
				// removed between listing and stat
				continue
			}
			report.Scanned++

			if !info.ModTime().Before(cutoff) {
				continue
			}

			path := filepath.Join(dir, e.Name())
			if err := s.remove(path); err != nil {
				report.Failed++
				s.logger.Error().
					Err(domain.CleanupError("Failed to delete expired artifact", err)).
					Str("path", path).
					Msg("Cleanup failed")
				continue
			}
			report.Deleted++
			s.logger.Debug().Str("path", path).Msg("Deleted expired artifact")
		}
	}

	return report, nil
}
