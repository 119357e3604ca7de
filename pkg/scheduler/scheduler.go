package scheduler

import (
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/ecsframe/pkg/ecs"
	"github.com/opd-ai/ecsframe/pkg/ecslog"
)

var labelCounter atomic.Uint64

func autoLabel() string {
	return fmt.Sprintf("set-%d", labelCounter.Add(1))
}

// Scheduler is a labelled collection of ecs.SystemLike members bound to
// one world. It lazily recompiles its run order the next time Tick runs
// after membership changes, rather than on every Add.
type Scheduler struct {
	set    *SystemSet
	world  *ecs.World
	handle ecs.Handle
	dirty  bool
	logger *logrus.Logger
}

// SchedulerOption configures a Scheduler at construction time.
type SchedulerOption func(*Scheduler)

// WithLogger attaches a logrus logger; debug-level logging covers member
// additions and compilation. Individual ticks are not logged.
func WithLogger(l *logrus.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = l }
}

// WithLabel sets the scheduler's own label, used if this scheduler is
// ever consulted for diagnostics alongside its members.
func WithLabel(label string) SchedulerOption {
	return func(s *Scheduler) { s.set.label = label }
}

// NewScheduler creates an empty, unbound scheduler.
func NewScheduler(opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{set: NewSystemSet(nil), dirty: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) debugf(format string, args ...any) {
	if s.logger != nil {
		ecslog.SchedulerLogger(s.logger, s.set.Label()).Debugf(format, args...)
	}
}

// Label returns the scheduler's own label.
func (s *Scheduler) Label() string { return s.set.Label() }

// Add appends members, marking the run order stale.
func (s *Scheduler) Add(members ...ecs.SystemLike) *Scheduler {
	s.set.Add(members...)
	s.dirty = true
	s.debugf("scheduler %s: %d member(s) added, marked dirty", s.set.Label(), len(members))
	return s
}

// Members returns the scheduler's direct, uncompiled members.
func (s *Scheduler) Members() []ecs.SystemLike { return s.set.Members() }

func (s *Scheduler) recompile(w *ecs.World) error {
	h, err := s.set.MakeHandle(w)
	if err != nil {
		return err
	}
	s.handle = h
	s.world = w
	s.dirty = false
	s.debugf("scheduler %s: compiled %d member(s)", s.set.Label(), len(s.set.Members()))
	return nil
}

// Tick runs every compiled member once against w, recompiling first if
// membership changed (via Add) or w differs from the last bound world.
func (s *Scheduler) Tick(w *ecs.World) error {
	if s.dirty || s.world != w {
		if err := s.recompile(w); err != nil {
			return err
		}
	}
	return s.handle.Invoke()
}

// Reset resets every compiled member's tracking without invoking it.
func (s *Scheduler) Reset() {
	if s.handle != nil {
		s.handle.Reset()
	}
}
