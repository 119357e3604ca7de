package scheduler

import (
	"sort"

	"github.com/opd-ai/ecsframe/pkg/ecs"
)

// SystemSet is a named, recursive group of ecs.SystemLike members — leaf
// systems or nested sets — compiled into a dependency-ordered run list. A
// SystemSet is itself an ecs.SystemLike, so sets nest.
type SystemSet struct {
	label      string
	priority   int
	after      []string
	before     []string
	predicates []ecs.Predicate
	members    []ecs.SystemLike
}

// SetOption configures a SystemSet at construction time.
type SetOption func(*SystemSet)

// WithSetLabel overrides the auto-generated label.
func WithSetLabel(label string) SetOption {
	return func(s *SystemSet) { s.label = label }
}

// WithSetPriority sets the set's own tie-breaking priority, consulted
// when this set is itself a member of an enclosing set.
func WithSetPriority(p int) SetOption {
	return func(s *SystemSet) { s.priority = p }
}

// SetAfter declares labels this set must run after.
func SetAfter(labels ...string) SetOption {
	return func(s *SystemSet) { s.after = append(s.after, labels...) }
}

// SetBefore declares labels this set must run before.
func SetBefore(labels ...string) SetOption {
	return func(s *SystemSet) { s.before = append(s.before, labels...) }
}

// SetRunIf adds a predicate gating the whole set.
func SetRunIf(p ecs.Predicate) SetOption {
	return func(s *SystemSet) { s.predicates = append(s.predicates, p) }
}

// NewSystemSet builds a SystemSet from options and members, in the given
// member order (insertion order matters for dependency-level tiebreaks).
func NewSystemSet(members []ecs.SystemLike, opts ...SetOption) *SystemSet {
	s := &SystemSet{members: members}
	for _, opt := range opts {
		opt(s)
	}
	if s.label == "" {
		s.label = autoLabel()
	}
	return s
}

// Add appends members to the set.
func (s *SystemSet) Add(members ...ecs.SystemLike) *SystemSet {
	s.members = append(s.members, members...)
	return s
}

// Members returns the set's direct members in declaration order,
// uncompiled.
func (s *SystemSet) Members() []ecs.SystemLike { return s.members }

func (s *SystemSet) Label() string           { return s.label }
func (s *SystemSet) Priority() int           { return s.priority }
func (s *SystemSet) After() []string         { return s.after }
func (s *SystemSet) Before() []string        { return s.before }
func (s *SystemSet) Predicates() []ecs.Predicate { return s.predicates }

// Clone returns a new SystemSet sharing this one's members but with its
// own copies of the scheduling metadata, per "cloning preserves label,
// after-set, before-set, priority, and conditions".
func (s *SystemSet) Clone() ecs.SystemLike {
	return &SystemSet{
		label:      s.label,
		priority:   s.priority,
		after:      append([]string(nil), s.after...),
		before:     append([]string(nil), s.before...),
		predicates: append([]ecs.Predicate(nil), s.predicates...),
		members:    s.members,
	}
}

// Compile's ErrMissingDependencies message lists every blocked member
// (see BlockedMember in errors.go) with the labels it is still waiting on.

// Compile sorts the set's members into a dependency-respecting run order:
// members declaring after(X) wait until every member labelled X has been
// placed; members declaring before(X) are folded into X's wait set (a
// before label that names no member is ignored). A nil member fails with
// ErrUnsupportedSystemLike.
// Within a ready level, ties break by priority descending, then
// declaration order. An unresolvable wait (a level with pending members
// but nothing ready) fails with ErrMissingDependencies.
func (s *SystemSet) Compile() ([]ecs.SystemLike, error) {
	for _, m := range s.members {
		if m == nil {
			return nil, ErrUnsupportedSystemLike
		}
	}
	n := len(s.members)
	labelIndex := make(map[string]int, n)
	for i, m := range s.members {
		labelIndex[m.Label()] = i
	}

	wait := make([][]string, n)
	for i, m := range s.members {
		wait[i] = append([]string(nil), m.After()...)
	}
	for _, m := range s.members {
		for _, x := range m.Before() {
			if j, ok := labelIndex[x]; ok {
				wait[j] = append(wait[j], m.Label())
			}
		}
	}

	placed := make(map[string]bool, n)
	remaining := make([]int, n)
	for i := range s.members {
		remaining[i] = i
	}

	order := make([]int, 0, n)
	for len(remaining) > 0 {
		var ready []int
		for _, i := range remaining {
			if allPlaced(wait[i], placed) {
				ready = append(ready, i)
			}
		}
		if len(ready) == 0 {
			return nil, missingDependenciesError(blockedFrom(s.members, wait, remaining, placed))
		}

		sort.SliceStable(ready, func(a, b int) bool {
			pa, pb := s.members[ready[a]].Priority(), s.members[ready[b]].Priority()
			if pa != pb {
				return pa > pb
			}
			return ready[a] < ready[b]
		})

		readySet := make(map[int]bool, len(ready))
		for _, i := range ready {
			order = append(order, i)
			placed[s.members[i].Label()] = true
			readySet[i] = true
		}

		next := remaining[:0]
		for _, i := range remaining {
			if !readySet[i] {
				next = append(next, i)
			}
		}
		remaining = next
	}

	out := make([]ecs.SystemLike, n)
	for idx, i := range order {
		out[idx] = s.members[i]
	}
	return out, nil
}

func allPlaced(labels []string, placed map[string]bool) bool {
	for _, l := range labels {
		if !placed[l] {
			return false
		}
	}
	return true
}

func blockedFrom(members []ecs.SystemLike, wait [][]string, remaining []int, placed map[string]bool) []BlockedMember {
	out := make([]BlockedMember, 0, len(remaining))
	for _, i := range remaining {
		var waiting []string
		for _, l := range wait[i] {
			if !placed[l] {
				waiting = append(waiting, l)
			}
		}
		out = append(out, BlockedMember{Label: members[i].Label(), Waiting: waiting})
	}
	return out
}

// memberHandle pairs a compiled member's bound handle with the
// system-like it came from, so SetHandle can re-evaluate its predicates
// every invocation.
type memberHandle struct {
	like         ecs.SystemLike
	handle       ecs.Handle
	pendingReset bool
}

// SetHandle is the stateful, world-bound invocation of a compiled
// SystemSet.
type SetHandle struct {
	world   *ecs.World
	members []*memberHandle
}

func evaluatePredicates(preds []ecs.Predicate, w *ecs.World) (bool, error) {
	for _, p := range preds {
		ok, err := p(w)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Invoke runs every member in compiled order. A member whose predicates
// do not all pass is skipped without invoking it, but is flagged so that
// its tracking is reset before the next invocation that does run it
// (preventing tracking accumulated during the skip from leaking into
// that run). A member callback's error aborts the remaining members in
// this invocation and propagates to the caller.
func (h *SetHandle) Invoke() error {
	for _, m := range h.members {
		ok, err := evaluatePredicates(m.like.Predicates(), h.world)
		if err != nil {
			return err
		}
		if !ok {
			m.pendingReset = true
			continue
		}
		if m.pendingReset {
			m.handle.Reset()
			m.pendingReset = false
		}
		if err := m.handle.Invoke(); err != nil {
			return err
		}
	}
	return nil
}

// Reset resets every member's tracking unconditionally.
func (h *SetHandle) Reset() {
	for _, m := range h.members {
		m.handle.Reset()
		m.pendingReset = false
	}
}

// MakeHandle compiles the set and binds every member to w.
func (s *SystemSet) MakeHandle(w *ecs.World) (ecs.Handle, error) {
	ordered, err := s.Compile()
	if err != nil {
		return nil, err
	}
	h := &SetHandle{world: w, members: make([]*memberHandle, 0, len(ordered))}
	for _, like := range ordered {
		childHandle, err := like.MakeHandle(w)
		if err != nil {
			return nil, err
		}
		h.members = append(h.members, &memberHandle{like: like, handle: childHandle})
	}
	return h, nil
}
