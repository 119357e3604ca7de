package ecs

import (
	"fmt"
	"sync/atomic"
)

// Predicate is a run condition evaluated against the world. Errors
// propagate to the caller rather than being treated as "false".
type Predicate func(w *World) (bool, error)

// Handle is anything a scheduler can invoke and reset: a bound system or
// (in the scheduler package) a compiled system set.
type Handle interface {
	Invoke() error
	Reset()
}

// SystemLike is the shared contract between a System template and a
// system set: the scheduling metadata the compiler sorts on, plus the
// ability to produce a bound Handle for a given world. The scheduler
// package's SystemSet implements this interface alongside System so that
// sets can nest.
type SystemLike interface {
	Label() string
	Priority() int
	After() []string
	Before() []string
	Predicates() []Predicate
	Clone() SystemLike
	MakeHandle(w *World) (Handle, error)
}

var labelCounter atomic.Uint64

func autoLabel() string {
	return fmt.Sprintf("system-%d", labelCounter.Add(1))
}

// eventDecl is a named, type-erased event-queue declaration captured by
// WithEventQuery.
type eventDecl struct {
	id        TypeID
	newHandle func(w *World) eventHandleAny
}

// eventHandleAny is the type-erased surface SystemHandle needs from a
// declared event queue: whether it currently holds anything, and how to
// drain it. *EventQueue[T] satisfies this for every T.
type eventHandleAny interface {
	Len() int
	drainAny() []any
}

// Callback is a system's behavior: given the assembled SystemContext for
// one invocation, it does its work and returns an error to abort the tick
// (deferred commands queued before the error are discarded).
type Callback func(ctx *SystemContext) error

// System is an immutable template describing a system's queries,
// resources, declared events, callback, and scheduling metadata. Binding
// it to a world via MakeHandle (or World.AddSystem) produces a stateful
// SystemHandle.
type System struct {
	label      string
	priority   int
	after      []string
	before     []string
	predicates []Predicate
	queries    map[string]Filter
	events     map[string]eventDecl
	resources  []Filter
	callback   Callback
}

// SystemOption configures a System at construction time.
type SystemOption func(*System)

// WithQuery declares a named component-keyed query; filters is the filter
// tuple for that query (bare trait types should be wrapped with Present).
func WithQuery(name string, filters ...Filter) SystemOption {
	return func(s *System) { s.queries[name] = flattenAll(filters) }
}

// WithEventQuery declares a named event-type subscription. The system
// gets its own queue for T, created when the system is bound to a world.
func WithEventQuery[T any](name string) SystemOption {
	id := TypeOf[T]()
	return func(s *System) {
		s.events[name] = eventDecl{
			id: id,
			newHandle: func(w *World) eventHandleAny {
				return DeclareEventQueue[T](w)
			},
		}
	}
}

// WithResources declares the system's resource filter tuple. If present,
// the system only runs while this resource query matches.
func WithResources(filters ...Filter) SystemOption {
	return func(s *System) { s.resources = filters }
}

// WithLabel overrides the auto-generated label.
func WithLabel(label string) SystemOption {
	return func(s *System) { s.label = label }
}

// WithPriority sets the tie-breaking priority used by the scheduler when
// no before/after constraint applies. Higher runs earlier.
func WithPriority(p int) SystemOption {
	return func(s *System) { s.priority = p }
}

// After declares labels (or other system-likes' labels) this system must
// run after.
func After(labels ...string) SystemOption {
	return func(s *System) { s.after = append(s.after, labels...) }
}

// Before declares labels this system must run before.
func Before(labels ...string) SystemOption {
	return func(s *System) { s.before = append(s.before, labels...) }
}

// RunIf adds a predicate that must hold for the system to run.
func RunIf(p Predicate) SystemOption {
	return func(s *System) { s.predicates = append(s.predicates, p) }
}

// RunUnless adds a predicate that must NOT hold for the system to run.
func RunUnless(p Predicate) SystemOption {
	return func(s *System) {
		s.predicates = append(s.predicates, func(w *World) (bool, error) {
			ok, err := p(w)
			if err != nil {
				return false, err
			}
			return !ok, nil
		})
	}
}

// NewSystem builds a System template from a callback and any number of
// options. This is the Go-idiomatic equivalent of the source's
// `addSystem({queries}, callback)` call: build the template with options,
// then bind it to a world with World.AddSystem.
func NewSystem(callback Callback, opts ...SystemOption) *System {
	s := &System{
		queries:  make(map[string]Filter),
		events:   make(map[string]eventDecl),
		callback: callback,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.label == "" {
		s.label = autoLabel()
	}
	return s
}

func (s *System) Label() string            { return s.label }
func (s *System) Priority() int            { return s.priority }
func (s *System) After() []string          { return s.after }
func (s *System) Before() []string         { return s.before }
func (s *System) Predicates() []Predicate   { return s.predicates }

// Clone returns a new System sharing this one's queries/events/resources
// and callback but with its own copies of the scheduling metadata
// (label, after-set, before-set, priority, predicates), so that mutating
// the clone's schedule does not affect the original template.
func (s *System) Clone() SystemLike {
	clone := &System{
		label:     s.label,
		priority:  s.priority,
		after:     append([]string(nil), s.after...),
		before:    append([]string(nil), s.before...),
		queries:   s.queries,
		events:    s.events,
		resources: s.resources,
		callback:  s.callback,
	}
	clone.predicates = append([]Predicate(nil), s.predicates...)
	return clone
}

// MakeHandle binds this template to a world, creating the component
// queries, resource query, and event queues it declared.
func (s *System) MakeHandle(w *World) (Handle, error) {
	if s == nil || s.callback == nil {
		return nil, ErrMissingSystemCallback
	}
	h := &SystemHandle{
		sys:     s,
		world:   w,
		queries: make(map[string]*Query, len(s.queries)),
		events:  make(map[string]eventHandleAny, len(s.events)),
	}
	for name, filter := range s.queries {
		h.queries[name] = w.Query(filter)
	}
	if len(s.resources) > 0 {
		h.resourceQuery = w.resources.Query(s.resources...)
	}
	for name, decl := range s.events {
		h.events[name] = decl.newHandle(w)
	}
	h.commands = newCommandAdder(w)
	return h, nil
}

// SystemContext is the assembled view of the world a callback receives
// for one invocation: named component queries, drained events, the
// resource tuple (if declared), and the deferred-command adder.
type SystemContext struct {
	World     *World
	Command   *CommandAdder
	Resources Tuple
	Queries   map[string]*Query
	Events    map[string][]any
}

// TypedEvents type-asserts every drained event under name to T, skipping
// any that don't match (which should not happen for a well-formed
// declaration, since each named queue only ever receives T).
func TypedEvents[T any](ctx *SystemContext, name string) []T {
	raw := ctx.Events[name]
	out := make([]T, 0, len(raw))
	for _, v := range raw {
		if t, ok := v.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// SystemHandle is the stateful, world-bound invocation of a System
// template.
type SystemHandle struct {
	sys           *System
	world         *World
	queries       map[string]*Query
	resourceQuery *ResourceQuery
	events        map[string]eventHandleAny
	commands      *CommandAdder
}

// ready reports whether every gating condition for invocation currently
// holds: all component queries non-empty, all declared event queues
// non-empty, and the resource query (if any) satisfied.
func (h *SystemHandle) ready() bool {
	for _, q := range h.queries {
		if q.Size() == 0 {
			return false
		}
	}
	for _, eh := range h.events {
		if eh.Len() == 0 {
			return false
		}
	}
	if h.resourceQuery != nil && !h.resourceQuery.Satisfied() {
		return false
	}
	return true
}

// Invoke runs the bound system exactly once, following the world's
// invocation contract: gate on readiness, assemble the context, call the
// callback, flush deferred commands in order, then reset tracking. If the
// callback returns an error, queued commands for this invocation are
// discarded and tracking is left unreset.
func (h *SystemHandle) Invoke() error {
	if !h.ready() {
		return nil
	}

	ctx := &SystemContext{
		World:   h.world,
		Command: h.commands,
		Queries: h.queries,
		Events:  make(map[string][]any, len(h.events)),
	}
	for name, eh := range h.events {
		ctx.Events[name] = eh.drainAny()
	}
	if h.resourceQuery != nil {
		ctx.Resources, _ = h.resourceQuery.Get()
	}

	if err := h.sys.callback(ctx); err != nil {
		h.commands.discard()
		return err
	}

	h.commands.flush()
	h.Reset()
	return nil
}

// Reset clears this handle's component and resource query tracking
// without invoking the callback.
func (h *SystemHandle) Reset() {
	for _, q := range h.queries {
		q.Reset()
	}
	if h.resourceQuery != nil {
		h.resourceQuery.Reset()
	}
}
