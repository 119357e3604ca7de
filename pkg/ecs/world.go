package ecs

import (
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/ecsframe/pkg/ecs/id"
	"github.com/opd-ai/ecsframe/pkg/ecslog"
)

// World owns every entity, the singleton resource bag, the event
// dispatcher, and the query manager for a single simulation instance.
type World struct {
	entities      map[string]*Container
	resources     *ResourceBag
	manager       *manager
	events        *eventDispatcher
	idGen         id.Generator
	uniqueHolders map[TypeID]*Container
	name          string
	logger        *logrus.Logger
}

// Option configures a World at construction time.
type Option func(*World)

// WithIDGenerator overrides the default numeric-counter entity id
// generator.
func WithIDGenerator(g id.Generator) Option {
	return func(w *World) { w.idGen = g }
}

// WithName labels this world for log lines, for deployments that run more
// than one world (e.g. per-match servers) and want to tell them apart.
func WithName(name string) Option {
	return func(w *World) { w.name = name }
}

// WithLogger attaches a logrus logger; debug-level logging covers entity
// spawn/remove, trait mutation, query registration, and system compilation.
func WithLogger(l *logrus.Logger) Option {
	return func(w *World) { w.logger = l }
}

// NewWorld creates an empty world with the default id generator and no
// logging.
func NewWorld(opts ...Option) *World {
	w := &World{
		entities:      make(map[string]*Container),
		manager:       newManager(),
		events:        newEventDispatcher(),
		idGen:         id.NewCounterGenerator(),
		uniqueHolders: make(map[TypeID]*Container),
		name:          "world",
	}
	w.resources = newResourceBag()
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Resources returns the world's singleton resource bag.
func (w *World) Resources() *ResourceBag { return w.resources }

func (w *World) debugf(format string, args ...any) {
	if w.logger != nil {
		ecslog.WorldLogger(w.logger, w.name).Debugf(format, args...)
	}
}

// notifiee: World drives the query manager for every entity container it
// owns.
func (w *World) onTraitAdded(c *Container, id TypeID) {
	w.manager.notifyTraitAdded(c, id)
	w.debugf("trait added: %s on %s", id, c.String())
}

func (w *World) onTraitChanged(c *Container, id TypeID) {
	w.manager.notifyTraitChanged(c, id)
	w.debugf("trait changed: %s on %s", id, c.String())
}

func (w *World) onTraitRemoved(c *Container, id TypeID) {
	w.manager.notifyTraitRemoved(c, id)
	w.debugf("trait removed: %s on %s", id, c.String())
}

// uniqueIndex
func (w *World) claimUnique(id TypeID, holder *Container) (evicted *Container) {
	prev := w.uniqueHolders[id]
	w.uniqueHolders[id] = holder
	if prev == holder {
		return nil
	}
	return prev
}

func (w *World) releaseUnique(id TypeID, holder *Container) {
	if w.uniqueHolders[id] == holder {
		delete(w.uniqueHolders, id)
	}
}

// containerProvider, consulted by component queries.
func (w *World) containers() []*Container {
	out := make([]*Container, 0, len(w.entities))
	for _, c := range w.entities {
		out = append(out, c)
	}
	return out
}

// Spawn creates a new entity with a freshly generated id and registers it
// with the world.
func (w *World) Spawn() Entity {
	eid := w.idGen.Next()
	c := newContainer(eid, w, w)
	w.entities[eid] = c
	w.manager.notifyContainerAdded(c)
	w.debugf("entity spawned: %s", eid)
	return Entity{Container: c, id: eid}
}

// Get retrieves the entity with the given id, if it exists.
func (w *World) Get(entityID string) (Entity, bool) {
	c, ok := w.entities[entityID]
	if !ok {
		return Entity{}, false
	}
	return Entity{Container: c, id: entityID}, true
}

// Remove disposes every trait on the entity and removes it from the
// world. Queries drop the entity from their result sets unconditionally,
// with no further trait-level notifications (matching Container.Clear's
// contract). Removing an entity not owned by this world is a no-op.
func (w *World) Remove(e Entity) {
	c, ok := w.entities[e.id]
	if !ok {
		return
	}
	for _, tid := range c.Traits() {
		if registry.descriptorFor(tid).isUnique {
			w.releaseUnique(tid, c)
		}
	}
	c.Clear()
	delete(w.entities, e.id)
	w.manager.notifyContainerRemoved(c)
	w.debugf("entity removed: %s", e.id)
}

// Clear removes every entity from the world. The resource bag is left
// intact; callers that also want resources reset should clear it
// explicitly via Resources().Clear().
func (w *World) Clear() {
	for _, e := range w.Entities() {
		w.Remove(e)
	}
}

// Entities returns every live entity. Intended for diagnostics and tests;
// hot-path code should use Query instead.
func (w *World) Entities() []Entity {
	out := make([]Entity, 0, len(w.entities))
	for eid, c := range w.entities {
		out = append(out, Entity{Container: c, id: eid})
	}
	return out
}

// Query builds a resettable query over the given filters and registers it
// with the world's manager so it receives incremental updates for as long
// as the caller holds a strong reference to it.
func (w *World) Query(filters ...Filter) *Query {
	q := newQuery(w, filters)
	w.manager.register(q)
	w.debugf("query registered: %s", q)
	return q
}

// AddSystem binds a system template to this world, compiling its queries,
// resource query, and event queues, and returns the resulting handle. A
// template with no callback set returns ErrMissingSystemCallback.
func (w *World) AddSystem(sys *System) (*SystemHandle, error) {
	h, err := sys.MakeHandle(w)
	if err != nil {
		return nil, err
	}
	w.debugf("system bound: %s", sys.Label())
	return h.(*SystemHandle), nil
}

// DeclareEventQueue creates a new, weakly-registered event queue for T.
// System compilation uses this to give each system handle its own queue
// per declared event type.
func DeclareEventQueue[T any](w *World) *EventQueue[T] {
	q := &EventQueue[T]{}
	registerEventQueue(w.events, q)
	return q
}
