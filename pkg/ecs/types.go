package ecs

import (
	"reflect"
	"sync"
)

// TypeID is a stable, comparable identity for a trait type. Traits are
// nominal: two TypeIDs are equal if and only if they were obtained from the
// same Go type via TypeOf.
type TypeID struct {
	rt reflect.Type
}

// String returns the trait type's short name, used in diagnostics.
func (id TypeID) String() string {
	if id.rt == nil {
		return "<invalid trait>"
	}
	return id.rt.String()
}

// IsValid reports whether id was obtained from a concrete type.
func (id TypeID) IsValid() bool { return id.rt != nil }

// TypeOf returns the stable identity of trait type T. It never allocates an
// instance of T; it only inspects the type.
func TypeOf[T any]() TypeID {
	return TypeID{rt: reflect.TypeOf((*T)(nil)).Elem()}
}

// TraitKind classifies what a trait type is used for. The runtime treats
// components, resources, and events identically at the container level; the
// kind is recorded (via RegisterKind) but no part of the runtime reads it,
// and any type may be dispatched as an event.
type TraitKind int

const (
	KindComponent TraitKind = iota
	KindResource
	KindEvent
)

func (k TraitKind) String() string {
	switch k {
	case KindComponent:
		return "component"
	case KindResource:
		return "resource"
	case KindEvent:
		return "event"
	default:
		return "unknown"
	}
}

// traitDescriptor carries the registration-time facts about a trait type
// that drive container behavior: whether it is a child of a state group,
// and whether it is globally unique. Descriptors are built once, implicitly
// on first use, unless the caller explicitly registers state/uniqueness
// ahead of time with RegisterState/RegisterUnique.
type traitDescriptor struct {
	id              TypeID
	kind            TraitKind
	parentStateType TypeID // zero value (invalid) if not a state trait
	isUnique        bool
}

type traitRegistry struct {
	mu          sync.RWMutex
	descriptors map[TypeID]*traitDescriptor
}

var registry = &traitRegistry{
	descriptors: make(map[TypeID]*traitDescriptor),
}

// descriptorFor returns the descriptor for id, creating a default one
// (plain component, no parent state, not unique) if none was registered.
func (r *traitRegistry) descriptorFor(id TypeID) *traitDescriptor {
	r.mu.RLock()
	d, ok := r.descriptors[id]
	r.mu.RUnlock()
	if ok {
		return d
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.descriptors[id]; ok {
		return d
	}
	d = &traitDescriptor{id: id}
	r.descriptors[id] = d
	return d
}

func (r *traitRegistry) mutate(id TypeID, fn func(*traitDescriptor)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.descriptors[id]
	if !ok {
		d = &traitDescriptor{id: id}
		r.descriptors[id] = d
	}
	fn(d)
}

// RegisterState declares Child as a state trait whose parent slot is
// Parent. Adding a Child to a container also fills the Parent slot;
// adding a sibling state trait with the same Parent evicts Child (or
// whichever sibling currently occupies the slot) with exactly one
// disposal. Call before any container ever adds Child; re-registering with
// a different parent is a programmer error and is not detected at runtime.
func RegisterState[Child any, Parent any]() {
	childID := TypeOf[Child]()
	parentID := TypeOf[Parent]()
	registry.mutate(childID, func(d *traitDescriptor) {
		d.parentStateType = parentID
	})
}

// RegisterUnique declares T as a unique trait: at most one container in a
// given world may hold T at any time. Adding T to a new container removes
// it from whichever container currently holds it.
func RegisterUnique[T any]() {
	registry.mutate(TypeOf[T](), func(d *traitDescriptor) {
		d.isUnique = true
	})
}

// RegisterKind records the declared kind (component/resource/event) for T.
// This is informational only: neither the container nor the world reads
// it or validates anything against it.
func RegisterKind[T any](kind TraitKind) {
	registry.mutate(TypeOf[T](), func(d *traitDescriptor) {
		d.kind = kind
	})
}

func descriptorOf[T any]() *traitDescriptor {
	return registry.descriptorFor(TypeOf[T]())
}
