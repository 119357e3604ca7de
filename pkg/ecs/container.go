package ecs

import (
	"fmt"
	"reflect"
)

// ChangeKind describes what happened to a trait slot on a single write.
type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeChanged
	ChangeRemoved
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeChanged:
		return "changed"
	case ChangeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// notifiee receives container mutation callbacks. World and the resource
// bag's update-hook table both implement it; a container is constructed
// with whichever notifiee its owner wants to drive.
type notifiee interface {
	onTraitAdded(c *Container, id TypeID)
	onTraitChanged(c *Container, id TypeID)
	onTraitRemoved(c *Container, id TypeID)
}

// uniqueIndex tracks, per unique trait type, which container currently
// holds it. Only the world-facing entity containers consult it; the
// resource bag is a singleton and never contends for a unique slot.
type uniqueIndex interface {
	claimUnique(id TypeID, holder *Container) (evicted *Container)
	releaseUnique(id TypeID, holder *Container)
}

// box is the erased-but-typed storage cell for one trait instance. A state
// trait's box is referenced from two map entries (its own type and its
// parent's), never copied.
type box struct {
	typ     TypeID
	value   any
	dispose func(any)
	version uint64
}

// Container holds at most one trait instance per slot. A slot is keyed by
// the trait's own TypeID, and, for state traits, additionally aliased under
// the parent state TypeID. Container is the shared contract behind both
// Entity and the world's resource bag.
type Container struct {
	label    string
	notifier notifiee
	unique   uniqueIndex // nil for the resource bag
	slots    map[TypeID]*box
	version  uint64
	suppress bool // true while performing internal setup writes
}

func newContainer(label string, notifier notifiee, unique uniqueIndex) *Container {
	return &Container{
		label:    label,
		notifier: notifier,
		unique:   unique,
		slots:    make(map[TypeID]*box),
	}
}

// String renders a diagnostic identifier for this container, used in error
// messages (MissingTrait) and query/system diagnostics.
func (c *Container) String() string {
	return fmt.Sprintf("Container(%s)", c.label)
}

func (c *Container) nextVersion() uint64 {
	c.version++
	return c.version
}

// overlay default-constructs a zero T and copies every non-zero field from
// partial onto it, matching the "default-construct, overlay partial
// fields" container contract. Unexported fields are left at their zero
// value; traits are expected to be plain exported-field data structs, as
// in the component convention the teacher's pkg/engine follows.
func overlay[T any](partial T) T {
	var zero T
	zv := reflect.ValueOf(&zero).Elem()
	pv := reflect.ValueOf(partial)
	if zv.Kind() != reflect.Struct || pv.Kind() != reflect.Struct {
		return partial
	}
	for i := 0; i < zv.NumField(); i++ {
		field := zv.Type().Field(i)
		if !field.IsExported() {
			continue
		}
		pf := pv.Field(i)
		if !pf.IsZero() {
			zv.Field(i).Set(pf)
		}
	}
	return zero
}

func disposerFor[T any]() func(any) {
	return func(v any) {
		if d, ok := v.(interface{ Dispose() }); ok {
			d.Dispose()
		}
	}
}

// installResult reports what Add/AddNew did, for notification purposes.
type installResult struct {
	kind         ChangeKind
	evictedSlot  TypeID // valid if a sibling state trait was evicted
	evictedValid bool
}

func (c *Container) install(id TypeID, value any, dispose func(any)) installResult {
	desc := registry.descriptorFor(id)
	result := installResult{kind: ChangeAdded}

	if desc.parentStateType.IsValid() {
		if sibling, ok := c.slots[desc.parentStateType]; ok && sibling.typ != id {
			delete(c.slots, sibling.typ)
			delete(c.slots, desc.parentStateType)
			if sibling.dispose != nil {
				sibling.dispose(sibling.value)
			}
			result.evictedSlot = sibling.typ
			result.evictedValid = true
		}
	}

	if existing, ok := c.slots[id]; ok && existing.typ == id {
		result.kind = ChangeChanged
		if existing.dispose != nil {
			existing.dispose(existing.value)
		}
	}

	b := &box{typ: id, value: value, dispose: dispose, version: c.nextVersion()}
	c.slots[id] = b
	if desc.parentStateType.IsValid() {
		c.slots[desc.parentStateType] = b
	}

	if desc.isUnique && c.unique != nil {
		if evicted := c.unique.claimUnique(id, c); evicted != nil && evicted != c {
			evicted.removeByID(id)
		}
	}

	return result
}

func (c *Container) notifyInstall(id TypeID, r installResult) {
	if r.evictedValid {
		c.notifier.onTraitRemoved(c, r.evictedSlot)
	}
	switch r.kind {
	case ChangeAdded:
		c.notifier.onTraitAdded(c, id)
	case ChangeChanged:
		c.notifier.onTraitChanged(c, id)
	}
}

// Add default-constructs T, overlays the non-zero fields of partial, and
// installs it into the slot for T. If the slot was occupied the previous
// instance is disposed and a Changed notification fires; otherwise an
// Added notification fires.
func Add[T any](c *Container, partial T) *T {
	id := TypeOf[T]()
	value := overlay(partial)
	r := c.install(id, &value, disposerFor[T]())
	if !c.suppress {
		c.notifyInstall(id, r)
	}
	return &value
}

// AddNew installs T constructed by calling ctor, bypassing the
// overlay-onto-zero-value behavior of Add. This is the equivalent of
// addNew(T, ...args): callers fold their explicit arguments into ctor.
func AddNew[T any](c *Container, ctor func() T) *T {
	id := TypeOf[T]()
	value := ctor()
	r := c.install(id, &value, disposerFor[T]())
	if !c.suppress {
		c.notifyInstall(id, r)
	}
	return &value
}

// AddBundle invokes fn with this container, for composing several Add
// calls (and other bundle functions) into one reusable unit. It performs
// no suppression of its own; each Add inside fn notifies normally.
func AddBundle(c *Container, fn func(*Container)) {
	fn(c)
}

// removeByID is the untyped core of Remove, used internally for unique
// eviction and state-parent removal where the concrete T is not known to
// the caller.
func (c *Container) removeByID(id TypeID) bool {
	b, ok := c.slots[id]
	if !ok || b.typ != id {
		// Absent, or id names a parent-state alias rather than a trait's
		// own slot; callers resolve aliases to the owning child type
		// before calling removeByID.
		return false
	}
	desc := registry.descriptorFor(id)
	delete(c.slots, id)
	if desc.parentStateType.IsValid() {
		if alias, ok := c.slots[desc.parentStateType]; ok && alias == b {
			delete(c.slots, desc.parentStateType)
		}
	}
	if b.dispose != nil {
		b.dispose(b.value)
	}
	if desc.isUnique && c.unique != nil {
		c.unique.releaseUnique(id, c)
	}
	if !c.suppress {
		c.notifier.onTraitRemoved(c, id)
	}
	return true
}

// Remove disposes and unsets the slot for T, if present. Removing a
// state-parent type removes its current child too, with exactly one
// disposal and one Removed notification for the child's type. Removing a
// trait not present on the container is a no-op.
func Remove[T any](c *Container) bool {
	id := TypeOf[T]()
	if b, ok := c.slots[id]; ok && b.typ != id {
		// id names a parent-state slot aliasing a different child type;
		// remove the child, per "removing the parent state type removes
		// the current child too".
		return c.removeByID(b.typ)
	}
	return c.removeByID(id)
}

// Get returns the trait instance for T, or ErrMissingTrait if the slot is
// empty.
func Get[T any](c *Container) (*T, error) {
	id := TypeOf[T]()
	b, ok := c.slots[id]
	if !ok {
		return nil, missingTraitError(c, id)
	}
	v, ok := b.value.(*T)
	if !ok {
		return nil, missingTraitError(c, id)
	}
	return v, nil
}

// TryGet returns the trait instance for T and true, or nil and false if
// absent.
func TryGet[T any](c *Container) (*T, bool) {
	id := TypeOf[T]()
	b, ok := c.slots[id]
	if !ok {
		return nil, false
	}
	v, ok := b.value.(*T)
	return v, ok
}

// Has reports whether T is present on the container.
func Has[T any](c *Container) bool {
	_, ok := c.slots[TypeOf[T]()]
	return ok
}

// HasAll reports whether every listed trait type is present.
func (c *Container) HasAll(ids ...TypeID) bool {
	for _, id := range ids {
		if _, ok := c.slots[id]; !ok {
			return false
		}
	}
	return true
}

// HasAny reports whether at least one listed trait type is present.
func (c *Container) HasAny(ids ...TypeID) bool {
	for _, id := range ids {
		if _, ok := c.slots[id]; ok {
			return true
		}
	}
	return false
}

// Traits enumerates the trait types present on the container, skipping
// parent-state slots that merely alias a present child.
func (c *Container) Traits() []TypeID {
	out := make([]TypeID, 0, len(c.slots))
	for id, b := range c.slots {
		if b.typ != id {
			continue // parent-state alias, not this trait's own slot
		}
		out = append(out, id)
	}
	return out
}

// Clear disposes every trait on the container and empties all slots. No
// further change notifications are emitted.
func (c *Container) Clear() {
	seen := make(map[*box]bool, len(c.slots))
	for _, b := range c.slots {
		if seen[b] {
			continue
		}
		seen[b] = true
		if b.dispose != nil {
			b.dispose(b.value)
		}
	}
	c.slots = make(map[TypeID]*box)
}

// Modify fetches T, invokes fn with a mutable pointer, and emits a Changed
// notification only if fn actually altered the value (compared by
// reflect.DeepEqual). This is the per-field write path referenced in the
// filter contract: writes that do not alter value must not emit.
func Modify[T any](c *Container, fn func(*T)) error {
	id := TypeOf[T]()
	b, ok := c.slots[id]
	if !ok {
		return missingTraitError(c, id)
	}
	v := b.value.(*T)
	before := *v
	fn(v)
	if reflect.DeepEqual(before, *v) {
		return nil
	}
	b.version = c.nextVersion()
	if !c.suppress {
		c.notifier.onTraitChanged(c, id)
	}
	return nil
}

// withSuppressed runs fn with internal change notifications suppressed,
// for setup writes that should not be visible to queries (e.g. overlaying
// defaults before the container is registered with the world).
func (c *Container) withSuppressed(fn func()) {
	prev := c.suppress
	c.suppress = true
	defer func() { c.suppress = prev }()
	fn()
}
