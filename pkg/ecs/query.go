package ecs

import (
	"fmt"
)

// ledger is the added/changed/removed triple of per-container trait sets
// that a query consults to evaluate change-tracking filters. It is a
// triple of sets, not a set of booleans, specifically so that the
// add-after-remove promotion (removed -> changed, not added) and the
// remove-after-add cancellation can be represented.
type ledger struct {
	added   map[string]map[TypeID]struct{}
	changed map[string]map[TypeID]struct{}
	removed map[string]map[TypeID]struct{}
}

func newLedger() *ledger {
	return &ledger{
		added:   make(map[string]map[TypeID]struct{}),
		changed: make(map[string]map[TypeID]struct{}),
		removed: make(map[string]map[TypeID]struct{}),
	}
}

func (l *ledger) view(containerLabel string) *trackState {
	return &trackState{
		added:   l.added[containerLabel],
		changed: l.changed[containerLabel],
		removed: l.removed[containerLabel],
	}
}

func markSet(m map[string]map[TypeID]struct{}, label string, id TypeID) {
	s, ok := m[label]
	if !ok {
		s = make(map[TypeID]struct{})
		m[label] = s
	}
	s[id] = struct{}{}
}

func unmarkSet(m map[string]map[TypeID]struct{}, label string, id TypeID) {
	if s, ok := m[label]; ok {
		delete(s, id)
		if len(s) == 0 {
			delete(m, label)
		}
	}
}

func (l *ledger) reset() {
	l.added = make(map[string]map[TypeID]struct{})
	l.changed = make(map[string]map[TypeID]struct{})
	l.removed = make(map[string]map[TypeID]struct{})
}

// requestedTrait describes one entry of a query's requested-trait tuple,
// preserving the original filter-list ordering and dropping pure filters
// (they contribute only matching, not data).
type requestedTrait struct {
	id       TypeID
	optional bool
}

// absentValue is the sentinel returned in a requested-trait tuple slot for
// an Optional trait that is not present on the matched container.
type absentValue struct{}

// Absent is the sentinel value found in a Tuple slot for an Optional
// trait that the matched container does not hold.
var Absent = absentValue{}

// IsAbsent reports whether a Tuple slot holds the absent sentinel.
func IsAbsent(v any) bool {
	_, ok := v.(absentValue)
	return ok
}

// containerProvider supplies the live containers a Query iterates and
// re-populates over. World and the resource bag's singleton provider both
// implement it.
type containerProvider interface {
	containers() []*Container
}

// Query is a live, incrementally-maintained result set over a filter. New
// queries are constructed via World.Query or ResourceBag.Query. World.Query
// registers the returned Query with the world's manager, which holds it
// weakly and notifies it for as long as something holds a strong reference
// to it; ResourceBag.Query subscribes it through the bag's update hooks.
type Query struct {
	provider  containerProvider
	filter    Filter
	tracking  map[TypeID]bool
	requested []requestedTrait
	ledger    *ledger
	result    map[string]*Container
	order     []string
	watchNew  bool
}

func buildRequestedTraits(filters []Filter) []requestedTrait {
	var out []requestedTrait
	for _, f := range filters {
		switch v := f.(type) {
		case optionalMarker:
			out = append(out, requestedTrait{id: v.id, optional: true})
		case presentFilter:
			out = append(out, requestedTrait{id: v.id})
		case allFilter:
			out = append(out, buildRequestedTraits(v.members)...)
		}
	}
	return out
}

// newQuery builds a query over provider for the given filter list but does
// not register it with any manager; callers wire notifications themselves.
func newQuery(provider containerProvider, filters []Filter) *Query {
	compiled := flattenAll(filters)
	tracking := make(map[TypeID]bool)
	for _, id := range compiled.trackingTraits() {
		tracking[id] = true
	}
	q := &Query{
		provider:  provider,
		filter:    compiled,
		tracking:  tracking,
		requested: buildRequestedTraits(filters),
		ledger:    newLedger(),
		result:    make(map[string]*Container),
		watchNew:  len(compiled.absenceTraits()) > 0,
	}
	q.populateInitial(true)
	return q
}

// populateInitial matches every live container against the filter and
// seeds the result set. initial is true only for the query's construction:
// a freshly built query's current holders of a tracked trait count as
// matches per Added/Changed's "initial population matches" rule. Reset
// repopulates with initial=false so the just-cleared ledger's absence of
// any added/changed marks is honored instead of bypassed.
func (q *Query) populateInitial(initial bool) {
	for _, c := range q.provider.containers() {
		if q.filter.matches(c, nil, initial) {
			q.result[c.label] = c
			q.order = append(q.order, c.label)
		}
	}
}

// relatedTraits is the set of trait types this query must be subscribed
// to in the manager's inverted index: every trait the filter can match
// against, tracked or not, so that plain presence queries re-evaluate on
// add/remove too.
func (q *Query) relatedTraits() []TypeID { return q.filter.relatedTraits() }

func (q *Query) reevaluate(c *Container) {
	tracked := q.ledger.view(c.label)
	matches := q.filter.matches(c, tracked, false)
	_, present := q.result[c.label]
	if matches && !present {
		q.result[c.label] = c
		q.order = append(q.order, c.label)
	} else if !matches && present {
		delete(q.result, c.label)
		q.removeFromOrder(c.label)
	}
}

func (q *Query) removeFromOrder(label string) {
	for i, l := range q.order {
		if l == label {
			q.order = append(q.order[:i], q.order[i+1:]...)
			return
		}
	}
}

// onTraitAdded is invoked by the manager for every query subscribed to id.
func (q *Query) onTraitAdded(c *Container, id TypeID) {
	if q.tracking[id] {
		if _, wasRemoved := q.ledger.removed[c.label][id]; wasRemoved {
			unmarkSet(q.ledger.removed, c.label, id)
			markSet(q.ledger.changed, c.label, id)
		} else {
			markSet(q.ledger.added, c.label, id)
		}
	}
	q.reevaluate(c)
}

// onTraitChanged is invoked by the manager for every query subscribed to id.
func (q *Query) onTraitChanged(c *Container, id TypeID) {
	if q.tracking[id] {
		markSet(q.ledger.changed, c.label, id)
	}
	q.reevaluate(c)
}

// onTraitRemoved is invoked by the manager for every query subscribed to id.
func (q *Query) onTraitRemoved(c *Container, id TypeID) {
	if q.tracking[id] {
		if _, wasAdded := q.ledger.added[c.label][id]; wasAdded {
			// Remove-after-add in one window cancels out.
			unmarkSet(q.ledger.added, c.label, id)
		} else {
			markSet(q.ledger.removed, c.label, id)
		}
	}
	q.reevaluate(c)
}

// onContainerAdded is invoked only for queries with an active absence
// filter (watchNew), since only those can newly match a brand-new,
// empty container.
func (q *Query) onContainerAdded(c *Container) {
	if q.watchNew {
		q.reevaluate(c)
	}
}

// onContainerRemoved drops c from the result set unconditionally.
func (q *Query) onContainerRemoved(c *Container) {
	if _, ok := q.result[c.label]; ok {
		delete(q.result, c.label)
		q.removeFromOrder(c.label)
	}
}

// Reset clears the result set and the change ledger if this query tracks
// any trait, then rebuilds the result set against the empty ledger. Unlike
// construction, this rebuild does not apply the initial-population rule,
// so Added/Changed match nothing until new changes arrive. If
// the query has no tracking traits, Reset is a no-op: the result set is
// purely presence-based and does not depend on ledger state.
func (q *Query) Reset() {
	if len(q.tracking) == 0 {
		return
	}
	q.ledger.reset()
	q.result = make(map[string]*Container)
	q.order = nil
	q.populateInitial(false)
}

// Size returns the number of containers currently in the result set.
func (q *Query) Size() int { return len(q.order) }

// Contains reports whether c is currently in the result set.
func (q *Query) Contains(c *Container) bool {
	_, ok := q.result[c.label]
	return ok
}

// Iterator returns the matched containers in stable insertion order.
func (q *Query) Iterator() []*Container {
	out := make([]*Container, 0, len(q.order))
	for _, label := range q.order {
		out = append(out, q.result[label])
	}
	return out
}

// Tuple is one row of requested-trait values for a matched container, in
// the order the filters were supplied to the query. Values are *T for a
// present trait, or Absent for an absent Optional trait.
type Tuple []any

func (q *Query) tupleFor(c *Container) Tuple {
	t := make(Tuple, len(q.requested))
	for i, r := range q.requested {
		if b, ok := c.slots[r.id]; ok {
			t[i] = b.value
		} else {
			t[i] = Absent
		}
	}
	return t
}

// AsComponents yields the requested-trait tuple for every matched
// container.
func (q *Query) AsComponents() []Tuple {
	out := make([]Tuple, 0, len(q.order))
	for _, label := range q.order {
		out = append(out, q.tupleFor(q.result[label]))
	}
	return out
}

// WithComponentsRow pairs a matched container with its requested-trait
// tuple.
type WithComponentsRow struct {
	Container *Container
	Tuple     Tuple
}

// WithComponents yields (container, tuple) pairs for every matched
// container.
func (q *Query) WithComponents() []WithComponentsRow {
	out := make([]WithComponentsRow, 0, len(q.order))
	for _, label := range q.order {
		c := q.result[label]
		out = append(out, WithComponentsRow{Container: c, Tuple: q.tupleFor(c)})
	}
	return out
}

func (q *Query) String() string {
	return fmt.Sprintf("Query(size=%d)", q.Size())
}

// GetOne returns the first matched container, or ErrEmptyQuery if the
// result set is empty. If the result set has more than one container, the
// caller should treat the chosen first element as a diagnostic hint, not
// a deliberate pick; GetOneWarning reports whether that happened.
func (q *Query) GetOne() (*Container, error) {
	if len(q.order) == 0 {
		return nil, emptyQueryError(q)
	}
	return q.result[q.order[0]], nil
}

// GetOneWarning reports whether the result set currently has more than
// one match, i.e. whether a prior GetOne call's choice was ambiguous.
func (q *Query) GetOneWarning() bool { return len(q.order) > 1 }

// GetOneAsComponents returns the requested-trait tuple for the first
// matched container.
func (q *Query) GetOneAsComponents() (Tuple, error) {
	c, err := q.GetOne()
	if err != nil {
		return nil, err
	}
	return q.tupleFor(c), nil
}

// GetOneWithComponents returns the first matched container paired with
// its requested-trait tuple.
func (q *Query) GetOneWithComponents() (WithComponentsRow, error) {
	c, err := q.GetOne()
	if err != nil {
		return WithComponentsRow{}, err
	}
	return WithComponentsRow{Container: c, Tuple: q.tupleFor(c)}, nil
}
