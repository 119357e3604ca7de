package ecs

import "weak"

// manager is the world's inverted index from trait TypeID to the queries
// interested in it, held by weak reference so that a query with no
// remaining strong references is reclaimed without explicit unregistration.
// Dead entries are pruned lazily, on the next notification that would have
// touched them, matching the "weak handles... reclaimed on the next
// relevant notification" invariant.
type manager struct {
	byType      map[TypeID][]weak.Pointer[Query]
	watchingNew []weak.Pointer[Query]
	all         []weak.Pointer[Query]
}

func newManager() *manager {
	return &manager{byType: make(map[TypeID][]weak.Pointer[Query])}
}

// register wires q into the inverted index. Call once, right after
// construction, while the caller still holds the only strong reference.
func (m *manager) register(q *Query) {
	wp := weak.Make(q)
	for _, id := range q.relatedTraits() {
		m.byType[id] = append(m.byType[id], wp)
	}
	if q.watchNew {
		m.watchingNew = append(m.watchingNew, wp)
	}
	m.all = append(m.all, wp)
}

func pruneAndCall(list []weak.Pointer[Query], fn func(*Query)) []weak.Pointer[Query] {
	kept := list[:0]
	for _, wp := range list {
		q := wp.Value()
		if q == nil {
			continue
		}
		fn(q)
		kept = append(kept, wp)
	}
	return kept
}

func (m *manager) notifyTraitAdded(c *Container, id TypeID) {
	m.byType[id] = pruneAndCall(m.byType[id], func(q *Query) { q.onTraitAdded(c, id) })
}

func (m *manager) notifyTraitChanged(c *Container, id TypeID) {
	m.byType[id] = pruneAndCall(m.byType[id], func(q *Query) { q.onTraitChanged(c, id) })
}

func (m *manager) notifyTraitRemoved(c *Container, id TypeID) {
	m.byType[id] = pruneAndCall(m.byType[id], func(q *Query) { q.onTraitRemoved(c, id) })
}

func (m *manager) notifyContainerAdded(c *Container) {
	m.watchingNew = pruneAndCall(m.watchingNew, func(q *Query) { q.onContainerAdded(c) })
}

func (m *manager) notifyContainerRemoved(c *Container) {
	m.all = pruneAndCall(m.all, func(q *Query) { q.onContainerRemoved(c) })
}
