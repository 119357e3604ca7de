package ecs

// trackState is the per-query, per-container view of the change ledger
// that a filter's matches method consults. It never mutates; the query
// owns the ledger and passes views of it in.
type trackState struct {
	added   map[TypeID]struct{}
	changed map[TypeID]struct{}
	removed map[TypeID]struct{}
}

func (t *trackState) isAdded(id TypeID) bool {
	if t == nil {
		return false
	}
	_, ok := t.added[id]
	return ok
}

func (t *trackState) isChanged(id TypeID) bool {
	if t == nil {
		return false
	}
	_, ok := t.changed[id]
	return ok
}

func (t *trackState) isRemoved(id TypeID) bool {
	if t == nil {
		return false
	}
	_, ok := t.removed[id]
	return ok
}

// Filter is a predicate over a container. It declares which trait types
// it needs tracking notifications for (trackingTraits), which trait types
// it cares about for membership/inverted-index purposes (relatedTraits),
// and which trait types it watches for purely via absence (absenceTraits,
// used to decide whether a query must also watch "a new container
// appeared" events).
type Filter interface {
	relatedTraits() []TypeID
	trackingTraits() []TypeID
	absenceTraits() []TypeID
	matches(c *Container, t *trackState, initial bool) bool
}

// And composes the given filters into a flattened conjunction.
func And(filters ...Filter) Filter {
	return flattenAll(filters)
}

// Or composes the given filters into a flattened disjunction.
func Or(filters ...Filter) Filter {
	return flattenAny(filters)
}

// presentFilter matches containers currently holding T. Bare trait types
// passed to a query are lifted to this filter.
type presentFilter struct{ id TypeID }

func Present[T any]() Filter { return presentFilter{id: TypeOf[T]()} }

func (f presentFilter) relatedTraits() []TypeID  { return []TypeID{f.id} }
func (f presentFilter) trackingTraits() []TypeID { return nil }
func (f presentFilter) absenceTraits() []TypeID  { return nil }
func (f presentFilter) matches(c *Container, _ *trackState, _ bool) bool {
	_, ok := c.slots[f.id]
	return ok
}

// notPresentFilter matches containers not holding T.
type notPresentFilter struct{ id TypeID }

func NotPresent[T any]() Filter { return notPresentFilter{id: TypeOf[T]()} }

func (f notPresentFilter) relatedTraits() []TypeID  { return []TypeID{f.id} }
func (f notPresentFilter) trackingTraits() []TypeID { return nil }
func (f notPresentFilter) absenceTraits() []TypeID  { return []TypeID{f.id} }
func (f notPresentFilter) matches(c *Container, _ *trackState, _ bool) bool {
	_, ok := c.slots[f.id]
	return !ok
}

// addedFilter matches containers where T is present and was added since
// the last reset (or during initial population).
type addedFilter struct{ id TypeID }

func Added[T any]() Filter { return addedFilter{id: TypeOf[T]()} }

func (f addedFilter) relatedTraits() []TypeID  { return []TypeID{f.id} }
func (f addedFilter) trackingTraits() []TypeID { return []TypeID{f.id} }
func (f addedFilter) absenceTraits() []TypeID  { return nil }
func (f addedFilter) matches(c *Container, t *trackState, initial bool) bool {
	if _, ok := c.slots[f.id]; !ok {
		return false
	}
	return initial || t.isAdded(f.id)
}

// notAddedFilter matches containers currently holding T that were not
// added since the last reset.
type notAddedFilter struct{ id TypeID }

func NotAdded[T any]() Filter { return notAddedFilter{id: TypeOf[T]()} }

func (f notAddedFilter) relatedTraits() []TypeID  { return []TypeID{f.id} }
func (f notAddedFilter) trackingTraits() []TypeID { return []TypeID{f.id} }
func (f notAddedFilter) absenceTraits() []TypeID  { return nil }
func (f notAddedFilter) matches(c *Container, t *trackState, initial bool) bool {
	if _, ok := c.slots[f.id]; !ok {
		return false
	}
	return !(initial || t.isAdded(f.id))
}

// changedFilter matches containers where T is present and was changed
// since the last reset (replacement counts as a change), excluding
// containers where the only event was an Add.
type changedFilter struct{ id TypeID }

func Changed[T any]() Filter { return changedFilter{id: TypeOf[T]()} }

func (f changedFilter) relatedTraits() []TypeID  { return []TypeID{f.id} }
func (f changedFilter) trackingTraits() []TypeID { return []TypeID{f.id} }
func (f changedFilter) absenceTraits() []TypeID  { return nil }
func (f changedFilter) matches(c *Container, t *trackState, initial bool) bool {
	if _, ok := c.slots[f.id]; !ok {
		return false
	}
	return initial || (t.isChanged(f.id) && !t.isAdded(f.id))
}

// notChangedFilter matches containers currently holding T that were not
// changed since the last reset. A replacement is treated as a change, so
// it excludes the container from notChanged.
type notChangedFilter struct{ id TypeID }

func NotChanged[T any]() Filter { return notChangedFilter{id: TypeOf[T]()} }

func (f notChangedFilter) relatedTraits() []TypeID  { return []TypeID{f.id} }
func (f notChangedFilter) trackingTraits() []TypeID { return []TypeID{f.id} }
func (f notChangedFilter) absenceTraits() []TypeID  { return nil }
func (f notChangedFilter) matches(c *Container, t *trackState, initial bool) bool {
	if _, ok := c.slots[f.id]; !ok {
		return false
	}
	if initial {
		return false
	}
	return !(t.isChanged(f.id) && !t.isAdded(f.id))
}

// removedFilter matches containers where T is absent now but removal was
// observed since the last reset (and not cancelled by a re-add).
type removedFilter struct{ id TypeID }

func Removed[T any]() Filter { return removedFilter{id: TypeOf[T]()} }

func (f removedFilter) relatedTraits() []TypeID  { return []TypeID{f.id} }
func (f removedFilter) trackingTraits() []TypeID { return []TypeID{f.id} }
func (f removedFilter) absenceTraits() []TypeID  { return []TypeID{f.id} }
func (f removedFilter) matches(c *Container, t *trackState, _ bool) bool {
	if _, ok := c.slots[f.id]; ok {
		return false
	}
	return t.isRemoved(f.id)
}

// AddedOrChanged is the union of Added and Changed for T.
func AddedOrChanged[T any]() Filter { return Or(Added[T](), Changed[T]()) }

// ChangedOrRemoved is the union of Changed and Removed for T.
func ChangedOrRemoved[T any]() Filter { return Or(Changed[T](), Removed[T]()) }

// allFilter is a flattened conjunction of filters.
type allFilter struct{ members []Filter }

func flattenAll(filters []Filter) Filter {
	out := make([]Filter, 0, len(filters))
	for _, f := range filters {
		if af, ok := f.(allFilter); ok {
			out = append(out, af.members...)
		} else {
			out = append(out, f)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return allFilter{members: out}
}

func (f allFilter) relatedTraits() []TypeID  { return collectTraits(f.members, (Filter).relatedTraits) }
func (f allFilter) trackingTraits() []TypeID { return collectTraits(f.members, (Filter).trackingTraits) }
func (f allFilter) absenceTraits() []TypeID  { return collectTraits(f.members, (Filter).absenceTraits) }
func (f allFilter) matches(c *Container, t *trackState, initial bool) bool {
	for _, m := range f.members {
		if !m.matches(c, t, initial) {
			return false
		}
	}
	return true
}

// anyFilter is a flattened disjunction of filters.
type anyFilter struct{ members []Filter }

func flattenAny(filters []Filter) Filter {
	out := make([]Filter, 0, len(filters))
	for _, f := range filters {
		if af, ok := f.(anyFilter); ok {
			out = append(out, af.members...)
		} else {
			out = append(out, f)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return anyFilter{members: out}
}

func (f anyFilter) relatedTraits() []TypeID  { return collectTraits(f.members, (Filter).relatedTraits) }
func (f anyFilter) trackingTraits() []TypeID { return collectTraits(f.members, (Filter).trackingTraits) }
func (f anyFilter) absenceTraits() []TypeID  { return collectTraits(f.members, (Filter).absenceTraits) }
func (f anyFilter) matches(c *Container, t *trackState, initial bool) bool {
	for _, m := range f.members {
		if m.matches(c, t, initial) {
			return true
		}
	}
	return false
}

func collectTraits(members []Filter, get func(Filter) []TypeID) []TypeID {
	seen := make(map[TypeID]bool)
	var out []TypeID
	for _, m := range members {
		for _, id := range get(m) {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// optionalMarker tags a requested trait as optional in the result tuple:
// it matches unconditionally and contributes the slot value or the absent
// sentinel rather than gating the query.
type optionalMarker struct{ id TypeID }

// Optional marks T as a requested-but-not-required trait in a query's
// filter tuple. It is not a filter in the gating sense; it always
// matches.
func Optional[T any]() Filter { return optionalMarker{id: TypeOf[T]()} }

func (f optionalMarker) relatedTraits() []TypeID  { return []TypeID{f.id} }
func (f optionalMarker) trackingTraits() []TypeID { return nil }
func (f optionalMarker) absenceTraits() []TypeID  { return nil }
func (f optionalMarker) matches(*Container, *trackState, bool) bool { return true }
