package ecs

// ResourceBag is the world's singleton container for resource traits. It
// extends the shared container contract with per-type update hooks and its
// own resettable query mechanism, since a world has exactly one resource
// bag and its queries never need an inverted index over many containers.
type ResourceBag struct {
	*Container
	hooks map[TypeID][]func(ChangeKind)
}

func newResourceBag() *ResourceBag {
	rb := &ResourceBag{hooks: make(map[TypeID][]func(ChangeKind))}
	rb.Container = newContainer("resources", rb, nil)
	return rb
}

func (rb *ResourceBag) onTraitAdded(_ *Container, id TypeID)   { rb.fire(id, ChangeAdded) }
func (rb *ResourceBag) onTraitChanged(_ *Container, id TypeID) { rb.fire(id, ChangeChanged) }
func (rb *ResourceBag) onTraitRemoved(_ *Container, id TypeID) { rb.fire(id, ChangeRemoved) }

func (rb *ResourceBag) fire(id TypeID, kind ChangeKind) {
	for _, cb := range rb.hooks[id] {
		if cb != nil {
			cb(kind)
		}
	}
}

// OnUpdate registers cb to run whenever T is added, removed, or changed on
// the resource bag. The returned function unsubscribes cb.
func OnUpdate[T any](rb *ResourceBag, cb func(ChangeKind)) (unsubscribe func()) {
	id := TypeOf[T]()
	rb.hooks[id] = append(rb.hooks[id], cb)
	idx := len(rb.hooks[id]) - 1
	return func() {
		hooks := rb.hooks[id]
		if idx < len(hooks) {
			hooks[idx] = nil
		}
	}
}

func (rb *ResourceBag) containers() []*Container { return []*Container{rb.Container} }

// ResourceQuery is a resettable view over the resource bag, built from a
// filter tuple exactly like a component Query, but always backed by the
// single resource container.
type ResourceQuery struct {
	*Query
}

// Query builds a ResourceQuery over this resource bag's current and
// future trait state. Unlike component queries, resource queries are not
// weakly indexed by a manager: the resource bag is long-lived for the
// world's lifetime, and update hooks are cheap enough to leave registered.
// The hooks are never removed and hold the query, so a ResourceQuery lives
// as long as its resource bag.
func (rb *ResourceBag) Query(filters ...Filter) *ResourceQuery {
	q := newQuery(rb, filters)
	for _, id := range q.relatedTraits() {
		id := id
		rb.hooks[id] = append(rb.hooks[id], func(kind ChangeKind) {
			switch kind {
			case ChangeAdded:
				q.onTraitAdded(rb.Container, id)
			case ChangeChanged:
				q.onTraitChanged(rb.Container, id)
			case ChangeRemoved:
				q.onTraitRemoved(rb.Container, id)
			}
		})
	}
	return &ResourceQuery{Query: q}
}

// Get returns the current requested-trait tuple if the query matches the
// resource bag, or (nil, false) otherwise — the "callable that yields the
// current matching tuple or the absent sentinel" from the container
// contract.
func (rq *ResourceQuery) Get() (Tuple, bool) {
	if rq.Size() == 0 {
		return nil, false
	}
	t, err := rq.GetOneAsComponents()
	if err != nil {
		return nil, false
	}
	return t, true
}

// Satisfied reports whether the resource query currently matches.
func (rq *ResourceQuery) Satisfied() bool { return rq.Size() > 0 }
