package scheduler

import "github.com/opd-ai/ecsframe/pkg/ecs"

// ResourcePresent returns a predicate that holds while T is present in
// the world's resource bag.
func ResourcePresent[T any]() ecs.Predicate {
	return func(w *ecs.World) (bool, error) {
		return ecs.Has[T](w.Resources().Container), nil
	}
}

// ResourceFilter returns a predicate that holds while the world's
// resource bag currently satisfies every given filter. The underlying
// query is built once, on first evaluation, and reused for every
// subsequent tick rather than rebuilt (and re-subscribed) on each call.
func ResourceFilter(filters ...ecs.Filter) ecs.Predicate {
	var q *ecs.ResourceQuery
	return func(w *ecs.World) (bool, error) {
		if q == nil {
			q = w.Resources().Query(filters...)
		}
		return q.Satisfied(), nil
	}
}

// ComponentFilter returns a predicate that holds while at least one
// entity in the world currently satisfies every given filter. The
// underlying query is built once, on first evaluation, and reused for
// every subsequent tick rather than rebuilt (and re-subscribed) on each
// call.
func ComponentFilter(filters ...ecs.Filter) ecs.Predicate {
	var q *ecs.Query
	return func(w *ecs.World) (bool, error) {
		if q == nil {
			q = w.Query(filters...)
		}
		return q.Size() > 0, nil
	}
}

// All combines predicates into one that holds only if every one holds.
func All(preds ...ecs.Predicate) ecs.Predicate {
	return func(w *ecs.World) (bool, error) {
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
}

// Any combines predicates into one that holds if at least one holds.
func Any(preds ...ecs.Predicate) ecs.Predicate {
	return func(w *ecs.World) (bool, error) {
		for _, p := range preds {
			ok, err := p(w)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}
}
