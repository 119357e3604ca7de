package ecs

// command is one deferred world mutation queued by a system's callback.
type command func(w *World)

// CommandAdder buffers mutations issued from inside a system callback so
// they apply after the callback returns, in the order they were issued.
// If the callback returns an error, the buffer is discarded unapplied.
type CommandAdder struct {
	world *World
	queue []command
}

func newCommandAdder(w *World) *CommandAdder {
	return &CommandAdder{world: w}
}

func (ca *CommandAdder) enqueue(cmd command) {
	ca.queue = append(ca.queue, cmd)
}

func (ca *CommandAdder) flush() {
	queue := ca.queue
	ca.queue = nil
	for _, cmd := range queue {
		cmd(ca.world)
	}
}

func (ca *CommandAdder) discard() {
	ca.queue = nil
}

// Spawn queues a new entity. setup, if non-nil, runs against the new
// entity's container once it exists, so callers can chain trait adds:
//
//	ctx.Command.Spawn(func(c *ecs.Container) {
//	    ecs.Add(c, Position{X: 144, Y: 42})
//	})
func (ca *CommandAdder) Spawn(setup func(*Container)) {
	ca.enqueue(func(w *World) {
		e := w.Spawn()
		if setup != nil {
			setup(e.Container)
		}
	})
}

// Remove queues the removal of e. Removing an entity that no longer
// exists by the time the command runs is a no-op.
func (ca *CommandAdder) Remove(e Entity) {
	ca.enqueue(func(w *World) { w.Remove(e) })
}

// AddResource queues installing partial, overlaid onto T's zero value,
// into the world's resource bag.
func AddResource[T any](ca *CommandAdder, partial T) {
	ca.enqueue(func(w *World) { Add(w.resources.Container, partial) })
}

// AddNewResource queues installing the value ctor produces into the
// world's resource bag, bypassing Add's zero-value overlay.
func AddNewResource[T any](ca *CommandAdder, ctor func() T) {
	ca.enqueue(func(w *World) { AddNew(w.resources.Container, ctor) })
}

// RemoveResource queues removing T from the world's resource bag.
// Removing a resource that is not present is a no-op.
func RemoveResource[T any](ca *CommandAdder) {
	ca.enqueue(func(w *World) { Remove[T](w.resources.Container) })
}

// Emit queues dispatching partial, overlaid onto T's zero value, as an
// event of type T once the callback returns.
func Emit[T any](ca *CommandAdder, partial T) {
	ca.enqueue(func(w *World) { Dispatch(w, partial) })
}

// EmitNew queues dispatching the value ctor produces as an event of type
// T, bypassing Dispatch's zero-value overlay.
func EmitNew[T any](ca *CommandAdder, ctor func() T) {
	ca.enqueue(func(w *World) { DispatchNew(w, ctor) })
}
