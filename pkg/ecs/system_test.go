package ecs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemSkipsInvocationWhenQueryEmpty(t *testing.T) {
	w := NewWorld()
	calls := 0
	sys := NewSystem(func(ctx *SystemContext) error {
		calls++
		return nil
	}, WithQuery("moving", Present[position](), Present[velocity]()))

	handle, err := w.AddSystem(sys)
	require.NoError(t, err)

	require.NoError(t, handle.Invoke())
	assert.Equal(t, 0, calls)
}

func TestSystemInvokesWhenQueryNonEmpty(t *testing.T) {
	w := NewWorld()
	e := w.Spawn()
	Add(e.Container, position{X: 1, Y: 1})
	Add(e.Container, velocity{VX: 1, VY: 0})

	var seen int
	sys := NewSystem(func(ctx *SystemContext) error {
		seen = ctx.Queries["moving"].Size()
		return nil
	}, WithQuery("moving", Present[position](), Present[velocity]()))

	handle, err := w.AddSystem(sys)
	require.NoError(t, err)
	require.NoError(t, handle.Invoke())
	assert.Equal(t, 1, seen)
}

func TestSystemCommandsFlushAfterCallbackReturns(t *testing.T) {
	w := NewWorld()
	e := w.Spawn()
	Add(e.Container, position{X: 1, Y: 1})

	q := w.Query(Present[position]())
	sys := NewSystem(func(ctx *SystemContext) error {
		ctx.Command.Spawn(func(c *Container) {
			Add(c, position{X: 144, Y: 42})
		})
		return nil
	}, WithQuery("anchor", Present[position]()))

	handle, err := w.AddSystem(sys)
	require.NoError(t, err)

	require.Equal(t, 1, q.Size())
	require.NoError(t, handle.Invoke())
	assert.Equal(t, 2, q.Size())
}

func TestSystemErrorDiscardsQueuedCommands(t *testing.T) {
	w := NewWorld()
	e := w.Spawn()
	Add(e.Container, position{X: 1, Y: 1})

	q := w.Query(Present[position]())
	boom := errors.New("boom")
	sys := NewSystem(func(ctx *SystemContext) error {
		ctx.Command.Spawn(func(c *Container) { Add(c, position{}) })
		return boom
	}, WithQuery("anchor", Present[position]()))

	handle, err := w.AddSystem(sys)
	require.NoError(t, err)

	err = handle.Invoke()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, q.Size(), "queued commands must not apply when the callback errors")
}

func TestSystemResourceGateBlocksInvocation(t *testing.T) {
	w := NewWorld()
	calls := 0
	sys := NewSystem(func(ctx *SystemContext) error {
		calls++
		return nil
	}, WithResources(Present[health]()))

	handle, err := w.AddSystem(sys)
	require.NoError(t, err)
	require.NoError(t, handle.Invoke())
	assert.Equal(t, 0, calls)

	Add(w.Resources().Container, health{HP: 1})
	require.NoError(t, handle.Invoke())
	assert.Equal(t, 1, calls)
}

func TestMissingCallbackReturnsError(t *testing.T) {
	w := NewWorld()
	sys := NewSystem(nil)
	_, err := w.AddSystem(sys)
	assert.ErrorIs(t, err, ErrMissingSystemCallback)
}

func TestEventQueueGatesInvocation(t *testing.T) {
	type tick struct{ N int }
	w := NewWorld()
	calls := 0
	sys := NewSystem(func(ctx *SystemContext) error {
		calls++
		ticks := TypedEvents[tick](ctx, "ticks")
		assert.Len(t, ticks, 1)
		return nil
	}, WithEventQuery[tick]("ticks"))

	handle, err := w.AddSystem(sys)
	require.NoError(t, err)
	require.NoError(t, handle.Invoke())
	assert.Equal(t, 0, calls)

	Dispatch(w, tick{N: 1})
	require.NoError(t, handle.Invoke())
	assert.Equal(t, 1, calls)
}
