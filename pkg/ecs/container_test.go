package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type position struct {
	X, Y float64
}

type velocity struct {
	VX, VY float64
}

type health struct{ HP int }

type disposeTracker struct {
	disposed *bool
}

func (d disposeTracker) Dispose() { *d.disposed = true }

func TestAddThenGet(t *testing.T) {
	w := NewWorld()
	e := w.Spawn()

	Add(e.Container, position{X: 1, Y: 2})

	got, err := Get[position](e.Container)
	require.NoError(t, err)
	assert.Equal(t, position{X: 1, Y: 2}, *got)
}

func TestAddOverlaysOnlyNonZeroFields(t *testing.T) {
	w := NewWorld()
	e := w.Spawn()

	Add(e.Container, position{X: 0, Y: 5})
	got, err := Get[position](e.Container)
	require.NoError(t, err)
	assert.Equal(t, position{X: 0, Y: 5}, *got)
}

func TestGetMissingTraitReturnsErrMissingTrait(t *testing.T) {
	w := NewWorld()
	e := w.Spawn()

	_, err := Get[position](e.Container)
	assert.ErrorIs(t, err, ErrMissingTrait)
}

func TestRemoveDisposesValue(t *testing.T) {
	w := NewWorld()
	e := w.Spawn()
	disposed := false

	AddNew(e.Container, func() disposeTracker { return disposeTracker{disposed: &disposed} })
	assert.True(t, Remove[disposeTracker](e.Container))
	assert.True(t, disposed)
}

func TestRemoveAbsentIsNoOp(t *testing.T) {
	w := NewWorld()
	e := w.Spawn()
	assert.False(t, Remove[position](e.Container))
}

func TestModifySkipsNotificationWhenValueUnchanged(t *testing.T) {
	w := NewWorld()
	e := w.Spawn()
	Add(e.Container, position{X: 1, Y: 1})

	q := w.Query(Present[position](), Changed[position]())
	q.Reset()

	err := Modify(e.Container, func(p *position) { p.X = 1 })
	require.NoError(t, err)
	assert.Equal(t, 0, q.Size())

	err = Modify(e.Container, func(p *position) { p.X = 2 })
	require.NoError(t, err)
	assert.Equal(t, 1, q.Size())
}

func TestStateTraitEvictsSibling(t *testing.T) {
	type idleState struct{}
	type runningState struct{}
	type movementState struct{}
	RegisterState[idleState, movementState]()
	RegisterState[runningState, movementState]()

	w := NewWorld()
	e := w.Spawn()

	Add(e.Container, idleState{})
	assert.True(t, Has[idleState](e.Container))

	Add(e.Container, runningState{})
	assert.False(t, Has[idleState](e.Container))
	assert.True(t, Has[runningState](e.Container))
	assert.True(t, Has[movementState](e.Container))
}

func TestUniqueTraitEvictsPreviousHolder(t *testing.T) {
	type controlled struct{}
	RegisterUnique[controlled]()

	w := NewWorld()
	a := w.Spawn()
	b := w.Spawn()

	Add(a.Container, controlled{})
	assert.True(t, Has[controlled](a.Container))

	Add(b.Container, controlled{})
	assert.False(t, Has[controlled](a.Container))
	assert.True(t, Has[controlled](b.Container))
}

func TestTraitsSkipsParentAlias(t *testing.T) {
	type idleState struct{}
	type movementState struct{}
	RegisterState[idleState, movementState]()

	w := NewWorld()
	e := w.Spawn()
	Add(e.Container, idleState{})

	traits := e.Container.Traits()
	assert.Len(t, traits, 1)
	assert.Equal(t, TypeOf[idleState](), traits[0])
}
