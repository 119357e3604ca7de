package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/ecsframe/pkg/ecs"
)

func TestSchedulerTickRunsMembersInCompiledOrder(t *testing.T) {
	var order []string
	record := func(label string) ecs.Callback {
		return func(*ecs.SystemContext) error {
			order = append(order, label)
			return nil
		}
	}

	b := ecs.NewSystem(record("B"), ecs.WithLabel("B"))
	a := ecs.NewSystem(record("A"), ecs.WithLabel("A"), ecs.After("B"))

	s := NewScheduler()
	s.Add(a, b)

	w := ecs.NewWorld()
	require.NoError(t, s.Tick(w))
	assert.Equal(t, []string{"B", "A"}, order)
}

func TestSchedulerRecompilesOnlyWhenDirty(t *testing.T) {
	s := NewScheduler()
	w := ecs.NewWorld()

	require.NoError(t, s.Tick(w))
	firstHandle := s.handle

	require.NoError(t, s.Tick(w))
	assert.Same(t, firstHandle, s.handle, "tick without membership changes must not recompile")

	s.Add(ecs.NewSystem(func(*ecs.SystemContext) error { return nil }))
	require.NoError(t, s.Tick(w))
	assert.NotSame(t, firstHandle, s.handle, "adding a member must invalidate the compiled handle")
}

func TestGroupsGetOrInsertsAndSetIsGuarded(t *testing.T) {
	g := NewGroups()
	first := g.Get("physics")
	second := g.Get("physics")
	assert.Same(t, first, second)

	err := g.Set("physics", NewScheduler())
	assert.ErrorIs(t, err, ErrCannotSetSystemGroups)
}
