package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnUpdateFiresOnAddChangeRemove(t *testing.T) {
	w := NewWorld()
	var kinds []ChangeKind
	OnUpdate[health](w.Resources(), func(k ChangeKind) { kinds = append(kinds, k) })

	Add(w.Resources().Container, health{HP: 10})
	Modify(w.Resources().Container, func(h *health) { h.HP = 5 })
	Remove[health](w.Resources().Container)

	require.Len(t, kinds, 3)
	assert.Equal(t, ChangeAdded, kinds[0])
	assert.Equal(t, ChangeChanged, kinds[1])
	assert.Equal(t, ChangeRemoved, kinds[2])
}

func TestOnUpdateUnsubscribeStopsFiring(t *testing.T) {
	w := NewWorld()
	calls := 0
	unsubscribe := OnUpdate[health](w.Resources(), func(ChangeKind) { calls++ })

	Add(w.Resources().Container, health{HP: 10})
	unsubscribe()
	Modify(w.Resources().Container, func(h *health) { h.HP = 1 })

	assert.Equal(t, 1, calls)
}

func TestResourceQuerySatisfiedTracksPresence(t *testing.T) {
	w := NewWorld()
	rq := w.Resources().Query(Present[health]())
	assert.False(t, rq.Satisfied())

	Add(w.Resources().Container, health{HP: 1})
	assert.True(t, rq.Satisfied())

	Remove[health](w.Resources().Container)
	assert.False(t, rq.Satisfied())
}

func TestResourceQueryGetReturnsTuple(t *testing.T) {
	w := NewWorld()
	rq := w.Resources().Query(Present[health]())

	Add(w.Resources().Container, health{HP: 7})
	tuple, ok := rq.Get()
	require.True(t, ok)
	require.Len(t, tuple, 1)
	assert.Equal(t, &health{HP: 7}, tuple[0])
}
