package scheduler

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/ecsframe/pkg/ecs"
)

func labelsOf(members []ecs.SystemLike) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.Label()
	}
	return out
}

func noop() ecs.Callback {
	return func(*ecs.SystemContext) error { return nil }
}

func TestCompileOrdersByAfter(t *testing.T) {
	b := ecs.NewSystem(noop(), ecs.WithLabel("B"))
	a := ecs.NewSystem(noop(), ecs.WithLabel("A"), ecs.After("B"))

	set := NewSystemSet([]ecs.SystemLike{a, b})
	ordered, err := set.Compile()
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"B", "A"}, labelsOf(ordered)); diff != "" {
		t.Errorf("order mismatch:\n%s", diff)
	}
}

func TestCompileOrdersByPriorityAndAfter(t *testing.T) {
	// S = {A.after(B), B, C.priority(2)} compiles to [C, B, A].
	b := ecs.NewSystem(noop(), ecs.WithLabel("B"))
	a := ecs.NewSystem(noop(), ecs.WithLabel("A"), ecs.After("B"))
	c := ecs.NewSystem(noop(), ecs.WithLabel("C"), ecs.WithPriority(2))

	set := NewSystemSet([]ecs.SystemLike{a, b, c})
	ordered, err := set.Compile()
	require.NoError(t, err)

	assert.Equal(t, []string{"C", "B", "A"}, labelsOf(ordered))
}

func TestCompileBeforeFoldsIntoReverseAfter(t *testing.T) {
	a := ecs.NewSystem(noop(), ecs.WithLabel("A"), ecs.Before("B"))
	b := ecs.NewSystem(noop(), ecs.WithLabel("B"))

	set := NewSystemSet([]ecs.SystemLike{b, a})
	ordered, err := set.Compile()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, labelsOf(ordered))
}

func TestCompileUnresolvedAfterFailsWithMissingDependencies(t *testing.T) {
	a := ecs.NewSystem(noop(), ecs.WithLabel("A"), ecs.After("ghost"))

	set := NewSystemSet([]ecs.SystemLike{a})
	_, err := set.Compile()
	assert.ErrorIs(t, err, ErrMissingDependencies)
}

func TestCompileStableAcrossRepeatedRuns(t *testing.T) {
	b := ecs.NewSystem(noop(), ecs.WithLabel("B"))
	a := ecs.NewSystem(noop(), ecs.WithLabel("A"), ecs.After("B"))
	set := NewSystemSet([]ecs.SystemLike{a, b})

	first, err := set.Compile()
	require.NoError(t, err)
	second, err := set.Compile()
	require.NoError(t, err)
	assert.Equal(t, labelsOf(first), labelsOf(second))
}

func TestSetHandleSkipsMemberWhosePredicateFails(t *testing.T) {
	calls := 0
	gate := false
	sys := ecs.NewSystem(func(*ecs.SystemContext) error {
		calls++
		return nil
	}, ecs.RunIf(func(*ecs.World) (bool, error) { return gate, nil }))

	set := NewSystemSet([]ecs.SystemLike{sys})
	w := ecs.NewWorld()
	h, err := set.MakeHandle(w)
	require.NoError(t, err)

	require.NoError(t, h.Invoke())
	assert.Equal(t, 0, calls)

	gate = true
	require.NoError(t, h.Invoke())
	assert.Equal(t, 1, calls)
}
