package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPluginInitOrdersByDeps(t *testing.T) {
	var order []string
	physics := func(onInit OnInit, groups *Groups) {
		onInit(func(context.Context) (CleanupFunc, error) {
			order = append(order, "physics")
			return nil, nil
		}, HookOptions{Name: "physics"})
	}
	render := func(onInit OnInit, groups *Groups) {
		onInit(func(context.Context) (CleanupFunc, error) {
			order = append(order, "render")
			return nil, nil
		}, HookOptions{Name: "render", Deps: []string{"physics"}})
	}

	pm := NewPluginManager(NewGroups())
	pm.Register(render)
	pm.Register(physics)

	require.NoError(t, pm.Init(context.Background()))
	assert.Equal(t, []string{"physics", "render"}, order)
}

func TestPluginInitFailureAbortsWithoutCleanup(t *testing.T) {
	boom := errors.New("boom")
	cleanupCalls := 0

	ok := func(onInit OnInit, groups *Groups) {
		onInit(func(context.Context) (CleanupFunc, error) {
			return func(context.Context) error { cleanupCalls++; return nil }, nil
		}, HookOptions{Name: "ok"})
	}
	failing := func(onInit OnInit, groups *Groups) {
		onInit(func(context.Context) (CleanupFunc, error) {
			return nil, boom
		}, HookOptions{Name: "failing", Deps: []string{"ok"}})
	}

	pm := NewPluginManager(NewGroups())
	pm.Register(ok)
	pm.Register(failing)

	err := pm.Init(context.Background())
	assert.ErrorIs(t, err, boom)

	require.NoError(t, pm.Stop(context.Background()))
	assert.Equal(t, 0, cleanupCalls, "no cleanups run on an aborted init")
}

func TestPluginStopRunsCleanupsInReverseOrder(t *testing.T) {
	var order []string
	mkPlugin := func(name string, deps ...string) Plugin {
		return func(onInit OnInit, groups *Groups) {
			onInit(func(context.Context) (CleanupFunc, error) {
				return func(context.Context) error {
					order = append(order, name)
					return nil
				}, nil
			}, HookOptions{Name: name, Deps: deps})
		}
	}

	pm := NewPluginManager(NewGroups())
	pm.Register(mkPlugin("a"))
	pm.Register(mkPlugin("b", "a"))

	require.NoError(t, pm.Init(context.Background()))
	require.NoError(t, pm.Stop(context.Background()))
	assert.Equal(t, []string{"b", "a"}, order)
}

func TestPluginInitMissingDepFails(t *testing.T) {
	plugin := func(onInit OnInit, groups *Groups) {
		onInit(func(context.Context) (CleanupFunc, error) {
			return nil, nil
		}, HookOptions{Name: "lonely", Deps: []string{"ghost"}})
	}

	pm := NewPluginManager(NewGroups())
	pm.Register(plugin)

	err := pm.Init(context.Background())
	assert.ErrorIs(t, err, ErrMissingDependencies)
}
