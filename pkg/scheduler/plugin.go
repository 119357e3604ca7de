package scheduler

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/ecsframe/pkg/ecslog"
)

// CleanupFunc is a hook's teardown action, registered by returning it
// from an InitFunc. Cleanups run in reverse init order on Stop.
type CleanupFunc func(ctx context.Context) error

// InitFunc is a plugin's init hook. Returning a non-nil CleanupFunc
// registers it for Stop; a non-nil error aborts PluginManager.Init.
type InitFunc func(ctx context.Context) (CleanupFunc, error)

// HookOptions names a hook and its dependencies for topological
// ordering. Name defaults to an auto-generated token if empty.
type HookOptions struct {
	Name string
	Deps []string
}

// OnInit is the registration function a Plugin receives: calling it
// queues cb to run during PluginManager.Init, after every hook it
// depends on.
type OnInit func(cb InitFunc, opts HookOptions)

// Plugin is a function that registers init hooks (via onInit) and may
// attach systems to named groups.
type Plugin func(onInit OnInit, groups *Groups)

type hookEntry struct {
	name    string
	deps    []string
	cb      InitFunc
	cleanup CleanupFunc
}

// PluginManager collects plugins, sequences their init hooks in
// dependency order, and runs registered cleanups in reverse on Stop.
// Only hook init/cleanup may suspend (via ctx); the manager awaits each
// hook to completion before starting the next.
type PluginManager struct {
	groups      *Groups
	plugins     []Plugin
	hooks       []*hookEntry
	ranCleanups []*hookEntry
	logger      *logrus.Logger
}

// NewPluginManager creates a manager that attaches plugins to groups.
func NewPluginManager(groups *Groups, opts ...func(*PluginManager)) *PluginManager {
	pm := &PluginManager{groups: groups}
	for _, opt := range opts {
		opt(pm)
	}
	return pm
}

// WithPluginLogger attaches a logrus logger; debug-level logging covers
// each hook's init and cleanup. Hook registration and ordering are not
// logged.
func WithPluginLogger(l *logrus.Logger) func(*PluginManager) {
	return func(pm *PluginManager) { pm.logger = l }
}

func (pm *PluginManager) debugf(hookName, format string, args ...any) {
	if pm.logger != nil {
		ecslog.PluginLogger(pm.logger, hookName).Debugf(format, args...)
	}
}

// Register queues p to run on the next Init.
func (pm *PluginManager) Register(p Plugin) {
	pm.plugins = append(pm.plugins, p)
}

// Init runs every registered plugin's onInit calls to collect hooks,
// topologically sorts them by (name, deps), and runs them in order,
// awaiting each before starting the next. A hook's error aborts Init
// immediately; per the no-preemption contract, no cleanups run on
// abort, including ones already collected from earlier, successful
// hooks in this call.
func (pm *PluginManager) Init(ctx context.Context) error {
	pm.hooks = nil
	onInit := func(cb InitFunc, opts HookOptions) {
		name := opts.Name
		if name == "" {
			name = autoLabel()
		}
		pm.hooks = append(pm.hooks, &hookEntry{name: name, deps: opts.Deps, cb: cb})
	}
	for _, p := range pm.plugins {
		p(onInit, pm.groups)
	}

	ordered, err := pm.topoSort()
	if err != nil {
		return err
	}

	pm.ranCleanups = nil
	for _, h := range ordered {
		pm.debugf(h.name, "initializing")
		cleanup, err := h.cb(ctx)
		if err != nil {
			pm.ranCleanups = nil
			return err
		}
		h.cleanup = cleanup
		pm.ranCleanups = append(pm.ranCleanups, h)
	}
	return nil
}

// Stop runs every successfully-initialized hook's cleanup in reverse
// init order, awaiting each. The first error encountered is returned
// after every cleanup has still been attempted.
func (pm *PluginManager) Stop(ctx context.Context) error {
	var firstErr error
	for i := len(pm.ranCleanups) - 1; i >= 0; i-- {
		h := pm.ranCleanups[i]
		if h.cleanup == nil {
			continue
		}
		pm.debugf(h.name, "cleaning up")
		if err := h.cleanup(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	pm.ranCleanups = nil
	return firstErr
}

func (pm *PluginManager) topoSort() ([]*hookEntry, error) {
	n := len(pm.hooks)
	placed := make(map[string]bool, n)
	remaining := make([]int, n)
	for i := range pm.hooks {
		remaining[i] = i
	}

	order := make([]int, 0, n)
	for len(remaining) > 0 {
		var ready []int
		for _, i := range remaining {
			if allPlaced(pm.hooks[i].deps, placed) {
				ready = append(ready, i)
			}
		}
		if len(ready) == 0 {
			return nil, missingDependenciesError(blockedHooks(pm.hooks, remaining, placed))
		}

		sort.Ints(ready)
		readySet := make(map[int]bool, len(ready))
		for _, i := range ready {
			order = append(order, i)
			placed[pm.hooks[i].name] = true
			readySet[i] = true
		}

		next := remaining[:0]
		for _, i := range remaining {
			if !readySet[i] {
				next = append(next, i)
			}
		}
		remaining = next
	}

	out := make([]*hookEntry, n)
	for idx, i := range order {
		out[idx] = pm.hooks[i]
	}
	return out, nil
}

func blockedHooks(hooks []*hookEntry, remaining []int, placed map[string]bool) []BlockedMember {
	out := make([]BlockedMember, 0, len(remaining))
	for _, i := range remaining {
		var waiting []string
		for _, l := range hooks[i].deps {
			if !placed[l] {
				waiting = append(waiting, l)
			}
		}
		out = append(out, BlockedMember{Label: hooks[i].name, Waiting: waiting})
	}
	return out
}
