// Package ecs provides the core Entity-Component-System runtime: a typed
// trait registry, per-entity and singleton containers, an incremental query
// engine with added/changed/removed tracking, and the world that ties them
// together with events, deferred commands, and system compilation.
//
// The scheduling layer that composes systems into ordered, conditionally-run
// sets lives in the sibling package github.com/opd-ai/ecsframe/pkg/scheduler.
package ecs
