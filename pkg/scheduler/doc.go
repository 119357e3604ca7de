// Package scheduler compiles labelled, dependency-ordered groups of
// ecs.SystemLike members into a deterministic run order, and sequences
// plugin init/cleanup hooks across named scheduler groups.
package scheduler
