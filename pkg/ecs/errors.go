package ecs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel error kinds. Names mirror the failure taxonomy in the design
// notes; callers should compare with errors.Is rather than string matching.
var (
	// ErrMissingTrait is returned by Get when the requested trait slot is
	// empty on the container.
	ErrMissingTrait = errors.New("ecs: missing trait")

	// ErrEmptyQuery is returned by GetOne when a query's result set is
	// empty.
	ErrEmptyQuery = errors.New("ecs: query has no results")

	// ErrMissingSystemCallback is returned by AddSystem when neither a
	// system template nor a callback function was supplied.
	ErrMissingSystemCallback = errors.New("ecs: system has no callback")
)

// missingTraitError wraps ErrMissingTrait with the container's diagnostic
// string and the trait name, per spec: "includes container's toString and
// trait name".
func missingTraitError(c *Container, id TypeID) error {
	return errors.Wrapf(ErrMissingTrait, "container %s has no trait %s", c.String(), id)
}

func emptyQueryError(q fmt.Stringer) error {
	return errors.Wrapf(ErrEmptyQuery, "query %s", q.String())
}
