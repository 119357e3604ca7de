package scheduler

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Sentinel error kinds, mirroring the world's taxonomy in pkg/ecs.
var (
	// ErrMissingDependencies is returned by Compile when one or more
	// members' after labels never resolve to a member in the set, and by
	// plugin Init when a hook's deps never resolve to a hook name. Before
	// labels that name no member are ignored.
	ErrMissingDependencies = errors.New("scheduler: missing dependencies")

	// ErrCannotSetSystemGroups is returned by Groups' guarded direct-write
	// path; scheduler groups are only created through Groups.Get.
	ErrCannotSetSystemGroups = errors.New("scheduler: cannot set system groups directly")

	// ErrUnsupportedSystemLike is returned by Compile (and so by
	// MakeHandle and Scheduler.Tick) when the set holds a nil member.
	ErrUnsupportedSystemLike = errors.New("scheduler: unsupported system-like")
)

// BlockedMember names one member a compile or plugin-init pass could not
// place, and the labels it was waiting on.
type BlockedMember struct {
	Label   string
	Waiting []string
}

func missingDependenciesError(blocked []BlockedMember) error {
	parts := make([]string, 0, len(blocked))
	for _, b := range blocked {
		parts = append(parts, fmt.Sprintf("%s (waiting on %s)", b.Label, strings.Join(b.Waiting, ", ")))
	}
	return errors.Wrapf(ErrMissingDependencies, "%s", strings.Join(parts, "; "))
}
