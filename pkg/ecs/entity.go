package ecs

// Entity is a container with a stable string identifier. Entities are
// spawned and removed through World; the zero Entity is not usable.
type Entity struct {
	*Container
	id string
}

// ID returns the entity's opaque identifier, in the format documented by
// the world's id.Generator (numeric strings from the default generator).
func (e Entity) ID() string { return e.id }

// String renders a diagnostic identifier. MissingTrait errors use the
// embedded Container's String ("Container(<id>)") instead.
func (e Entity) String() string {
	return "Entity(" + e.id + ")"
}
