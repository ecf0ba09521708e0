package tree

import (
	"errors"
)

// Domain errors surfaced by the engine. Handlers map these to HTTP codes;
// everything else is treated as an internal error.
var (
	// ErrNotFound means the entity does not exist or is not owned by the
	// calling user. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")
	// ErrConflict is a name uniqueness violation within a scope.
	ErrConflict = errors.New("name conflict")
	// ErrCycle is a folder move that would make a folder its own ancestor.
	ErrCycle = errors.New("cycle detected")
	// ErrIntegrity is a corrupted tree, e.g. an ancestry walk that exceeds
	// the maximum depth.
	ErrIntegrity = errors.New("tree integrity violated")
	// ErrValidation is malformed input such as an empty name.
	ErrValidation = errors.New("invalid input")
)
