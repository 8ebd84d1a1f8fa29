package engine

import "errors"

// Engine errors. Placement outcomes (no vacancy, blocked by a pinned item) are
// reported through model.Decision, not as errors.
var (
	ErrInvalidGrid    = errors.New("grid must have positive cell counts and sizes")
	ErrInvalidSpan    = errors.New("span must be positive and minimum span must not exceed requested span")
	ErrOutOfBounds    = errors.New("rectangle lies outside the grid")
	ErrOverlap        = errors.New("rectangle overlaps an existing item")
	ErrUnknownItem    = errors.New("item not found on grid")
	ErrDuplicateItem  = errors.New("item already placed on grid")
	ErrNoSpaceForItem = errors.New("no vacant area large enough for item")

	ErrInvalidDirection = errors.New("direction components must be -1, 0 or 1")
)
