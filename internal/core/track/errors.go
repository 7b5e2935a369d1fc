package track

import "github.com/pkg/errors"

// Track construction errors
var (
	ErrNoGeometry      = errors.New("track has neither walls nor a classification surface")
	ErrNoCheckpoints   = errors.New("track has no checkpoints")
	ErrInvalidBounds   = errors.New("track bounds are empty")
	ErrInvalidSegment  = errors.New("wall segment is not finite")
	ErrInvalidSurface  = errors.New("classification surface is empty")
	ErrUnknownKind     = errors.New("unknown track kind")
	ErrInvalidGeometry = errors.New("invalid track geometry")
)
