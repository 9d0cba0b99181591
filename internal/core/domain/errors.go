package domain

import "errors"

var (
	ErrCapacityExceeded    = errors.New("layout capacity exceeded")
	ErrDuplicateStream     = errors.New("stream already placed in layout")
	ErrNotFound            = errors.New("stream not found in layout")
	ErrTemplateLocked      = errors.New("active template does not allow manual placement")
	ErrInvalidGeometry     = errors.New("geometry must have positive area")
	ErrStaleContainerSize  = errors.New("stale container size update")
	ErrUnknownTemplate     = errors.New("unknown layout template")
	ErrUnknownArrangeStyle = errors.New("unknown arrange style")
	ErrSessionNotFound     = errors.New("layout session not found")
	ErrSnapshotNotFound    = errors.New("layout snapshot not found")
	ErrStreamNotRegistered = errors.New("stream not registered")
)
