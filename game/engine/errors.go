package engine

import (
	"errors"
	"fmt"
)

var (
	ErrBoundaryViolation  = errors.New("boundary violation")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidCommand     = errors.New("invalid command")
	ErrInvalidDimensions  = errors.New("invalid grid dimensions")
	ErrStartOutOfBounds   = errors.New("start position outside grid")
	ErrPathAssigned       = errors.New("path already assigned")
)

// BoundaryError describes a move that would have left the grid.
// From and To are internal (top-indexed) coordinates.
type BoundaryError struct {
	Command Command
	Heading Orientation
	From    Position
	To      Position
	Height  int
	Width   int
}

func (e *BoundaryError) Error() string {
	return fmt.Sprintf("car crashed into the wall moving %s heading %s from (%d, %d)",
		e.Command.Name(), e.Heading, DisplayRow(e.Height, e.From.Row), e.From.Col)
}

func (e *BoundaryError) Unwrap() error {
	return ErrBoundaryViolation
}
