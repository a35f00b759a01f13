package engine

import (
	"fmt"
	"strings"
	"time"
)

// Marker is the render state of a single grid cell
type Marker uint8

const (
	Blank Marker = iota
	Trail        // cell the car has visited
	Car          // cell the car currently occupies
)

const (
	// DefaultStepDelay is the pause after every successful Forward or Backward move
	DefaultStepDelay = 500 * time.Millisecond

	// MaxGridCells is the largest grid NewGrid allocates
	MaxGridCells = 1 << 24
)

// Position represents row,col coordinates. Row 0 is the northern edge of the grid.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Add returns the position translated by delta
func (p Position) Add(delta Position) Position {
	return Position{Row: p.Row + delta.Row, Col: p.Col + delta.Col}
}

// Neg returns the opposite step
func (p Position) Neg() Position {
	return Position{Row: -p.Row, Col: -p.Col}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.Row, p.Col)
}

// Orientation is the compass heading of the car. The zero value is not a valid heading.
type Orientation uint8

const (
	North Orientation = iota + 1
	East
	South
	West
)

// ParseOrientation maps a case-insensitive N, S, E or W to an Orientation
func ParseOrientation(s string) (Orientation, bool) {
	switch strings.ToUpper(s) {
	case "N":
		return North, true
	case "E":
		return East, true
	case "S":
		return South, true
	case "W":
		return West, true
	}
	return 0, false
}

// Valid reports whether o is one of the four compass headings
func (o Orientation) Valid() bool {
	return o >= North && o <= West
}

// String returns the single letter form used in reports (N, E, S, W)
func (o Orientation) String() string {
	switch o {
	case North:
		return "N"
	case East:
		return "E"
	case South:
		return "S"
	case West:
		return "W"
	}
	return fmt.Sprintf("Orientation(%d)", uint8(o))
}

// Name returns the long form of the heading
func (o Orientation) Name() string {
	switch o {
	case North:
		return "North"
	case East:
		return "East"
	case South:
		return "South"
	case West:
		return "West"
	}
	return o.String()
}

// MarshalText encodes the heading as its single letter
func (o Orientation) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOrientation, uint8(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText accepts N, E, S or W in any case
func (o *Orientation) UnmarshalText(text []byte) error {
	parsed, ok := ParseOrientation(string(text))
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, string(text))
	}
	*o = parsed
	return nil
}

// Command is a single motion instruction in a path
type Command uint8

const (
	Forward Command = iota + 1
	Backward
	TurnLeft
	TurnRight
)

// ParseCommand maps a case-insensitive F, B, L or R to a Command
func ParseCommand(s string) (Command, bool) {
	switch strings.ToUpper(s) {
	case "F":
		return Forward, true
	case "B":
		return Backward, true
	case "L":
		return TurnLeft, true
	case "R":
		return TurnRight, true
	}
	return 0, false
}

// String returns the command letter (F, B, L, R)
func (c Command) String() string {
	switch c {
	case Forward:
		return "F"
	case Backward:
		return "B"
	case TurnLeft:
		return "L"
	case TurnRight:
		return "R"
	}
	return fmt.Sprintf("Command(%d)", uint8(c))
}

// Name returns a human readable description of the command
func (c Command) Name() string {
	switch c {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	case TurnLeft:
		return "left"
	case TurnRight:
		return "right"
	}
	return c.String()
}

// Moves reports whether the command changes the car's position
func (c Command) Moves() bool {
	return c == Forward || c == Backward
}

// MarshalText encodes the command as its letter
func (c Command) MarshalText() ([]byte, error) {
	if c < Forward || c > TurnRight {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCommand, uint8(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText accepts F, B, L or R in any case
func (c *Command) UnmarshalText(text []byte) error {
	parsed, ok := ParseCommand(string(text))
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidCommand, string(text))
	}
	*c = parsed
	return nil
}

// Step represents a single executed command in the car's history
type Step struct {
	Number  int         `json:"number"`
	Command Command     `json:"command"`
	From    Position    `json:"from"`
	To      Position    `json:"to"`
	Heading Orientation `json:"heading"` // heading after the command
	Success bool        `json:"success"`
}
