package engine

import (
	"fmt"
	"time"
)

// VehicleOption configures a Vehicle
type VehicleOption func(*Vehicle)

// WithStepDelay sets the pause taken after each successful move
func WithStepDelay(d time.Duration) VehicleOption {
	return func(v *Vehicle) {
		v.stepDelay = d
	}
}

// WithSleep replaces time.Sleep for the pacing pause
func WithSleep(fn func(time.Duration)) VehicleOption {
	return func(v *Vehicle) {
		if fn != nil {
			v.sleep = fn
		}
	}
}

// Vehicle is the radio car. Its position is always inside the grid.
type Vehicle struct {
	grid      *Grid
	pos       Position
	heading   Orientation
	path      []Command
	pathSet   bool
	history   []Step
	stepDelay time.Duration
	sleep     func(time.Duration)
}

// NewVehicle places a car on grid at pos facing heading. It does not mark the grid.
func NewVehicle(grid *Grid, pos Position, heading Orientation, opts ...VehicleOption) (*Vehicle, error) {
	if grid == nil {
		return nil, fmt.Errorf("vehicle requires a grid")
	}
	if !heading.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOrientation, uint8(heading))
	}
	if !grid.Contains(pos) {
		return nil, fmt.Errorf("%w: %s on a %dx%d grid", ErrStartOutOfBounds, pos, grid.Height(), grid.Width())
	}

	v := &Vehicle{
		grid:      grid,
		pos:       pos,
		heading:   heading,
		history:   []Step{},
		stepDelay: DefaultStepDelay,
		sleep:     time.Sleep,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Position returns the car's internal (top-indexed) position
func (v *Vehicle) Position() Position {
	return v.pos
}

// Orientation returns the car's current heading
func (v *Vehicle) Orientation() Orientation {
	return v.heading
}

// SetPath assigns the command list. It can only be called once.
func (v *Vehicle) SetPath(path []Command) error {
	if v.pathSet {
		return ErrPathAssigned
	}
	v.path = append([]Command(nil), path...)
	v.pathSet = true
	return nil
}

// Path returns a copy of the assigned path
func (v *Vehicle) Path() []Command {
	return append([]Command(nil), v.path...)
}

// History returns every command executed so far, including the one that failed
func (v *Vehicle) History() []Step {
	return append([]Step(nil), v.history...)
}

// Forward moves one cell in the heading direction
func (v *Vehicle) Forward() error {
	return v.move(Forward)
}

// Backward moves one cell against the heading direction
func (v *Vehicle) Backward() error {
	return v.move(Backward)
}

// TurnRight rotates the heading clockwise without moving
func (v *Vehicle) TurnRight() error {
	return v.turn(TurnRight)
}

// TurnLeft rotates the heading counter-clockwise without moving
func (v *Vehicle) TurnLeft() error {
	return v.turn(TurnLeft)
}

// Execute dispatches a single command
func (v *Vehicle) Execute(cmd Command) error {
	switch cmd {
	case Forward:
		return v.Forward()
	case Backward:
		return v.Backward()
	case TurnLeft:
		return v.TurnLeft()
	case TurnRight:
		return v.TurnRight()
	}
	return fmt.Errorf("%w: %d", ErrInvalidCommand, uint8(cmd))
}

// Run executes the assigned path in order and stops at the first error
func (v *Vehicle) Run() error {
	for _, cmd := range v.path {
		if err := v.Execute(cmd); err != nil {
			return err
		}
	}
	return nil
}

// move checks the destination before touching any state, so a failed move leaves
// the car where it was.
func (v *Vehicle) move(cmd Command) error {
	delta, err := cmd.Step(v.heading)
	if err != nil {
		return err
	}

	from := v.pos
	to := from.Add(delta)
	if !v.grid.Contains(to) {
		v.record(cmd, from, from, false)
		return &BoundaryError{
			Command: cmd,
			Heading: v.heading,
			From:    from,
			To:      to,
			Height:  v.grid.Height(),
			Width:   v.grid.Width(),
		}
	}

	v.pos = to
	v.grid.Mark(to)
	v.record(cmd, from, to, true)
	if err := v.grid.Render(); err != nil {
		return fmt.Errorf("render after %s: %w", cmd.Name(), err)
	}
	if v.stepDelay > 0 {
		v.sleep(v.stepDelay)
	}
	return nil
}

func (v *Vehicle) turn(cmd Command) error {
	var (
		next Orientation
		err  error
	)
	if cmd == TurnRight {
		next, err = v.heading.Right()
	} else {
		next, err = v.heading.Left()
	}
	if err != nil {
		return err
	}

	v.heading = next
	v.record(cmd, v.pos, v.pos, true)
	return nil
}

func (v *Vehicle) record(cmd Command, from, to Position, success bool) {
	v.history = append(v.history, Step{
		Number:  len(v.history) + 1,
		Command: cmd,
		From:    from,
		To:      to,
		Heading: v.heading,
		Success: success,
	})
}
