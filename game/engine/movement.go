package engine

import "fmt"

// forwardStep returns the unit step a Forward command takes for heading o
func forwardStep(o Orientation) (Position, error) {
	switch o {
	case North:
		return Position{Row: -1}, nil
	case South:
		return Position{Row: 1}, nil
	case East:
		return Position{Col: 1}, nil
	case West:
		return Position{Col: -1}, nil
	}
	return Position{}, fmt.Errorf("%w: %d", ErrInvalidOrientation, uint8(o))
}

// Step returns the unit step the command takes for heading o. Turns do not move.
func (c Command) Step(o Orientation) (Position, error) {
	delta, err := forwardStep(o)
	if err != nil {
		return Position{}, err
	}

	switch c {
	case Forward:
		return delta, nil
	case Backward:
		return delta.Neg(), nil
	case TurnLeft, TurnRight:
		return Position{}, nil
	}
	return Position{}, fmt.Errorf("%w: %d", ErrInvalidCommand, uint8(c))
}

// Right returns the heading after a right turn: S -> W -> N -> E -> S
func (o Orientation) Right() (Orientation, error) {
	switch o {
	case South:
		return West, nil
	case West:
		return North, nil
	case North:
		return East, nil
	case East:
		return South, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrInvalidOrientation, uint8(o))
}

// Left returns the heading after a left turn: S -> E -> N -> W -> S
func (o Orientation) Left() (Orientation, error) {
	switch o {
	case South:
		return East, nil
	case East:
		return North, nil
	case North:
		return West, nil
	case West:
		return South, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrInvalidOrientation, uint8(o))
}
