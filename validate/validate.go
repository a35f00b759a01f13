// Package validate checks the three lines of user input a simulation needs:
// grid dimensions, the car's starting state and the command path.
//
// Every validator is a pure function. It returns the parsed value or a
// *Error whose Reason tells the caller which rule was broken:
//
//	dims, err := validate.ValidateDimensions(validate.Tokens("5 5"))
//	if errors.Is(err, validate.ErrNotAnInteger) {
//		// ...
//	}
package validate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wricardo/radio-car-sim/game/engine"
)

// Reason identifies the validation rule an input broke
type Reason string

const (
	WrongArgumentCount   Reason = "wrong_argument_count"
	NotAnInteger         Reason = "not_an_integer"
	NegativeValue        Reason = "negative_value"
	OutOfRange           Reason = "out_of_range"
	InvalidOrientation   Reason = "invalid_orientation"
	NumericToken         Reason = "numeric_token"
	InvalidCommandLetter Reason = "invalid_command_letter"
)

// Error is returned by every validator
type Error struct {
	Reason  Reason
	Token   string // offending token, empty for count errors
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error carrying the same Reason, so the sentinels below work with errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Reason == e.Reason
}

var (
	ErrWrongArgumentCount   = &Error{Reason: WrongArgumentCount, Message: "wrong number of arguments"}
	ErrNotAnInteger         = &Error{Reason: NotAnInteger, Message: "not an integer"}
	ErrNegativeValue        = &Error{Reason: NegativeValue, Message: "negative value"}
	ErrOutOfRange           = &Error{Reason: OutOfRange, Message: "out of range"}
	ErrInvalidOrientation   = &Error{Reason: InvalidOrientation, Message: "invalid orientation"}
	ErrNumericToken         = &Error{Reason: NumericToken, Message: "numeric token in path"}
	ErrInvalidCommandLetter = &Error{Reason: InvalidCommandLetter, Message: "invalid command letter"}
)

// Dimensions is a validated grid size
type Dimensions struct {
	Height int `json:"height"`
	Width  int `json:"width"`
}

// Start is a validated starting state. Row is counted from the bottom edge.
type Start struct {
	Row         int                `json:"row"`
	Col         int                `json:"col"`
	Orientation engine.Orientation `json:"orientation"`
}

// Tokens splits an input line on whitespace
func Tokens(line string) []string {
	return strings.Fields(line)
}

// ValidateDimensions accepts exactly two non-negative integers: height then width
func ValidateDimensions(tokens []string) (Dimensions, error) {
	switch {
	case len(tokens) > 2:
		return Dimensions{}, countError("Too many arguments! Only input two numbers.")
	case len(tokens) < 2:
		return Dimensions{}, countError("Too few arguments! Must input two numbers.")
	}

	values := make([]int, 0, 2)
	for _, tok := range tokens {
		n, err := strconv.Atoi(tok)
		if err != nil {
			return Dimensions{}, &Error{Reason: NotAnInteger, Token: tok, Message: "Dimensions must be integers!"}
		}
		values = append(values, n)
	}

	for i, n := range values {
		if n < 0 {
			return Dimensions{}, &Error{Reason: NegativeValue, Token: tokens[i], Message: "Integers must be positive!"}
		}
	}

	return Dimensions{Height: values[0], Width: values[1]}, nil
}

// ValidateVehicleStart accepts "row col orientation". Both coordinates are checked
// against the larger grid dimension, inclusive; placing the car on the grid is the
// engine's job.
func ValidateVehicleStart(tokens []string, height, width int) (Start, error) {
	switch {
	case len(tokens) > 3:
		return Start{}, countError("Too many arguments! Input two numbers and a letter.")
	case len(tokens) < 3:
		return Start{}, countError("Too few arguments!")
	}

	limit := max(height, width)
	coords := make([]int, 0, 2)
	for _, tok := range tokens[:2] {
		n, err := strconv.Atoi(tok)
		if err != nil {
			return Start{}, &Error{Reason: NotAnInteger, Token: tok, Message: "Invalid input! First two arguments must be numbers."}
		}
		if n < 0 || n > limit {
			return Start{}, &Error{Reason: OutOfRange, Token: tok, Message: "Start index out of range!"}
		}
		coords = append(coords, n)
	}

	heading, ok := engine.ParseOrientation(tokens[2])
	if !ok {
		return Start{}, &Error{Reason: InvalidOrientation, Token: tokens[2], Message: "Invalid orientation! Must be N, E, S, W"}
	}

	return Start{Row: coords[0], Col: coords[1], Orientation: heading}, nil
}

// ValidatePath accepts a non-empty list of F, B, L and R tokens in any case
func ValidatePath(tokens []string) ([]engine.Command, error) {
	if len(tokens) == 0 {
		return nil, countError("Path is empty! Input at least one of (F, B, R, L).")
	}

	path := make([]engine.Command, 0, len(tokens))
	for _, tok := range tokens {
		if n, err := strconv.Atoi(tok); err == nil {
			return nil, &Error{Reason: NumericToken, Token: tok, Message: fmt.Sprintf("%d is a number! Only (F, B, R, L) allowed.", n)}
		}
		cmd, ok := engine.ParseCommand(tok)
		if !ok {
			return nil, &Error{Reason: InvalidCommandLetter, Token: tok, Message: "Invalid input! Only (F, B, R, L) allowed."}
		}
		path = append(path, cmd)
	}
	return path, nil
}

func countError(msg string) *Error {
	return &Error{Reason: WrongArgumentCount, Message: msg}
}
