package simulation

import (
	"errors"

	"github.com/wricardo/radio-car-sim/game/engine"
	"github.com/wricardo/radio-car-sim/validate"
)

// Process exit codes
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitSetup    = 2
	ExitBoundary = 3
)

// Stop reason codes reported alongside validate.Reason values
const (
	ReasonBoundaryViolation = "boundary_violation"
	ReasonStartOutOfBounds  = "start_out_of_bounds"
	ReasonLineTooLong       = "line_too_long"
	ReasonGridTooLarge      = "grid_too_large"
	ReasonPathTooLong       = "path_too_long"
	ReasonInternal          = "internal_error"
)

// ExitCode maps a run error to the process exit code
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, engine.ErrBoundaryViolation):
		return ExitBoundary
	case isSetupError(err):
		return ExitSetup
	}
	return ExitFailure
}

// ReasonCode returns a machine friendly code for a run error, "" for nil
func ReasonCode(err error) string {
	if err == nil {
		return ""
	}
	var verr *validate.Error
	switch {
	case errors.As(err, &verr):
		return string(verr.Reason)
	case errors.Is(err, engine.ErrBoundaryViolation):
		return ReasonBoundaryViolation
	case errors.Is(err, engine.ErrStartOutOfBounds):
		return ReasonStartOutOfBounds
	case errors.Is(err, ErrLineTooLong):
		return ReasonLineTooLong
	case errors.Is(err, ErrGridTooLarge), errors.Is(err, engine.ErrInvalidDimensions):
		return ReasonGridTooLarge
	case errors.Is(err, ErrPathTooLong):
		return ReasonPathTooLong
	}
	return ReasonInternal
}

func isSetupError(err error) bool {
	var verr *validate.Error
	return errors.As(err, &verr) ||
		errors.Is(err, engine.ErrStartOutOfBounds) ||
		errors.Is(err, engine.ErrInvalidDimensions) ||
		errors.Is(err, ErrLineTooLong) ||
		errors.Is(err, ErrGridTooLarge) ||
		errors.Is(err, ErrPathTooLong)
}
