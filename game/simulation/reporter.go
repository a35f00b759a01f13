package simulation

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/wricardo/radio-car-sim/game/engine"
	"github.com/wricardo/radio-car-sim/game/render"
	"github.com/wricardo/radio-car-sim/validate"
)

const defaultTerminalWidth = 80

// Reporter receives the outcome of a run
type Reporter interface {
	Success(r *Report) error
	Failure(err error) error
}

// TerminalReporter prints banners sized to the terminal width
type TerminalReporter struct {
	term  *render.Terminal
	width func() int
}

// NewTerminalReporter prints through t. width may be nil.
func NewTerminalReporter(t *render.Terminal, width func() int) *TerminalReporter {
	if width == nil {
		width = func() int { return defaultTerminalWidth }
	}
	return &TerminalReporter{term: t, width: width}
}

// TerminalWidth returns a width probe for f, falling back to 80 columns when f is not a terminal
func TerminalWidth(f *os.File) func() int {
	return func() int {
		w, _, err := term.GetSize(int(f.Fd()))
		if err != nil || w <= 0 {
			return defaultTerminalWidth
		}
		return w
	}
}

// Welcome prints the greeting shown before the first prompt
func (r *TerminalReporter) Welcome() error {
	stars := strings.Repeat("/*", 27) + "/"
	for _, line := range []string{stars, "--------Welcome to the Radio Car Simulator!------------", stars} {
		if err := r.term.Println(render.StyleLabel, line); err != nil {
			return err
		}
	}
	return nil
}

// Prompt prints the question for stage
func (r *TerminalReporter) Prompt(stage Stage) error {
	return r.term.Println(render.StylePrompt, stage.Prompt())
}

// Success prints the final position banner
func (r *TerminalReporter) Success(rep *Report) error {
	width := r.width()
	line := strings.Repeat("-", width)
	lines := []struct {
		style render.Style
		text  string
	}{
		{render.StylePlain, ""},
		{render.StylePlain, line},
		{render.StyleSuccess, padRight("Car finished successfully!", width)},
		{render.StyleSuccess, padRight(FinalPosition(rep), width)},
		{render.StylePlain, line},
	}
	for _, l := range lines {
		if err := r.term.Println(l.style, l.text); err != nil {
			return err
		}
	}
	return nil
}

// Failure prints the reason a run stopped
func (r *TerminalReporter) Failure(err error) error {
	if err := r.term.Println(render.StyleError, FailureMessage(err)); err != nil {
		return err
	}
	var verr *validate.Error
	if errors.As(err, &verr) {
		return r.term.Println(render.StyleError, "ERROR! Exiting simulation.")
	}
	return nil
}

// FinalPosition formats the position line of the success banner
func FinalPosition(rep *Report) string {
	return fmt.Sprintf("Position of car is (%d, %d), heading %s.", rep.Row, rep.Col, rep.Orientation)
}

// FailureMessage returns the user facing text for a run error
func FailureMessage(err error) string {
	var verr *validate.Error
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, engine.ErrBoundaryViolation):
		return "Car crashed into the wall. Simulation over"
	case errors.Is(err, engine.ErrStartOutOfBounds):
		return "Start index out of range!"
	}
	return err.Error()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
