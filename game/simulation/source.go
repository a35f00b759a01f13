package simulation

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// Stage names a step of a simulation run
type Stage string

const (
	StageDimensions Stage = "dimensions"
	StageStart      Stage = "start"
	StagePath       Stage = "path"
	StageExecute    Stage = "execute"
)

// Prompt returns the question asked before reading the line for stage
func (s Stage) Prompt() string {
	switch s {
	case StageDimensions:
		return "Enter dimensions of grid (height width)"
	case StageStart:
		return "Enter starting position and orientation (row col (N S E W))"
	case StagePath:
		return "Enter radio car's path (expressed in F (forward), B (backward), L (left), R (right))"
	}
	return ""
}

// MaxLineLength is the longest input line a ReaderSource accepts
const MaxLineLength = 16 << 20

// ErrLineTooLong is returned for an input line longer than MaxLineLength
var ErrLineTooLong = errors.New("input line too long")

// LineSource supplies one line of input per stage. A missing line is returned
// as "" with a nil error so validation reports it like any other bad input.
type LineSource interface {
	NextLine(stage Stage) (string, error)
}

// ReaderSource reads lines from an io.Reader, announcing each stage first
type ReaderSource struct {
	scanner *bufio.Scanner
	prompt  func(Stage) error
}

// NewReaderSource reads from r. prompt may be nil.
func NewReaderSource(r io.Reader, prompt func(Stage) error) *ReaderSource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineLength)
	return &ReaderSource{
		scanner: scanner,
		prompt:  prompt,
	}
}

func (s *ReaderSource) NextLine(stage Stage) (string, error) {
	if s.prompt != nil {
		if err := s.prompt(stage); err != nil {
			return "", fmt.Errorf("prompt for %s: %w", stage, err)
		}
	}

	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}
	if err := s.scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		if errors.Is(err, bufio.ErrTooLong) {
			return "", fmt.Errorf("%w: %s line exceeds %d bytes", ErrLineTooLong, stage, MaxLineLength)
		}
		return "", fmt.Errorf("read %s: %w", stage, err)
	}
	return "", nil
}

// ScriptSource replays fixed lines in order; it is used for scenarios and API runs
type ScriptSource struct {
	lines []string
	next  int
}

// NewScriptSource returns lines one per call, then empty lines
func NewScriptSource(lines ...string) *ScriptSource {
	return &ScriptSource{lines: lines}
}

func (s *ScriptSource) NextLine(Stage) (string, error) {
	if s.next >= len(s.lines) {
		return "", nil
	}
	line := s.lines[s.next]
	s.next++
	return line, nil
}
