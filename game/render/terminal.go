package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/wricardo/radio-car-sim/game/engine"
)

// ColorMode selects when ANSI colours are emitted
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode accepts auto, always or never (case-insensitive). Empty means auto.
func ParseColorMode(s string) (ColorMode, error) {
	switch ColorMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ColorAuto:
		return ColorAuto, nil
	case ColorAlways:
		return ColorAlways, nil
	case ColorNever:
		return ColorNever, nil
	}
	return "", fmt.Errorf("unknown color mode %q (want auto, always or never)", s)
}

// Style names a colour role
type Style int

const (
	StylePlain Style = iota
	StyleLabel
	StylePrompt
	StyleBlank
	StyleTrail
	StyleCar
	StyleError
	StyleSuccess
)

var palette = map[Style]string{
	StyleLabel:   "\x1b[38;5;143m",      // dark khaki
	StylePrompt:  "\x1b[30;48;5;143m",   // black on dark khaki
	StyleBlank:   "\x1b[48;5;58m",       // on dark olive green
	StyleTrail:   "\x1b[46m",            // on cyan
	StyleCar:     "\x1b[1;30;48;5;214m", // bold black on orange
	StyleError:   "\x1b[97;41m",         // on red
	StyleSuccess: "\x1b[30;42m",         // on green
}

const reset = "\x1b[0m"

// Terminal renders grids and messages to a terminal. It implements engine.Renderer.
type Terminal struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
}

// NewTerminal wraps out. In ColorAuto mode colours are used only when out is a
// terminal.
func NewTerminal(out io.Writer, mode ColorMode) *Terminal {
	color := false
	switch mode {
	case ColorAlways:
		color = true
	case ColorNever:
		color = false
	default:
		if f, ok := out.(*os.File); ok {
			color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
	}

	if f, ok := out.(*os.File); ok && color {
		out = colorable.NewColorable(f)
	}

	return &Terminal{out: out, color: color}
}

// Colored reports whether ANSI colours are emitted
func (t *Terminal) Colored() bool {
	return t.color
}

// Paint wraps s in the escape codes for style when colours are enabled
func (t *Terminal) Paint(style Style, s string) string {
	code, ok := palette[style]
	if !t.color || !ok || s == "" {
		return s
	}
	return code + s + reset
}

// Render prints the grid surrounded by blank lines
func (t *Terminal) Render(g *engine.Grid) error {
	frame := draw(g, t.Paint)
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintf(t.out, "\n%s\n", frame)
	return err
}

// PrintFrame prints a frame drawn elsewhere the way Render prints a grid
func (t *Terminal) PrintFrame(frame string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintf(t.out, "\n%s\n", frame)
	return err
}

// Println writes a single styled line
func (t *Terminal) Println(style Style, line string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintln(t.out, t.Paint(style, line))
	return err
}
