package render

import (
	"errors"
	"sync"

	"github.com/wricardo/radio-car-sim/game/engine"
)

// Recorder keeps a plain text frame for every render call
type Recorder struct {
	mu     sync.Mutex
	frames []string
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{frames: []string{}}
}

func (r *Recorder) Render(g *engine.Grid) error {
	frame := Frame(g)
	r.mu.Lock()
	r.frames = append(r.frames, frame)
	r.mu.Unlock()
	return nil
}

// Frames returns the recorded frames in render order
func (r *Recorder) Frames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.frames...)
}

// Last returns the most recent frame, or "" when nothing was rendered
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return ""
	}
	return r.frames[len(r.frames)-1]
}

type multi []engine.Renderer

// Multi fans every render out to all non-nil renderers. Every renderer is
// called even if an earlier one fails; the errors are joined.
func Multi(renderers ...engine.Renderer) engine.Renderer {
	m := make(multi, 0, len(renderers))
	for _, r := range renderers {
		if r != nil {
			m = append(m, r)
		}
	}
	return m
}

func (m multi) Render(g *engine.Grid) error {
	var errs []error
	for _, r := range m {
		if err := r.Render(g); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
