package simulation

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wricardo/radio-car-sim/game/engine"
	"github.com/wricardo/radio-car-sim/validate"
)

// StageError ties a failure to the stage that produced it
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Report describes the car at the end of a run. Row is counted from the bottom edge.
type Report struct {
	Height      int                `json:"height"`
	Width       int                `json:"width"`
	Row         int                `json:"row"`
	Col         int                `json:"col"`
	Orientation engine.Orientation `json:"orientation"`
	Steps       []engine.Step      `json:"steps"`
	Completed   bool               `json:"completed"`
}

// Option configures a Simulation
type Option func(*Simulation)

// WithLogger sets the logger used for run and step events
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Simulation) {
		s.logger = logger
	}
}

// WithStepDelay sets the pause after each successful move
func WithStepDelay(d time.Duration) Option {
	return func(s *Simulation) {
		s.stepDelay = d
	}
}

// WithSleep replaces time.Sleep for the pacing pause
func WithSleep(fn func(time.Duration)) Option {
	return func(s *Simulation) {
		s.sleep = fn
	}
}

// Simulation reads three lines of input, builds the grid and car, and drives the path
type Simulation struct {
	source    LineSource
	renderer  engine.Renderer
	logger    zerolog.Logger
	stepDelay time.Duration
	sleep     func(time.Duration)
}

// New creates a simulation that reads from source and draws through renderer
func New(source LineSource, renderer engine.Renderer, opts ...Option) *Simulation {
	s := &Simulation{
		source:    source,
		renderer:  renderer,
		logger:    zerolog.Nop(),
		stepDelay: engine.DefaultStepDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes one simulation. Every failure comes back as a *StageError. When
// the failure happens after the car was placed, the returned report describes
// the car at the point the run stopped.
func (s *Simulation) Run() (*Report, error) {
	line, err := s.source.NextLine(StageDimensions)
	if err != nil {
		return nil, s.fail(StageDimensions, err)
	}
	dims, err := validate.ValidateDimensions(validate.Tokens(line))
	if err != nil {
		return nil, s.fail(StageDimensions, err)
	}

	grid, err := engine.NewGrid(dims.Height, dims.Width, s.renderer)
	if err != nil {
		return nil, s.fail(StageDimensions, err)
	}
	if err := grid.Render(); err != nil {
		return nil, s.fail(StageDimensions, err)
	}
	s.logger.Debug().Int("height", dims.Height).Int("width", dims.Width).Msg("grid created")

	line, err = s.source.NextLine(StageStart)
	if err != nil {
		return nil, s.fail(StageStart, err)
	}
	start, err := validate.ValidateVehicleStart(validate.Tokens(line), dims.Height, dims.Width)
	if err != nil {
		return nil, s.fail(StageStart, err)
	}

	pos := engine.Position{Row: engine.InternalRow(dims.Height, start.Row), Col: start.Col}
	vehicleOpts := []engine.VehicleOption{engine.WithStepDelay(s.stepDelay)}
	if s.sleep != nil {
		vehicleOpts = append(vehicleOpts, engine.WithSleep(s.sleep))
	}
	car, err := engine.NewVehicle(grid, pos, start.Orientation, vehicleOpts...)
	if err != nil {
		return nil, s.fail(StageStart, err)
	}
	grid.Mark(pos)
	if err := grid.Render(); err != nil {
		return nil, s.fail(StageStart, err)
	}
	s.logger.Debug().Int("row", start.Row).Int("col", start.Col).Stringer("heading", start.Orientation).Msg("car placed")

	line, err = s.source.NextLine(StagePath)
	if err != nil {
		return report(grid, car, false), s.fail(StagePath, err)
	}
	path, err := validate.ValidatePath(validate.Tokens(line))
	if err != nil {
		return report(grid, car, false), s.fail(StagePath, err)
	}
	if err := car.SetPath(path); err != nil {
		return report(grid, car, false), s.fail(StagePath, err)
	}

	s.logger.Info().Int("commands", len(path)).Msg("executing path")
	for _, cmd := range car.Path() {
		err := car.Execute(cmd)
		if err != nil {
			return report(grid, car, false), s.fail(StageExecute, err)
		}
		s.logger.Debug().
			Stringer("command", cmd).
			Stringer("position", car.Position()).
			Stringer("heading", car.Orientation()).
			Msg("step")
	}

	r := report(grid, car, true)
	s.logger.Info().Int("row", r.Row).Int("col", r.Col).Stringer("heading", r.Orientation).Msg("car finished")
	return r, nil
}

func (s *Simulation) fail(stage Stage, err error) error {
	level := zerolog.WarnLevel
	var verr *validate.Error
	if !errors.As(err, &verr) && !errors.Is(err, engine.ErrBoundaryViolation) {
		level = zerolog.ErrorLevel
	}
	s.logger.WithLevel(level).Err(err).Str("stage", string(stage)).Msg("simulation stopped")
	return &StageError{Stage: stage, Err: err}
}

func report(grid *engine.Grid, car *engine.Vehicle, completed bool) *Report {
	pos := car.Position()
	return &Report{
		Height:      grid.Height(),
		Width:       grid.Width(),
		Row:         engine.DisplayRow(grid.Height(), pos.Row),
		Col:         pos.Col,
		Orientation: car.Orientation(),
		Steps:       car.History(),
		Completed:   completed,
	}
}
