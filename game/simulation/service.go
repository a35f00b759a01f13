package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wricardo/radio-car-sim/game/engine"
	"github.com/wricardo/radio-car-sim/game/render"
	"github.com/wricardo/radio-car-sim/validate"
)

var (
	// ErrScenarioNotFound is returned by stores for unknown scenario names
	ErrScenarioNotFound = errors.New("scenario not found")
	ErrInvalidScenario  = errors.New("invalid scenario")
	ErrRunNotFound      = errors.New("run not found")

	// ErrGridTooLarge and ErrPathTooLong are returned for requests over the service limits
	ErrGridTooLarge = errors.New("grid too large")
	ErrPathTooLong  = errors.New("path too long")
)

// Default service limits
const (
	DefaultMaxCells      = 10000
	DefaultMaxPathLength = 1000
)

// Service runs scripted simulations and manages stored scenarios
type Service interface {
	// Runs
	Run(ctx context.Context, req Request) (*Result, error)
	RunScenario(ctx context.Context, name, channel string) (*Result, error)
	Validate(ctx context.Context, req Request) (*Validation, error)
	GetRun(ctx context.Context, id string) (*Result, error)
	ListRuns(ctx context.Context) ([]*RunSummary, error)

	// Scenarios
	ListScenarios(ctx context.Context) ([]*ScenarioInfo, error)
	LoadScenario(ctx context.Context, name string) (*Scenario, error)
	SaveScenario(ctx context.Context, name string, sc *Scenario) error
}

// ScenarioStore handles scenario persistence
type ScenarioStore interface {
	LoadScenario(name string) (*Scenario, error)
	ListScenarios() ([]*ScenarioInfo, error)
	SaveScenario(name string, sc *Scenario) error
}

// RunHistory keeps finished runs for later lookup
type RunHistory interface {
	Add(result *Result)
	Get(id string) (*Result, error)
	List() []*Result
}

// Streamer fans frames and events of a run out to live viewers
type Streamer interface {
	Renderer(channel string) engine.Renderer
	Publish(channel, event string, data interface{})
}

// Stream events
const (
	EventRunStarted  = "run_started"
	EventRunFinished = "run_finished"
)

// ServiceOption configures the service
type ServiceOption func(*serviceImpl)

// WithServiceLogger sets the service logger
func WithServiceLogger(logger zerolog.Logger) ServiceOption {
	return func(s *serviceImpl) {
		s.logger = logger
	}
}

// WithStreamer enables live streaming for requests that name a channel
func WithStreamer(streamer Streamer) ServiceOption {
	return func(s *serviceImpl) {
		s.streamer = streamer
	}
}

// WithHistory records every finished run in history
func WithHistory(history RunHistory) ServiceOption {
	return func(s *serviceImpl) {
		s.history = history
	}
}

// WithRunStepDelay sets the pacing pause used by service runs (default none)
func WithRunStepDelay(d time.Duration) ServiceOption {
	return func(s *serviceImpl) {
		s.stepDelay = d
	}
}

// WithLimits bounds the grid size and path length a request may ask for.
// Zero leaves that dimension unbounded.
func WithLimits(maxCells, maxPathLength int) ServiceOption {
	return func(s *serviceImpl) {
		s.maxCells = maxCells
		s.maxPathLength = maxPathLength
	}
}

// WithClock replaces time.Now and time.Sleep
func WithClock(now func() time.Time, sleep func(time.Duration)) ServiceOption {
	return func(s *serviceImpl) {
		if now != nil {
			s.now = now
		}
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// serviceImpl implements the Service interface
type serviceImpl struct {
	scenarios ScenarioStore
	streamer  Streamer
	history   RunHistory
	logger    zerolog.Logger
	stepDelay time.Duration
	now       func() time.Time
	sleep     func(time.Duration)

	maxCells      int
	maxPathLength int

	// only one simulation exists at a time
	mu sync.Mutex
}

// NewService creates a new simulation service
func NewService(scenarios ScenarioStore, opts ...ServiceOption) Service {
	s := &serviceImpl{
		scenarios:     scenarios,
		logger:        zerolog.Nop(),
		now:           time.Now,
		sleep:         time.Sleep,
		maxCells:      DefaultMaxCells,
		maxPathLength: DefaultMaxPathLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes a scripted simulation. Validation and crash outcomes are
// reported in the Result; the error is reserved for requests that could not run.
func (s *serviceImpl) Run(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.run(req, ""), nil
}

// RunScenario loads a stored scenario and runs it
func (s *serviceImpl) RunScenario(ctx context.Context, name, channel string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sc, err := s.LoadScenario(ctx, name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.run(sc.Request(channel), name), nil
}

func (s *serviceImpl) run(req Request, scenario string) *Result {
	result := &Result{
		ID:        uuid.NewString(),
		Scenario:  scenario,
		Channel:   req.Channel,
		StartedAt: s.now(),
	}
	logger := s.logger.With().Str("run_id", result.ID).Logger()

	recorder := render.NewRecorder()
	var renderer engine.Renderer = recorder
	if s.streamer != nil && req.Channel != "" {
		renderer = render.Multi(recorder, s.streamer.Renderer(req.Channel))
		s.streamer.Publish(req.Channel, EventRunStarted, map[string]string{"id": result.ID, "scenario": scenario})
	}

	source := &limitedSource{
		lines:         NewScriptSource(req.Lines()...),
		maxCells:      s.maxCells,
		maxPathLength: s.maxPathLength,
	}
	sim := New(source, renderer,
		WithLogger(logger),
		WithStepDelay(s.stepDelay),
		WithSleep(s.sleep),
	)
	logger.Info().Str("scenario", scenario).Msg("run started")
	report, err := sim.Run()

	result.Report = report
	result.Frames = recorder.Frames()
	result.FinishedAt = s.now()

	if err != nil {
		result.StopReasonCode = ReasonCode(err)
		result.Message = FailureMessage(err)
		var serr *StageError
		if errors.As(err, &serr) {
			result.Stage = serr.Stage
		}
		if report != nil && errors.Is(err, engine.ErrBoundaryViolation) {
			result.StoppedOnStep = len(report.Steps)
		}
	} else {
		result.Success = true
		result.Message = FinalPosition(report)
	}

	if s.history != nil {
		s.history.Add(result)
	}
	if s.streamer != nil && req.Channel != "" {
		s.streamer.Publish(req.Channel, EventRunFinished, result)
	}
	logger.Info().Bool("success", result.Success).Str("reason", result.StopReasonCode).Msg("run finished")
	return result
}

// Validate checks every line of req without building a grid
func (s *serviceImpl) Validate(ctx context.Context, req Request) (*Validation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &Validation{}
	fail := func(stage Stage, err error) (*Validation, error) {
		out.Stage = stage
		out.StopReasonCode = ReasonCode(err)
		out.Message = FailureMessage(err)
		return out, nil
	}

	dims, err := validate.ValidateDimensions(validate.Tokens(req.Dimensions))
	if err != nil {
		return fail(StageDimensions, err)
	}
	if err := checkCells(dims, s.maxCells); err != nil {
		return fail(StageDimensions, err)
	}
	out.Dimensions = &dims

	start, err := validate.ValidateVehicleStart(validate.Tokens(req.Start), dims.Height, dims.Width)
	if err != nil {
		return fail(StageStart, err)
	}
	out.Start = &start

	internal := engine.Position{Row: engine.InternalRow(dims.Height, start.Row), Col: start.Col}
	if internal.Row < 0 || internal.Row >= dims.Height || internal.Col < 0 || internal.Col >= dims.Width {
		return fail(StageStart, fmt.Errorf("%w: %s", engine.ErrStartOutOfBounds, internal))
	}

	path, err := validate.ValidatePath(validate.Tokens(req.Path))
	if err != nil {
		return fail(StagePath, err)
	}
	if err := checkPathLength(len(path), s.maxPathLength); err != nil {
		return fail(StagePath, err)
	}
	out.Path = path
	out.Valid = true
	return out, nil
}

// limitedSource rejects oversized grids and paths before the simulation
// allocates or runs them. Lines that do not parse pass through so the
// validators report them.
type limitedSource struct {
	lines         LineSource
	maxCells      int
	maxPathLength int
}

func (l *limitedSource) NextLine(stage Stage) (string, error) {
	line, err := l.lines.NextLine(stage)
	if err != nil {
		return line, err
	}

	switch stage {
	case StageDimensions:
		if dims, verr := validate.ValidateDimensions(validate.Tokens(line)); verr == nil {
			if err := checkCells(dims, l.maxCells); err != nil {
				return "", err
			}
		}
	case StagePath:
		if err := checkPathLength(len(validate.Tokens(line)), l.maxPathLength); err != nil {
			return "", err
		}
	}
	return line, nil
}

func checkCells(dims validate.Dimensions, maxCells int) error {
	if maxCells <= 0 {
		return nil
	}
	if dims.Height > maxCells || (dims.Width > 0 && dims.Height > maxCells/dims.Width) || dims.Width > maxCells {
		return fmt.Errorf("%w: %dx%d, limit is %d cells", ErrGridTooLarge, dims.Height, dims.Width, maxCells)
	}
	return nil
}

func checkPathLength(n, maxPathLength int) error {
	if maxPathLength > 0 && n > maxPathLength {
		return fmt.Errorf("%w: %d commands, limit is %d", ErrPathTooLong, n, maxPathLength)
	}
	return nil
}

// GetRun returns a finished run by id
func (s *serviceImpl) GetRun(ctx context.Context, id string) (*Result, error) {
	if s.history == nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return s.history.Get(id)
}

// ListRuns summarises the remembered runs, newest first
func (s *serviceImpl) ListRuns(ctx context.Context) ([]*RunSummary, error) {
	summaries := []*RunSummary{}
	if s.history == nil {
		return summaries, nil
	}
	for _, result := range s.history.List() {
		summaries = append(summaries, result.Summary())
	}
	return summaries, nil
}

// ListScenarios returns all stored scenarios
func (s *serviceImpl) ListScenarios(ctx context.Context) ([]*ScenarioInfo, error) {
	if s.scenarios == nil {
		return []*ScenarioInfo{}, nil
	}
	return s.scenarios.ListScenarios()
}

// LoadScenario loads a stored scenario by name
func (s *serviceImpl) LoadScenario(ctx context.Context, name string) (*Scenario, error) {
	if s.scenarios == nil {
		return nil, fmt.Errorf("%w: %s", ErrScenarioNotFound, name)
	}
	sc, err := s.scenarios.LoadScenario(name)
	if err != nil {
		if errors.Is(err, ErrScenarioNotFound) {
			return nil, s.notFound(name, err)
		}
		return nil, fmt.Errorf("failed to load scenario %s: %w", name, err)
	}
	return sc, nil
}

// SaveScenario validates and stores a scenario
func (s *serviceImpl) SaveScenario(ctx context.Context, name string, sc *Scenario) error {
	if s.scenarios == nil {
		return errors.New("no scenario store configured")
	}
	if sc == nil {
		return errors.New("scenario is required")
	}
	v, err := s.Validate(ctx, sc.Request(""))
	if err != nil {
		return err
	}
	if !v.Valid {
		return fmt.Errorf("%w %s: %s: %s", ErrInvalidScenario, name, v.Stage, v.Message)
	}
	return s.scenarios.SaveScenario(name, sc)
}

// notFound lists the available scenario ids next to the lookup failure
func (s *serviceImpl) notFound(name string, err error) error {
	infos, listErr := s.scenarios.ListScenarios()
	if listErr == nil && len(infos) > 0 {
		ids := make([]string, 0, len(infos))
		for _, info := range infos {
			ids = append(ids, info.ScenarioID)
		}
		return fmt.Errorf("%w. Available scenarios: %v", err, ids)
	}
	return fmt.Errorf("%w. Use /api/scenarios to list available scenarios", err)
}
