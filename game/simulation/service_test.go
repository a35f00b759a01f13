package simulation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/radio-car-sim/game/engine"
)

type memoryStore struct {
	mu        sync.Mutex
	scenarios map[string]*Scenario
}

func newMemoryStore() *memoryStore {
	return &memoryStore{scenarios: map[string]*Scenario{
		"square": {Name: "Square", Dimensions: "5 5", Start: "4 2 S", Path: "F F R F"},
		"crash":  {Name: "Crash", Dimensions: "5 5", Start: "0 0 S", Path: "F F R F"},
	}}
}

func (m *memoryStore) LoadScenario(name string) (*Scenario, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc, ok := m.scenarios[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrScenarioNotFound, name)
	}
	return sc, nil
}

func (m *memoryStore) ListScenarios() ([]*ScenarioInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	infos := make([]*ScenarioInfo, 0, len(m.scenarios))
	for id, sc := range m.scenarios {
		infos = append(infos, NewScenarioInfo(id, sc))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ScenarioID < infos[j].ScenarioID })
	return infos, nil
}

func (m *memoryStore) SaveScenario(name string, sc *Scenario) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scenarios[name] = sc
	return nil
}

type event struct {
	channel string
	name    string
	data    interface{}
}

type fakeStreamer struct {
	mu      sync.Mutex
	renders map[string]int
	events  []event
}

func newFakeStreamer() *fakeStreamer {
	return &fakeStreamer{renders: map[string]int{}}
}

func (f *fakeStreamer) Renderer(channel string) engine.Renderer {
	return engine.RendererFunc(func(*engine.Grid) error {
		f.mu.Lock()
		f.renders[channel]++
		f.mu.Unlock()
		return nil
	})
}

func (f *fakeStreamer) Publish(channel, name string, data interface{}) {
	f.mu.Lock()
	f.events = append(f.events, event{channel, name, data})
	f.mu.Unlock()
}

func fixedClock() (func() time.Time, func(time.Duration)) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time { return t0 }, func(time.Duration) {}
}

func TestServiceRunSuccess(t *testing.T) {
	svc := NewService(newMemoryStore(), WithClock(fixedClock()))

	result, err := svc.Run(context.Background(), Request{Dimensions: "5 5", Start: "4 2 S", Path: "F F R F"})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.NotEmpty(t, result.ID)
	assert.Empty(t, result.StopReasonCode)
	assert.Equal(t, "Position of car is (2, 1), heading W.", result.Message)
	require.NotNil(t, result.Report)
	assert.Len(t, result.Report.Steps, 4)
	assert.Len(t, result.Frames, 5)
}

func TestServiceRunFailures(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		stage   Stage
		reason  string
		message string
		stopped int
	}{
		{
			name:    "crash",
			req:     Request{Dimensions: "5 5", Start: "0 0 S", Path: "F F R F"},
			stage:   StageExecute,
			reason:  ReasonBoundaryViolation,
			message: "Car crashed into the wall. Simulation over",
			stopped: 1,
		},
		{
			name:    "bad dimensions",
			req:     Request{Dimensions: "5", Start: "0 0 S", Path: "F"},
			stage:   StageDimensions,
			reason:  "wrong_argument_count",
			message: "Too few arguments! Must input two numbers.",
		},
		{
			name:    "bad path",
			req:     Request{Dimensions: "5 5", Start: "0 0 N", Path: "F 3"},
			stage:   StagePath,
			reason:  "numeric_token",
			message: "3 is a number! Only (F, B, R, L) allowed.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(nil)
			result, err := svc.Run(context.Background(), tt.req)
			require.NoError(t, err)

			assert.False(t, result.Success)
			assert.Equal(t, tt.stage, result.Stage)
			assert.Equal(t, tt.reason, result.StopReasonCode)
			assert.Equal(t, tt.message, result.Message)
			assert.Equal(t, tt.stopped, result.StoppedOnStep)
		})
	}
}

func TestServiceRunLimits(t *testing.T) {
	longPath := strings.TrimSpace(strings.Repeat("L ", DefaultMaxPathLength+1))

	tests := []struct {
		name   string
		req    Request
		stage  Stage
		reason string
	}{
		{"max int height", Request{Dimensions: "9223372036854775807 1", Start: "0 0 N", Path: "F"}, StageDimensions, ReasonGridTooLarge},
		{"huge width", Request{Dimensions: "1 100000000000", Start: "0 0 N", Path: "F"}, StageDimensions, ReasonGridTooLarge},
		{"just over", Request{Dimensions: "101 100", Start: "0 0 N", Path: "F"}, StageDimensions, ReasonGridTooLarge},
		{"long path", Request{Dimensions: "2 2", Start: "0 0 N", Path: longPath}, StagePath, ReasonPathTooLong},
		{"bad path still reported", Request{Dimensions: "2 2", Start: "0 0 N", Path: "F Q"}, StagePath, "invalid_command_letter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewService(nil).Run(context.Background(), tt.req)
			require.NoError(t, err)

			assert.False(t, result.Success)
			assert.Equal(t, tt.stage, result.Stage)
			assert.Equal(t, tt.reason, result.StopReasonCode)
		})
	}

	result, err := NewService(nil).Run(context.Background(), Request{Dimensions: "100 100", Start: "0 0 N", Path: "F"})
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestServiceRunUnbounded(t *testing.T) {
	svc := NewService(nil, WithLimits(0, 0))
	longPath := strings.TrimSpace(strings.Repeat("L ", DefaultMaxPathLength+1))

	result, err := svc.Run(context.Background(), Request{Dimensions: "2 2", Start: "0 0 N", Path: longPath})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, result.Report.Steps, DefaultMaxPathLength+1)

	// the engine still refuses grids it cannot allocate
	result, err = svc.Run(context.Background(), Request{Dimensions: "9223372036854775807 1", Start: "0 0 N", Path: "F"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, StageDimensions, result.Stage)
	assert.Equal(t, ReasonGridTooLarge, result.StopReasonCode)
}

func TestServiceRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewService(nil).Run(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestServiceStreamsToChannel(t *testing.T) {
	streamer := newFakeStreamer()
	svc := NewService(newMemoryStore(), WithStreamer(streamer))

	result, err := svc.RunScenario(context.Background(), "square", "abc")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "square", result.Scenario)
	assert.Equal(t, "abc", result.Channel)

	assert.Equal(t, len(result.Frames), streamer.renders["abc"])
	require.Len(t, streamer.events, 2)
	assert.Equal(t, EventRunStarted, streamer.events[0].name)
	assert.Equal(t, EventRunFinished, streamer.events[1].name)
	assert.Same(t, result, streamer.events[1].data)
}

func TestServiceNoChannelNoStream(t *testing.T) {
	streamer := newFakeStreamer()
	svc := NewService(nil, WithStreamer(streamer))

	_, err := svc.Run(context.Background(), Request{Dimensions: "2 2", Start: "0 0 N", Path: "F"})
	require.NoError(t, err)
	assert.Empty(t, streamer.events)
	assert.Empty(t, streamer.renders)
}

type sliceHistory struct {
	mu      sync.Mutex
	results []*Result
}

func (h *sliceHistory) Add(result *Result) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.results = append([]*Result{result}, h.results...)
}

func (h *sliceHistory) Get(id string) (*Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.results {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
}

func (h *sliceHistory) List() []*Result {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Result(nil), h.results...)
}

func TestServiceRecordsHistory(t *testing.T) {
	svc := NewService(newMemoryStore(), WithHistory(&sliceHistory{}), WithClock(fixedClock()))
	ctx := context.Background()

	ok, err := svc.RunScenario(ctx, "square", "")
	require.NoError(t, err)
	crash, err := svc.RunScenario(ctx, "crash", "")
	require.NoError(t, err)

	got, err := svc.GetRun(ctx, ok.ID)
	require.NoError(t, err)
	assert.Same(t, ok, got)

	runs, err := svc.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, crash.ID, runs[0].ID)
	assert.Equal(t, ReasonBoundaryViolation, runs[0].StopReasonCode)
	assert.Equal(t, 1, runs[0].Steps)
	assert.Equal(t, ok.ID, runs[1].ID)
	assert.True(t, runs[1].Success)
	assert.Equal(t, 4, runs[1].Steps)
	assert.Equal(t, "square", runs[1].Scenario)
}

func TestServiceWithoutHistory(t *testing.T) {
	svc := NewService(nil)

	_, err := svc.GetRun(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrRunNotFound)

	runs, err := svc.ListRuns(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestServiceRunScenarioNotFound(t *testing.T) {
	svc := NewService(newMemoryStore())
	_, err := svc.RunScenario(context.Background(), "missing", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrScenarioNotFound)
	assert.Contains(t, err.Error(), "Available scenarios: [crash square]")
}

func TestServiceValidate(t *testing.T) {
	svc := NewService(nil)
	ctx := context.Background()

	v, err := svc.Validate(ctx, Request{Dimensions: "5 5", Start: "0 0 S", Path: "F F R F"})
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, []engine.Command{engine.Forward, engine.Forward, engine.TurnRight, engine.Forward}, v.Path)

	v, err = svc.Validate(ctx, Request{Dimensions: "3 6", Start: "0 6 N", Path: "F"})
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, StageStart, v.Stage)
	assert.Equal(t, ReasonStartOutOfBounds, v.StopReasonCode)

	v, err = svc.Validate(ctx, Request{Dimensions: "5 5", Start: "0 0 X", Path: "F"})
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, "invalid_orientation", v.StopReasonCode)
	assert.NotNil(t, v.Dimensions)
	assert.Nil(t, v.Start)

	v, err = svc.Validate(ctx, Request{Dimensions: "1 100000000000", Start: "0 0 N", Path: "F"})
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, StageDimensions, v.Stage)
	assert.Equal(t, ReasonGridTooLarge, v.StopReasonCode)
	assert.Nil(t, v.Dimensions)

	v, err = NewService(nil, WithLimits(0, 3)).Validate(ctx, Request{Dimensions: "2 2", Start: "0 0 N", Path: "L L L L"})
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, StagePath, v.Stage)
	assert.Equal(t, ReasonPathTooLong, v.StopReasonCode)
}

func TestServiceSaveScenario(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	err := svc.SaveScenario(ctx, "bad", &Scenario{Name: "Bad", Dimensions: "5 5", Start: "0 0 N", Path: "F Q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid scenario bad")

	good := &Scenario{Name: "Good", Dimensions: "2 2", Start: "0 0 N", Path: "F"}
	require.NoError(t, svc.SaveScenario(ctx, "good", good))

	loaded, err := svc.LoadScenario(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, good, loaded)

	infos, err := svc.ListScenarios(ctx)
	require.NoError(t, err)
	assert.Len(t, infos, 3)
}

func TestServiceRunsAreSerialised(t *testing.T) {
	var (
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	sleep := func(time.Duration) {
		mu.Lock()
		active++
		if active > maxSeen {
			maxSeen = active
		}
		mu.Unlock()
		time.Sleep(time.Millisecond)
		mu.Lock()
		active--
		mu.Unlock()
	}
	svc := NewService(nil, WithRunStepDelay(time.Millisecond), WithClock(nil, sleep))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Run(context.Background(), Request{Dimensions: "3 3", Start: "0 0 N", Path: "F F B"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}
