package simulation

import (
	"strings"
	"time"

	"github.com/wricardo/radio-car-sim/game/engine"
	"github.com/wricardo/radio-car-sim/validate"
)

// Request holds the three raw input lines of a scripted run
type Request struct {
	Dimensions string `json:"dimensions"`
	Start      string `json:"start"`
	Path       string `json:"path"`
	Channel    string `json:"channel,omitempty"` // websocket channel that receives the frames
}

// Lines returns the request in the order a LineSource hands them out
func (r Request) Lines() []string {
	return []string{r.Dimensions, r.Start, r.Path}
}

// Result contains the outcome of a scripted run
type Result struct {
	ID       string `json:"id"`
	Scenario string `json:"scenario,omitempty"`
	Channel  string `json:"channel,omitempty"`
	Success  bool   `json:"success"`

	// Failure diagnostics
	Stage          Stage  `json:"stage,omitempty"`
	StopReasonCode string `json:"stop_reason_code,omitempty"` // validate.Reason value or boundary_violation|start_out_of_bounds|path_too_long|internal_error
	Message        string `json:"message"`
	StoppedOnStep  int    `json:"stopped_on_step,omitempty"` // 1-based index of the command that crashed

	Report *Report  `json:"report,omitempty"`
	Frames []string `json:"frames"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// RunSummary is a Result without its report and frames
type RunSummary struct {
	ID             string    `json:"id"`
	Scenario       string    `json:"scenario,omitempty"`
	Success        bool      `json:"success"`
	StopReasonCode string    `json:"stop_reason_code,omitempty"`
	Message        string    `json:"message"`
	Steps          int       `json:"steps"`
	StartedAt      time.Time `json:"started_at"`
}

// Summary returns the listing view of r
func (r *Result) Summary() *RunSummary {
	summary := &RunSummary{
		ID:             r.ID,
		Scenario:       r.Scenario,
		Success:        r.Success,
		StopReasonCode: r.StopReasonCode,
		Message:        r.Message,
		StartedAt:      r.StartedAt,
	}
	if r.Report != nil {
		summary.Steps = len(r.Report.Steps)
	}
	return summary
}

// Validation is the outcome of checking a request without running it
type Validation struct {
	Valid          bool                 `json:"valid"`
	Stage          Stage                `json:"stage,omitempty"`
	StopReasonCode string               `json:"stop_reason_code,omitempty"`
	Message        string               `json:"message,omitempty"`
	Dimensions     *validate.Dimensions `json:"dimensions,omitempty"`
	Start          *validate.Start      `json:"start,omitempty"`
	Path           []engine.Command     `json:"path,omitempty"`
}

// Scenario is a named, stored set of input lines
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Dimensions  string `json:"dimensions"`
	Start       string `json:"start"`
	Path        string `json:"path"`
}

// Request converts the scenario into a run request
func (s *Scenario) Request(channel string) Request {
	return Request{
		Dimensions: s.Dimensions,
		Start:      s.Start,
		Path:       s.Path,
		Channel:    channel,
	}
}

// ScenarioInfo provides information about a stored scenario
type ScenarioInfo struct {
	Filename    string `json:"filename"`
	ScenarioID  string `json:"scenario_id"` // identifier to use with run and load
	Name        string `json:"name"`
	Description string `json:"description"`
	Dimensions  string `json:"dimensions"`
	PathLength  int    `json:"path_length"`
}

// NewScenarioInfo summarises sc stored under id
func NewScenarioInfo(id string, sc *Scenario) *ScenarioInfo {
	return &ScenarioInfo{
		Filename:    id + ".json",
		ScenarioID:  id,
		Name:        sc.Name,
		Description: sc.Description,
		Dimensions:  sc.Dimensions,
		PathLength:  len(strings.Fields(sc.Path)),
	}
}
