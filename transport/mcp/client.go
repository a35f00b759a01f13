package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/wricardo/radio-car-sim/game/engine"
	"github.com/wricardo/radio-car-sim/game/simulation"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
	logger     zerolog.Logger
}

// Option configures the client
type Option func(*Client)

// WithLogger sets the client logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the HTTP client used for API calls
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			// paced runs take stepDelay per command
			Timeout: 2 * time.Minute,
		},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Radio Car Simulator",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Radio Car Simulator - MCP Interface

This is a thin client that proxies all requests to the REST API server.

A radio controlled car drives on a rectangular grid. Row 0 is the bottom row,
column 0 the left column. The car follows a path of F/B/L/R commands and the
run stops at the first command that would leave the grid.

AVAILABLE TOOLS:
- run_simulation: Run the car from raw input lines (dimensions, start, path)
- run_scenario: Run a stored scenario by id
- list_scenarios: List stored scenarios
- validate_input: Check input lines without running them
- simulator_instructions: Coordinates, commands and failure rules in detail

TIP: pass a channel to stream the frames to /ws?channel=<name> viewers.`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	inputProperties := map[string]interface{}{
		"dimensions": map[string]interface{}{
			"type":        "string",
			"description": "Grid size as 'height width', e.g. '5 5'",
		},
		"start": map[string]interface{}{
			"type":        "string",
			"description": "Starting cell and heading as 'row col orientation', e.g. '0 0 N'. Orientation is one of N, E, S, W",
		},
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Space separated commands: F (forward), B (backward), L (turn left), R (turn right)",
		},
	}

	runProperties := map[string]interface{}{
		"channel": map[string]interface{}{
			"type":        "string",
			"description": "Websocket channel that receives the frames (optional)",
		},
	}
	for k, v := range inputProperties {
		runProperties[k] = v
	}

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_simulation",
		Description: "Run the radio car from three input lines and report the final position or the failure",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: runProperties,
			Required:   []string{"dimensions", "start", "path"},
		},
	}, c.handleRunSimulation)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_scenario",
		Description: "Run a stored scenario",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"scenario": map[string]interface{}{
					"type":        "string",
					"description": "Scenario id as returned by list_scenarios",
				},
				"channel": map[string]interface{}{
					"type":        "string",
					"description": "Websocket channel that receives the frames (optional)",
				},
			},
			Required: []string{"scenario"},
		},
	}, c.handleRunScenario)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_scenarios",
		Description: "List stored scenarios",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListScenarios)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_runs",
		Description: "List recent runs, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListRuns)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_run",
		Description: "Show the steps and final grid of an earlier run",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run id as returned by run_simulation or list_runs",
				},
			},
			Required: []string{"run_id"},
		},
	}, c.handleGetRun)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "validate_input",
		Description: "Validate the three input lines without running the car",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: inputProperties,
			Required:   []string{"dimensions", "start", "path"},
		},
	}, c.handleValidateInput)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "simulator_instructions",
		Description: "Get the coordinate system, command set and failure rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleSimulatorInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	endpoint := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().Str("method", method).Str("url", endpoint).Msg("api call")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func inputRequest(args map[string]interface{}) simulation.Request {
	dims, _ := args["dimensions"].(string)
	start, _ := args["start"].(string)
	path, _ := args["path"].(string)
	channel, _ := args["channel"].(string)
	return simulation.Request{Dimensions: dims, Start: start, Path: path, Channel: channel}
}

// Tool handlers

func (c *Client) handleRunSimulation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := inputRequest(arguments(request))

	var result simulation.Result
	if err := c.apiCall(ctx, "POST", "/api/runs", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatResult(&result)), nil
}

func (c *Client) handleRunScenario(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	name, _ := args["scenario"].(string)
	channel, _ := args["channel"].(string)
	if name == "" {
		return mcp.NewToolResultError("scenario is required"), nil
	}

	body := map[string]string{}
	if channel != "" {
		body["channel"] = channel
	}

	var result simulation.Result
	err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/scenarios/%s/run", url.PathEscape(name)), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatResult(&result)), nil
}

func (c *Client) handleListScenarios(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var scenarios []simulation.ScenarioInfo
	if err := c.apiCall(ctx, "GET", "/api/scenarios", nil, &scenarios); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(scenarios) == 0 {
		return mcp.NewToolResultText("No scenarios stored."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Available Scenarios (%d):\n\n", len(scenarios))
	for _, sc := range scenarios {
		fmt.Fprintf(&b, "• %s (%s)\n", sc.ScenarioID, sc.Name)
		if sc.Description != "" {
			fmt.Fprintf(&b, "  %s\n", sc.Description)
		}
		fmt.Fprintf(&b, "  Grid: %s, Commands: %d\n\n", sc.Dimensions, sc.PathLength)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var runs []simulation.RunSummary
	if err := c.apiCall(ctx, "GET", "/api/runs", nil, &runs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(runs) == 0 {
		return mcp.NewToolResultText("No runs yet."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recent Runs (%d):\n\n", len(runs))
	for _, run := range runs {
		status := "✅"
		if !run.Success {
			status = "❌"
		}
		fmt.Fprintf(&b, "%s %s", status, run.ID)
		if run.Scenario != "" {
			fmt.Fprintf(&b, " (%s)", run.Scenario)
		}
		fmt.Fprintf(&b, "\n  %s\n  Steps: %d\n\n", run.Message, run.Steps)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, _ := arguments(request)["run_id"].(string)
	if id == "" {
		return mcp.NewToolResultError("run_id is required"), nil
	}

	var result simulation.Result
	if err := c.apiCall(ctx, "GET", "/api/runs/"+url.PathEscape(id), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatResult(&result)), nil
}

func (c *Client) handleValidateInput(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := inputRequest(arguments(request))
	body.Channel = ""

	var v simulation.Validation
	if err := c.apiCall(ctx, "POST", "/api/validate", body, &v); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatValidation(&v)), nil
}

func (c *Client) handleSimulatorInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🚗 Radio Car Simulator - Instructions

GRID:
• Input 1 is 'height width', two positive integers, e.g. '5 5'
• Row 0 is the BOTTOM row and grows northwards; column 0 is the LEFT column
• Frames print the northern row first with its row label on the left

START:
• Input 2 is 'row col orientation', e.g. '0 0 N'
• Orientation is N, E, S or W (case-insensitive)
• The car must start on the grid

COMMANDS (input 3, space separated):
• F - move one cell in the heading direction
• B - move one cell against the heading direction
• L - turn left on the spot (N→W→S→E→N)
• R - turn right on the spot (N→E→S→W→N)

FRAME LEGEND:
• C - the car
• . - a cell the car has left
• (blank) - never visited

FAILURES:
• Bad input stops the run before the car moves (stage dimensions, start or path)
• A move that would leave the grid crashes the car: the run stops at that
  command and later commands are never executed
• stop_reason_code tells which rule failed, stopped_on_step which command crashed

TIPS:
• Use validate_input to check lines before running them
• Facing S from row 0 means the very first F crashes
• Pass channel to run_simulation or run_scenario and open /ws?channel=<name> to watch the run`

	return mcp.NewToolResultText(instructions), nil
}

// formatResult renders a run result for an agent
func formatResult(result *simulation.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run: %s", result.ID)
	if result.Scenario != "" {
		fmt.Fprintf(&b, " • Scenario: %s", result.Scenario)
	}
	if result.Channel != "" {
		fmt.Fprintf(&b, " • Channel: %s", result.Channel)
	}
	b.WriteString("\n")

	if result.Success {
		b.WriteString("Result: ✅ finished\n")
	} else {
		fmt.Fprintf(&b, "Result: ❌ failed at stage %s (%s)\n", result.Stage, result.StopReasonCode)
		if result.StoppedOnStep > 0 {
			fmt.Fprintf(&b, "Stopped on step: %d\n", result.StoppedOnStep)
		}
	}
	fmt.Fprintf(&b, "Message: %s\n", result.Message)

	if r := result.Report; r != nil && len(r.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, step := range r.Steps {
			b.WriteString(formatStepLine(r.Height, step))
		}
	}

	if n := len(result.Frames); n > 0 {
		b.WriteString("\nFinal grid:\n")
		b.WriteString(result.Frames[n-1])
	}
	return b.String()
}

// formatStepLine prints one step in displayed (bottom counted) coordinates
func formatStepLine(height int, step engine.Step) string {
	from := displayed(height, step.From)
	to := displayed(height, step.To)

	switch {
	case !step.Success:
		return fmt.Sprintf("  %d. %s %s -> wall heading %s ✗ crash\n", step.Number, step.Command, from, step.Heading)
	case !step.Command.Moves():
		return fmt.Sprintf("  %d. %s at %s now heading %s ✓\n", step.Number, step.Command, from, step.Heading)
	}
	return fmt.Sprintf("  %d. %s %s -> %s heading %s ✓\n", step.Number, step.Command, from, to, step.Heading)
}

func displayed(height int, p engine.Position) engine.Position {
	return engine.Position{Row: engine.DisplayRow(height, p.Row), Col: p.Col}
}

func formatValidation(v *simulation.Validation) string {
	if !v.Valid {
		return fmt.Sprintf("❌ Invalid %s: %s (%s)", v.Stage, v.Message, v.StopReasonCode)
	}

	var b strings.Builder
	b.WriteString("✅ Input is valid\n")
	if v.Dimensions != nil {
		fmt.Fprintf(&b, "Grid: %dx%d\n", v.Dimensions.Height, v.Dimensions.Width)
	}
	if v.Start != nil {
		fmt.Fprintf(&b, "Start: (%d, %d) heading %s\n", v.Start.Row, v.Start.Col, v.Start.Orientation)
	}
	cmds := make([]string, len(v.Path))
	for i, cmd := range v.Path {
		cmds[i] = cmd.String()
	}
	fmt.Fprintf(&b, "Commands (%d): %s\n", len(v.Path), strings.Join(cmds, " "))
	return b.String()
}
