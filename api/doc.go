// Package api provides the HTTP REST API of the radio car simulator.
//
// Endpoints:
//
// Runs:
//   - POST /api/runs - Run a simulation from three raw input lines
//   - GET  /api/runs - List remembered runs, newest first
//   - GET  /api/runs/{id} - Fetch a remembered run with its report and frames
//   - POST /api/validate - Check the input lines without running them
//
// Scenarios:
//   - GET /api/scenarios - List stored scenarios
//   - POST /api/scenarios - Validate and store a scenario
//   - GET /api/scenarios/{name} - Get one scenario
//   - POST /api/scenarios/{name}/run - Run a stored scenario
//
// Streaming:
//   - GET /ws?channel=<name> - Watch every run started with that channel
//
// Other:
//   - GET /api/health - Liveness probe
//
// Request/Response Format:
//
// A run request carries the lines exactly as a user would type them:
//
//	{
//	  "dimensions": "5 5",
//	  "start": "4 2 S",
//	  "path": "F F R F",
//	  "channel": "demo"            // optional, streams frames to /ws viewers
//	}
//
// Validation failures and crashes are not HTTP errors. The run result reports
// them with success=false, the failing stage, a stop_reason_code and the
// message the terminal would have printed. Frames holds every rendered grid.
//
// Errors are returned as JSON with an appropriate HTTP status code:
//
//	{
//	  "error": "scenario not found: nope. Available scenarios: [crash square]"
//	}
package api
