// Package mcp exposes the simulator to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a REST call against a
// running api.Server and the JSON answer is rendered as agent readable text.
//
// MCP Tools:
//   - run_simulation: run from dimensions, start and path lines
//   - run_scenario: run a stored scenario by id
//   - list_scenarios: list stored scenarios
//   - validate_input: check the three lines without running them
//   - simulator_instructions: coordinates, commands and failure rules
//
// Transport Modes:
//   - Stdio: `radiocar mcp` serves GetMCPServer() with server.ServeStdio
//   - HTTP: `radiocar serve` answers JSON-RPC posts on /mcp
//
// Positions in tool output use the displayed coordinates: row 0 is the
// bottom row of the grid.
package mcp
