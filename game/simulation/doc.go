// Package simulation drives a single radio car run from three lines of input.
//
// A Simulation asks its LineSource for the grid dimensions, the car's starting
// state and the path, validates each line, builds the engine.Grid and
// engine.Vehicle, and executes the path until it completes or the car crashes.
// Failures are returned as *StageError values; only the caller decides whether
// to exit. ExitCode maps an error to the process exit status.
//
// Usage:
//
//	term := render.NewTerminal(os.Stdout, render.ColorAuto)
//	reporter := simulation.NewTerminalReporter(term, simulation.TerminalWidth(os.Stdout))
//	sim := simulation.New(simulation.NewReaderSource(os.Stdin, reporter.Prompt), term)
//
//	report, err := sim.Run()
//	if err != nil {
//		reporter.Failure(err)
//		os.Exit(simulation.ExitCode(err))
//	}
//	reporter.Success(report)
//
// Service:
//
// Service wraps scripted runs for the REST and MCP surfaces. Each run gets a
// UUID, records a plain text frame per render, and optionally streams frames
// to a websocket channel. Runs are serialised, so at most one simulation
// exists at any time.
package simulation
