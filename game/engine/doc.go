// Package engine provides the movement state machine of the radio car simulator.
//
// The engine package implements:
//   - A fixed size Grid with per-cell render markers
//   - The Vehicle state machine (position, heading, path)
//   - Boundary detection that runs before any state is mutated
//   - Closed Orientation and Command enumerations
//
// Coordinates:
//
// Row 0 is the northernmost row and rows grow southward; columns grow eastward.
// Users count rows from the bottom edge instead, so InternalRow and DisplayRow
// translate between the two conventions.
//
// Usage:
//
//	grid, err := engine.NewGrid(5, 5, renderer)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	car, err := engine.NewVehicle(grid, engine.Position{Row: 4, Col: 0}, engine.North)
//	if err != nil {
//		log.Fatal(err)
//	}
//	grid.Mark(car.Position())
//
//	if err := car.Forward(); errors.Is(err, engine.ErrBoundaryViolation) {
//		// the car hit the wall, the run is over
//	}
//
// Movement Rules:
//
// Forward and Backward move one cell along the heading axis and re-render the
// grid, followed by a fixed pacing delay. A move that would leave the grid
// fails with a *BoundaryError and leaves the car untouched. Turns only change
// the heading: right turns cycle S, W, N, E and left turns cycle S, E, N, W.
package engine
