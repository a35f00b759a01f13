// Package history remembers the outcome of finished simulation runs.
//
// The history package implements:
//   - Thread-safe storage of run results keyed by run ID
//   - Case-insensitive lookup
//   - A fixed capacity with oldest-first eviction
//
// Core Types:
//
// Store satisfies simulation.RunHistory. The simulation service adds every
// finished run; the REST API reads them back through the service.
//
// Nothing is written to disk. Restarting the process forgets every run.
//
// Usage:
//
//	runs := history.NewStore(history.DefaultLimit)
//	svc := simulation.NewService(store, simulation.WithHistory(runs))
//
//	result, err := svc.GetRun(ctx, id)
package history
