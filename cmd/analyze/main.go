// Command analyze prints quick, human-readable summaries of the scenario files
// in a scenario directory (default "scenarios"). Every scenario is dry-run
// without pacing: the summary shows the grid, the command mix, where the car
// ends or crashes, and how far it travelled.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/wricardo/radio-car-sim/game/config"
	"github.com/wricardo/radio-car-sim/game/engine"
	"github.com/wricardo/radio-car-sim/game/simulation"
	"github.com/wricardo/radio-car-sim/validate"
)

// Analysis is the dry-run summary of one scenario
type Analysis struct {
	Commands    map[engine.Command]int
	PathLength  int
	Report      *simulation.Report
	Err         error
	Visited     int // cells holding a trail or the car when the run stopped
	Displaced   int // Manhattan distance between start and final cell
	MaxDistance int // furthest Manhattan distance from the start cell
}

func main() {
	dir := "scenarios"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	if err := run(os.Stdout, dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, dir string) error {
	manager, err := config.NewManager(dir)
	if err != nil {
		return err
	}

	infos, err := manager.ListScenarios()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Fprintf(w, "No valid scenarios found in %s\n", dir)
		return nil
	}

	for _, info := range infos {
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", info.Filename)
		sc, err := manager.LoadScenario(info.ScenarioID)
		if err != nil {
			fmt.Fprintf(w, "Error loading scenario: %v\n", err)
			continue
		}
		printAnalysis(w, sc, analyze(sc))
	}
	return nil
}

func analyze(sc *simulation.Scenario) *Analysis {
	a := &Analysis{Commands: make(map[engine.Command]int)}

	if path, err := validate.ValidatePath(validate.Tokens(sc.Path)); err == nil {
		a.PathLength = len(path)
		for _, cmd := range path {
			a.Commands[cmd]++
		}
	}

	var rows [][]engine.Marker
	capture := engine.RendererFunc(func(g *engine.Grid) error {
		rows = g.Rows()
		return nil
	})

	sim := simulation.New(simulation.NewScriptSource(sc.Dimensions, sc.Start, sc.Path), capture,
		simulation.WithStepDelay(0))
	a.Report, a.Err = sim.Run()

	a.Visited = engine.CountMarkers(rows, engine.Trail) + engine.CountMarkers(rows, engine.Car)
	if a.Report == nil {
		return a
	}

	end := engine.Position{Row: engine.InternalRow(a.Report.Height, a.Report.Row), Col: a.Report.Col}
	start := end
	if len(a.Report.Steps) > 0 {
		start = a.Report.Steps[0].From
	}
	a.Displaced = engine.ManhattanDistance(start, end)
	for _, step := range a.Report.Steps {
		a.MaxDistance = max(a.MaxDistance, engine.ManhattanDistance(start, step.To))
	}
	return a
}

func printAnalysis(w io.Writer, sc *simulation.Scenario, a *Analysis) {
	fmt.Fprintf(w, "Name: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", sc.Description)
	}
	fmt.Fprintf(w, "Grid: %s\n", sc.Dimensions)
	fmt.Fprintf(w, "Start: %s\n", sc.Start)
	fmt.Fprintf(w, "Commands: %d (F=%d B=%d L=%d R=%d)\n", a.PathLength,
		a.Commands[engine.Forward], a.Commands[engine.Backward],
		a.Commands[engine.TurnLeft], a.Commands[engine.TurnRight])

	var boundary *engine.BoundaryError
	switch {
	case a.Err == nil:
		fmt.Fprintf(w, "✅ %s\n", simulation.FinalPosition(a.Report))
	case errors.As(a.Err, &boundary):
		fmt.Fprintf(w, "⚠️  Crashes on step %d of %d: %s\n", len(a.Report.Steps), a.PathLength, boundary.Error())
	default:
		fmt.Fprintf(w, "❌ Does not run: %s\n", simulation.FailureMessage(a.Err))
		return
	}

	fmt.Fprintf(w, "Cells visited: %d\n", a.Visited)
	fmt.Fprintf(w, "Net displacement: %d\n", a.Displaced)
	fmt.Fprintf(w, "Furthest from start: %d\n", a.MaxDistance)
}
