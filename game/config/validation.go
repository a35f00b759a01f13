package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/radio-car-sim/game/engine"
	"github.com/wricardo/radio-car-sim/game/simulation"
	"github.com/wricardo/radio-car-sim/validate"
)

// ValidationResult captures the outcome of validating a single scenario file.
// If Valid is true, Messages holds informational lines; otherwise it
// accumulates every problem that was found.
type ValidationResult struct {
	File     string   `json:"file"`
	Valid    bool     `json:"valid"`
	Messages []string `json:"messages"`
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Messages = append(r.Messages, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Messages = append(r.Messages, fmt.Sprintf(format, args...))
}

// ValidateScenarioFile loads and checks one scenario file. Besides the input
// validators it performs a dry run so the file reports where the car ends up.
func ValidateScenarioFile(path string) ValidationResult {
	result := ValidationResult{
		File:     filepath.Base(path),
		Valid:    true,
		Messages: []string{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var sc simulation.Scenario
	if err := json.Unmarshal(data, &sc); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if strings.TrimSpace(sc.Name) == "" {
		result.fail("Missing name")
	}

	dims, err := validate.ValidateDimensions(validate.Tokens(sc.Dimensions))
	if err != nil {
		result.fail("dimensions %q: %v", sc.Dimensions, err)
		return result
	}

	start, err := validate.ValidateVehicleStart(validate.Tokens(sc.Start), dims.Height, dims.Width)
	if err != nil {
		result.fail("start %q: %v", sc.Start, err)
	} else if internal := engine.InternalRow(dims.Height, start.Row); internal < 0 || internal >= dims.Height || start.Col >= dims.Width {
		result.fail("start %q: car would be placed outside the %dx%d grid", sc.Start, dims.Height, dims.Width)
	}

	commands, err := validate.ValidatePath(validate.Tokens(sc.Path))
	if err != nil {
		result.fail("path %q: %v", sc.Path, err)
	}

	if !result.Valid {
		return result
	}

	result.info("✓ Grid %dx%d, start (%d, %d) %s, %d commands", dims.Height, dims.Width, start.Row, start.Col, start.Orientation, len(commands))

	sim := simulation.New(simulation.NewScriptSource(sc.Dimensions, sc.Start, sc.Path), nil, simulation.WithStepDelay(0))
	report, err := sim.Run()
	switch {
	case err == nil:
		result.info("✓ Dry run: %s", simulation.FinalPosition(report))
	case report != nil:
		result.info("⚠ Dry run: car crashes on step %d of %d", len(report.Steps), len(commands))
	default:
		result.fail("Dry run failed: %v", err)
	}
	return result
}

// ValidateDir validates every *.json scenario in dir, in file name order
func ValidateDir(dir string) ([]ValidationResult, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("error finding scenario files: %w", err)
	}
	sort.Strings(files)

	results := make([]ValidationResult, 0, len(files))
	for _, f := range files {
		if filepath.Base(f) == SettingsFile+".json" {
			continue
		}
		results = append(results, ValidateScenarioFile(f))
	}
	return results, nil
}
