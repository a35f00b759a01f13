package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/radio-car-sim/game/simulation"
	"github.com/wricardo/radio-car-sim/validate"
)

var (
	ErrInvalidScenario = simulation.ErrInvalidScenario
	ErrInvalidSettings = errors.New("invalid settings")
	ErrInvalidName     = errors.New("invalid scenario name")
)

// Manager handles scenario loading and caching. It implements simulation.ScenarioStore.
type Manager struct {
	scenarioDir string
	scenarios   map[string]*simulation.Scenario
	mu          sync.RWMutex
}

// NewManager creates a scenario manager, creating scenarioDir when it does not exist
func NewManager(scenarioDir string) (*Manager, error) {
	if err := os.MkdirAll(scenarioDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scenario directory %s: %w", scenarioDir, err)
	}

	return &Manager{
		scenarioDir: scenarioDir,
		scenarios:   make(map[string]*simulation.Scenario),
	}, nil
}

// Dir returns the scenario directory
func (m *Manager) Dir() string {
	return m.scenarioDir
}

// LoadScenario loads a scenario by name
func (m *Manager) LoadScenario(name string) (*simulation.Scenario, error) {
	id, err := scenarioID(name)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	if sc, exists := m.scenarios[id]; exists {
		m.mu.RUnlock()
		return sc, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if sc, exists := m.scenarios[id]; exists {
		return sc, nil
	}

	sc, err := readScenario(filepath.Join(m.scenarioDir, id+".json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", simulation.ErrScenarioNotFound, id)
		}
		return nil, err
	}

	if err := ValidateScenario(sc); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrInvalidScenario, id, err)
	}

	m.scenarios[id] = sc
	return sc, nil
}

// ListScenarios returns information about all valid scenarios, sorted by id
func (m *Manager) ListScenarios() ([]*simulation.ScenarioInfo, error) {
	entries, err := os.ReadDir(m.scenarioDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	infos := []*simulation.ScenarioInfo{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")
		sc, err := m.LoadScenario(id)
		if err != nil {
			// Skip invalid scenarios
			continue
		}
		infos = append(infos, simulation.NewScenarioInfo(id, sc))
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].ScenarioID < infos[j].ScenarioID })
	return infos, nil
}

// SaveScenario validates and writes a scenario to <dir>/<name>.json
func (m *Manager) SaveScenario(name string, sc *simulation.Scenario) error {
	id, err := scenarioID(name)
	if err != nil {
		return err
	}
	if err := ValidateScenario(sc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}

	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.scenarioDir, id+".json"), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write scenario file: %w", err)
	}

	m.mu.Lock()
	m.scenarios[id] = sc
	m.mu.Unlock()
	return nil
}

// RefreshCache drops every cached scenario so the next load reads from disk
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scenarios = make(map[string]*simulation.Scenario)
}

// ValidateScenario checks that a scenario has a name and that its input lines
// pass the same validators an interactive run uses
func ValidateScenario(sc *simulation.Scenario) error {
	if sc == nil {
		return errors.New("scenario is nil")
	}
	if strings.TrimSpace(sc.Name) == "" {
		return errors.New("missing name")
	}

	dims, err := validate.ValidateDimensions(validate.Tokens(sc.Dimensions))
	if err != nil {
		return fmt.Errorf("dimensions: %w", err)
	}
	if _, err := validate.ValidateVehicleStart(validate.Tokens(sc.Start), dims.Height, dims.Width); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if _, err := validate.ValidatePath(validate.Tokens(sc.Path)); err != nil {
		return fmt.Errorf("path: %w", err)
	}
	return nil
}

func readScenario(path string) (*simulation.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var sc simulation.Scenario
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	return &sc, nil
}

// scenarioID strips an optional .json suffix and rejects names that would escape the directory
func scenarioID(name string) (string, error) {
	id := strings.TrimSuffix(strings.TrimSpace(name), ".json")
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return id, nil
}
