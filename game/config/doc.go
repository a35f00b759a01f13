// Package config provides settings and scenario management for the radio car simulator.
//
// The config package handles:
//   - Loading application settings with viper (defaults, radiocar.json, RADIOCAR_* env)
//   - Loading, caching and saving scenarios stored as JSON files
//   - Scenario validation, including a dry run of the scenario's path
//   - Scenario discovery and listing
//
// Scenario Format:
//
// Scenarios live in the scenario directory, one <name>.json file each. A
// scenario holds the three input lines an interactive run asks for:
//
//	{
//	  "name": "Square",
//	  "description": "Two steps south, turn, one step west",
//	  "dimensions": "5 5",
//	  "start": "4 2 S",
//	  "path": "F F R F"
//	}
//
// Usage:
//
//	settings, err := config.LoadSettings(".")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	manager, err := config.NewManager(settings.ScenarioDir)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load specific scenario
//	sc, err := manager.LoadScenario("square")
//
//	// List available scenarios
//	scenarios, err := manager.ListScenarios()
//
// Settings:
//
// Every key has a default (stepDelay 500ms, color auto, logLevel warn,
// scenarioDir scenarios, addr localhost:8080, ngrok disabled). A missing
// radiocar.json is not an error. The ngrok auth token is read from
// NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN.
package config
