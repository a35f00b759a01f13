package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/wricardo/radio-car-sim/game/engine"
)

// SettingsFile is the base name of the optional settings file (radiocar.json)
const SettingsFile = "radiocar"

// EnvPrefix prefixes every environment override, e.g. RADIOCAR_STEPDELAY
const EnvPrefix = "RADIOCAR"

// NgrokSettings holds public tunnel settings
type NgrokSettings struct {
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
	Domain    string `json:"domain" mapstructure:"domain"`
	AuthToken string `json:"-" mapstructure:"authToken"`
}

// Settings holds the application settings
type Settings struct {
	StepDelay    time.Duration `json:"stepDelay" mapstructure:"stepDelay"`
	Color        string        `json:"color" mapstructure:"color"`
	LogLevel     string        `json:"logLevel" mapstructure:"logLevel"`
	ScenarioDir  string        `json:"scenarioDir" mapstructure:"scenarioDir"`
	Addr         string        `json:"addr" mapstructure:"addr"`
	HistoryLimit int           `json:"historyLimit" mapstructure:"historyLimit"` // finished runs the server remembers
	Ngrok        NgrokSettings `json:"ngrok" mapstructure:"ngrok"`

	// Server request limits, 0 means unbounded
	MaxCells      int `json:"maxCells" mapstructure:"maxCells"`
	MaxPathLength int `json:"maxPathLength" mapstructure:"maxPathLength"`

	// File is the settings file that was read, empty when defaults were used
	File string `json:"-" mapstructure:"-"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("stepDelay", engine.DefaultStepDelay)
	v.SetDefault("color", "auto")
	v.SetDefault("logLevel", "warn")
	v.SetDefault("scenarioDir", "scenarios")
	v.SetDefault("addr", "localhost:8080")
	v.SetDefault("historyLimit", 100)
	v.SetDefault("maxCells", 10000)
	v.SetDefault("maxPathLength", 1000)

	v.SetDefault("ngrok.enabled", false)
	v.SetDefault("ngrok.domain", "")
	v.SetDefault("ngrok.authToken", "")
}

// LoadSettings reads radiocar.json from configDir when present and applies
// RADIOCAR_* environment overrides on top of the defaults. A missing file is
// not an error.
func LoadSettings(configDir string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(SettingsFile)
	v.SetConfigType("json")
	if configDir != "" {
		v.AddConfigPath(configDir)
	} else {
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("ngrok.authToken", "NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"); err != nil {
		return nil, fmt.Errorf("bind ngrok token: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading settings file: %w", err)
		}
	}

	s := &Settings{
		StepDelay:     v.GetDuration("stepDelay"),
		Color:         v.GetString("color"),
		LogLevel:      v.GetString("logLevel"),
		ScenarioDir:   v.GetString("scenarioDir"),
		Addr:          v.GetString("addr"),
		HistoryLimit:  v.GetInt("historyLimit"),
		MaxCells:      v.GetInt("maxCells"),
		MaxPathLength: v.GetInt("maxPathLength"),
		Ngrok: NgrokSettings{
			Enabled:   v.GetBool("ngrok.enabled"),
			Domain:    v.GetString("ngrok.domain"),
			AuthToken: v.GetString("ngrok.authToken"),
		},
		File: v.ConfigFileUsed(),
	}

	if s.StepDelay < 0 {
		return nil, fmt.Errorf("%w: stepDelay must not be negative, got %s", ErrInvalidSettings, s.StepDelay)
	}
	if s.HistoryLimit < 1 {
		return nil, fmt.Errorf("%w: historyLimit must be at least 1, got %d", ErrInvalidSettings, s.HistoryLimit)
	}
	if s.MaxCells < 0 || s.MaxPathLength < 0 {
		return nil, fmt.Errorf("%w: maxCells and maxPathLength must not be negative", ErrInvalidSettings)
	}
	return s, nil
}
