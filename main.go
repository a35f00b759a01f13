// Command radiocar drives a radio controlled car across a bounded grid.
//
// It supports six commands:
//  1. "play" (default) – asks for the grid, the start and the path on the terminal
//  2. "run" – runs a stored scenario, or three input lines given as flags
//  3. "validate" – checks every scenario file in the scenario directory
//  4. "serve" – runs the HTTP server exposing the REST API, the WebSocket frame stream and an /mcp endpoint
//  5. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  6. "watch" – prints the frames a running server streams on one channel
//
// Settings come from radiocar.json in --config-dir and RADIOCAR_* environment
// variables; flags override both.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/radio-car-sim/game/config"
	"github.com/wricardo/radio-car-sim/game/render"
	"github.com/wricardo/radio-car-sim/game/simulation"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Radio Car Simulator"
)

// app carries the streams and the settings shared by every command
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	settings *config.Settings
	logger   zerolog.Logger
}

// main loads .env, runs the command tree and maps the outcome to an exit code.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	a := &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	if err := a.command().Run(context.Background(), os.Args); err != nil {
		// simulation failures were already reported on the terminal
		var serr *simulation.StageError
		if !errors.As(err, &serr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(simulation.ExitCode(err))
	}
}

// command builds the radiocar command tree
func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:      "radiocar",
		Usage:     "drive a radio controlled car across a grid",
		Version:   Version,
		Writer:    a.stdout,
		ErrWriter: a.stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   ".",
				Usage:   "directory containing " + config.SettingsFile + ".json",
				Sources: cli.EnvVars("RADIOCAR_CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:  "scenario-dir",
				Usage: "directory containing scenario files (default from settings: scenarios)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "trace, debug, info, warn, error or disabled",
			},
			&cli.DurationFlag{
				Name:  "step-delay",
				Usage: "pause after every move (default from settings: 500ms)",
			},
			&cli.StringFlag{
				Name:  "color",
				Usage: "auto, always or never",
			},
		},
		Action: a.play,
		Commands: []*cli.Command{
			{
				Name:   "play",
				Usage:  "answer the three prompts on the terminal (default)",
				Action: a.play,
			},
			{
				Name:  "run",
				Usage: "run a stored scenario or three input lines",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "scenario", Aliases: []string{"s"}, Usage: "scenario id in the scenario directory"},
					&cli.StringFlag{Name: "dimensions", Usage: "grid size line, e.g. \"5 5\""},
					&cli.StringFlag{Name: "start", Usage: "start line, e.g. \"0 0 N\""},
					&cli.StringFlag{Name: "path", Usage: "command line, e.g. \"F F R F\""},
				},
				Action: a.run,
			},
			{
				Name:   "validate",
				Usage:  "check every scenario file in the scenario directory",
				Action: a.validate,
			},
			{
				Name:  "serve",
				Usage: "run the REST API, WebSocket stream and /mcp endpoint",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "listen address (default from settings: localhost:8080)"},
					&cli.BoolFlag{Name: "ngrok", Usage: "also serve through an ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
					&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain", Sources: cli.EnvVars("NGROK_DOMAIN")},
				},
				Action: a.serve,
			},
			{
				Name:  "mcp",
				Usage: "run an MCP stdio server backed by the REST API",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "api-url", Value: "http://localhost:8080", Usage: "REST API to proxy; an internal server is started when it does not answer"},
				},
				Action: a.mcpStdio,
			},
			{
				Name:  "watch",
				Usage: "print the frames a running server streams on a channel",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "api-url", Value: "http://localhost:8080", Usage: "server to watch"},
					&cli.StringFlag{Name: "channel", Aliases: []string{"c"}, Required: true, Usage: "channel passed to runs"},
				},
				Action: a.watch,
			},
		},
	}
}

// load reads the settings, applies flag overrides and builds the logger
func (a *app) load(cmd *cli.Command) error {
	s, err := config.LoadSettings(cmd.String("config-dir"))
	if err != nil {
		return err
	}

	if cmd.IsSet("scenario-dir") {
		s.ScenarioDir = cmd.String("scenario-dir")
	}
	if cmd.IsSet("log-level") {
		s.LogLevel = cmd.String("log-level")
	}
	if cmd.IsSet("step-delay") {
		s.StepDelay = cmd.Duration("step-delay")
	}
	if cmd.IsSet("color") {
		s.Color = cmd.String("color")
	}
	if s.StepDelay < 0 {
		return fmt.Errorf("%w: step delay must not be negative, got %s", config.ErrInvalidSettings, s.StepDelay)
	}

	level, err := zerolog.ParseLevel(strings.ToLower(s.LogLevel))
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidSettings, err)
	}

	a.settings = s
	a.logger = zerolog.New(zerolog.ConsoleWriter{Out: a.stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().
		Logger()

	if s.File != "" {
		a.logger.Debug().Str("file", s.File).Msg("settings loaded")
	}
	return nil
}

// terminal builds the renderer and the reporter for the configured colour mode
func (a *app) terminal() (*render.Terminal, *simulation.TerminalReporter, error) {
	mode, err := render.ParseColorMode(a.settings.Color)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", config.ErrInvalidSettings, err)
	}

	term := render.NewTerminal(a.stdout, mode)
	var width func() int
	if f, ok := a.stdout.(*os.File); ok {
		width = simulation.TerminalWidth(f)
	}
	return term, simulation.NewTerminalReporter(term, width), nil
}

func (a *app) play(ctx context.Context, cmd *cli.Command) error {
	if err := a.load(cmd); err != nil {
		return err
	}
	term, reporter, err := a.terminal()
	if err != nil {
		return err
	}

	if err := reporter.Welcome(); err != nil {
		return err
	}
	source := simulation.NewReaderSource(a.stdin, reporter.Prompt)
	return a.simulate(source, term, reporter)
}

func (a *app) run(ctx context.Context, cmd *cli.Command) error {
	if err := a.load(cmd); err != nil {
		return err
	}

	var req simulation.Request
	if name := cmd.String("scenario"); name != "" {
		manager, err := config.NewManager(a.settings.ScenarioDir)
		if err != nil {
			return err
		}
		sc, err := manager.LoadScenario(name)
		if err != nil {
			return err
		}
		req = sc.Request("")
	} else {
		if !cmd.IsSet("dimensions") || !cmd.IsSet("start") || !cmd.IsSet("path") {
			return errors.New("run needs --scenario, or all of --dimensions, --start and --path")
		}
		req = simulation.Request{
			Dimensions: cmd.String("dimensions"),
			Start:      cmd.String("start"),
			Path:       cmd.String("path"),
		}
	}

	term, reporter, err := a.terminal()
	if err != nil {
		return err
	}
	source := &echoSource{
		lines:    simulation.NewScriptSource(req.Lines()...),
		reporter: reporter,
		term:     term,
	}
	return a.simulate(source, term, reporter)
}

// simulate runs one simulation and reports its outcome
func (a *app) simulate(source simulation.LineSource, term *render.Terminal, reporter simulation.Reporter) error {
	sim := simulation.New(source, term,
		simulation.WithLogger(a.logger),
		simulation.WithStepDelay(a.settings.StepDelay),
	)

	rep, err := sim.Run()
	if err != nil {
		if rerr := reporter.Failure(err); rerr != nil {
			a.logger.Error().Err(rerr).Msg("failed to report failure")
		}
		return err
	}
	return reporter.Success(rep)
}

// echoSource prints every prompt followed by the scripted answer, like a recorded session
type echoSource struct {
	lines    simulation.LineSource
	reporter *simulation.TerminalReporter
	term     *render.Terminal
}

func (e *echoSource) NextLine(stage simulation.Stage) (string, error) {
	if err := e.reporter.Prompt(stage); err != nil {
		return "", err
	}
	line, err := e.lines.NextLine(stage)
	if err != nil {
		return "", err
	}
	return line, e.term.Println(render.StylePlain, line)
}

func (a *app) validate(ctx context.Context, cmd *cli.Command) error {
	if err := a.load(cmd); err != nil {
		return err
	}

	results, err := config.ValidateDir(a.settings.ScenarioDir)
	if err != nil {
		return fmt.Errorf("error finding scenario files: %w", err)
	}
	if len(results) == 0 {
		fmt.Fprintf(a.stdout, "No scenario files found in %s\n", a.settings.ScenarioDir)
		return nil
	}

	invalid := 0
	for _, result := range results {
		fmt.Fprintf(a.stdout, "\n%s %s\n", strings.Repeat("=", 20), result.File)
		if result.Valid {
			fmt.Fprintln(a.stdout, "✅ VALID")
			for _, info := range result.Messages {
				fmt.Fprintln(a.stdout, "  "+info)
			}
			continue
		}

		invalid++
		fmt.Fprintln(a.stdout, "❌ INVALID")
		for _, msg := range result.Messages {
			fmt.Fprintln(a.stdout, "  ❌ "+msg)
		}
	}

	fmt.Fprintf(a.stdout, "\n%s\n", strings.Repeat("=", 40))
	if invalid > 0 {
		fmt.Fprintln(a.stdout, "❌ Some scenarios have errors")
		return fmt.Errorf("%d of %d scenario files are invalid", invalid, len(results))
	}
	fmt.Fprintln(a.stdout, "✅ All scenarios are valid!")
	return nil
}
