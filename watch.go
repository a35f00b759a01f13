package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/radio-car-sim/game/render"
	"github.com/wricardo/radio-car-sim/game/simulation"
	"github.com/wricardo/radio-car-sim/transport/websocket"
)

// watch prints the frames and run outcomes streamed on a channel until
// interrupted or the server goes away
func (a *app) watch(ctx context.Context, cmd *cli.Command) error {
	if err := a.load(cmd); err != nil {
		return err
	}
	term, _, err := a.terminal()
	if err != nil {
		return err
	}

	channel := cmd.String("channel")
	wsURL, err := websocket.StreamURL(cmd.String("api-url"), channel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logger.Info().Str("url", wsURL).Msg("watching channel")
	if err := term.Println(render.StyleLabel, fmt.Sprintf("Watching channel %q, start a run with that channel to see it here.", channel)); err != nil {
		return err
	}
	return websocket.Watch(ctx, wsURL, a.showMessage(term))
}

// showMessage renders one streamed message
func (a *app) showMessage(term *render.Terminal) func(*websocket.Message) error {
	return func(msg *websocket.Message) error {
		switch msg.Event {
		case websocket.EventFrame:
			return term.PrintFrame(msg.Frame)

		case simulation.EventRunStarted:
			var started struct {
				ID       string `json:"id"`
				Scenario string `json:"scenario"`
			}
			if err := remarshal(msg.Data, &started); err != nil {
				return err
			}
			line := "Run " + started.ID + " started"
			if started.Scenario != "" {
				line += " (" + started.Scenario + ")"
			}
			return term.Println(render.StylePrompt, line)

		case simulation.EventRunFinished:
			var result simulation.Result
			if err := remarshal(msg.Data, &result); err != nil {
				return err
			}
			if result.Success {
				return term.Println(render.StyleSuccess, result.Message)
			}
			return term.Println(render.StyleError, result.Message)
		}

		a.logger.Debug().Str("event", msg.Event).Msg("ignoring stream event")
		return nil
	}
}

// remarshal converts the generic JSON value of a message into v
func remarshal(data interface{}, v interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("unexpected stream payload: %w", err)
	}
	return nil
}
