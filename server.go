package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/radio-car-sim/api"
	"github.com/wricardo/radio-car-sim/game/config"
	"github.com/wricardo/radio-car-sim/game/history"
	"github.com/wricardo/radio-car-sim/game/simulation"
	"github.com/wricardo/radio-car-sim/transport/mcp"
	"github.com/wricardo/radio-car-sim/transport/websocket"
)

// component returns a child logger tagged with the component name
func (a *app) component(name string) zerolog.Logger {
	return a.logger.With().Str("component", name).Logger()
}

// newBackend wires the scenario store, the run history, the websocket hub,
// the simulation service and the REST API. The caller runs and stops the hub.
func (a *app) newBackend() (*api.Server, *websocket.Hub, error) {
	store, err := config.NewManager(a.settings.ScenarioDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create scenario manager: %w", err)
	}

	hub := websocket.NewHub(websocket.WithLogger(a.component("hub")))
	svc := simulation.NewService(store,
		simulation.WithServiceLogger(a.component("service")),
		simulation.WithStreamer(hub),
		simulation.WithHistory(history.NewStore(a.settings.HistoryLimit)),
		simulation.WithRunStepDelay(a.settings.StepDelay),
		simulation.WithLimits(a.settings.MaxCells, a.settings.MaxPathLength),
	)
	return api.NewServer(svc, hub, api.WithLogger(a.component("api"))), hub, nil
}

// mcpHandler answers JSON-RPC posts with the MCP server of client
func mcpHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// baseURL turns a listen address into the URL the MCP proxy calls
func baseURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

// serve runs the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel.
func (a *app) serve(ctx context.Context, cmd *cli.Command) error {
	if err := a.load(cmd); err != nil {
		return err
	}
	if cmd.IsSet("addr") {
		a.settings.Addr = cmd.String("addr")
	}
	if cmd.IsSet("ngrok") {
		a.settings.Ngrok.Enabled = cmd.Bool("ngrok")
	}
	if cmd.IsSet("ngrok-domain") {
		a.settings.Ngrok.Domain = cmd.String("ngrok-domain")
	}
	addr := a.settings.Addr

	apiServer, hub, err := a.newBackend()
	if err != nil {
		return err
	}
	go hub.Run()
	defer hub.Stop()

	mcpClient := mcp.NewClient(baseURL(addr), mcp.WithLogger(a.component("mcp")))

	// Create main router that combines API and MCP
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))

	httpServer := &http.Server{
		Addr:        addr,
		Handler:     mainRouter,
		ReadTimeout: 15 * time.Second,
		// paced runs answer after every step has been drawn
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	serverErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		a.logger.Info().Str("addr", addr).Msg("HTTP server listening")
		fmt.Fprintf(a.stderr, "REST API: %s/api\n", baseURL(addr))
		fmt.Fprintf(a.stderr, "WebSocket: ws://%s/ws?channel=<channel>\n", strings.TrimPrefix(baseURL(addr), "http://"))
		fmt.Fprintf(a.stderr, "MCP endpoint: %s/mcp\n", baseURL(addr))

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	if a.settings.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.serveNgrok(ctx, mainRouter)
		}()
	}

	// Wait for shutdown signal
	select {
	case <-ctx.Done():
		a.logger.Info().Msg("shutting down")
	case err := <-serverErr:
		stop()
		wg.Wait()
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	a.logger.Info().Msg("server stopped")
	return nil
}

// serveNgrok serves handler through an ngrok tunnel until ctx is done
func (a *app) serveNgrok(ctx context.Context, handler http.Handler) {
	logger := a.component("ngrok")

	authToken := a.settings.Ngrok.AuthToken
	if authToken == "" {
		logger.Warn().Msg("ngrok enabled but no auth token provided (use NGROK_AUTHTOKEN, NGROK_AUTH_TOKEN or RADIOCAR_NGROK_AUTHTOKEN)")
		return
	}

	// Configure ngrok endpoint
	var tunnel ngrokConfig.Tunnel
	if domain := a.settings.Ngrok.Domain; domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		logger.Info().Str("domain", domain).Msg("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	logger.Info().Str("url", ngrokURL).Msg("ngrok tunnel established")
	fmt.Fprintf(a.stderr, "REST API (ngrok): %s/api\n", ngrokURL)
	fmt.Fprintf(a.stderr, "MCP endpoint (ngrok): %s/mcp\n", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.Error().Err(err).Msg("ngrok server error")
	}
	logger.Info().Msg("ngrok tunnel closed")
}

// mcpStdio runs an MCP stdio server. It reuses the API at --api-url when it
// answers; otherwise it starts an internal HTTP API on a random loopback port.
func (a *app) mcpStdio(ctx context.Context, cmd *cli.Command) error {
	if err := a.load(cmd); err != nil {
		return err
	}

	target, shutdown, err := a.apiTarget(ctx, cmd.String("api-url"))
	if err != nil {
		return err
	}
	defer shutdown()

	mcpClient := mcp.NewClient(target, mcp.WithLogger(a.component("mcp")))
	a.logger.Info().Str("api", target).Msg("MCP stdio server ready")

	return server.ServeStdio(mcpClient.GetMCPServer())
}

// apiTarget probes externalURL and falls back to an internal API server.
// shutdown stops whatever was started.
func (a *app) apiTarget(ctx context.Context, externalURL string) (string, func(), error) {
	externalURL = strings.TrimSuffix(externalURL, "/")
	if externalURL != "" {
		a.logger.Debug().Str("url", externalURL).Msg("checking for external API server")

		probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		req, err := http.NewRequestWithContext(probeCtx, "GET", externalURL+"/api/health", nil)
		if err == nil {
			if resp, err := http.DefaultClient.Do(req); err == nil {
				resp.Body.Close()
				if resp.StatusCode < 500 {
					a.logger.Info().Str("url", externalURL).Msg("external API server found")
					return externalURL, func() {}, nil
				}
			}
		}
	}

	a.logger.Info().Msg("no external API server found, starting internal HTTP server")

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}

	apiServer, hub, err := a.newBackend()
	if err != nil {
		listener.Close()
		return "", nil, err
	}
	go hub.Run()

	httpServer := &http.Server{Handler: apiServer}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error().Err(err).Msg("internal HTTP server error")
		}
	}()

	internalURL := "http://" + listener.Addr().String()
	a.logger.Info().Str("url", internalURL).Msg("internal HTTP server started")

	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
		hub.Stop()
	}
	return internalURL, shutdown, nil
}
