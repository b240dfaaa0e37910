// Command treasure-path starts the Treasure Path server.
//
// It supports three commands:
//  1. "serve" (default) runs the HTTP server exposing the REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "run" plans and replays a scenario in the terminal
//
// Flags control host/port, the scenarios directory, debug logging, the results
// store, rate limiting, and optional ngrok tunneling for external access during development.
// Every flag can also be set through the environment or a .env file.
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
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/time/rate"

	"github.com/wricardo/treasure-path/api"
	"github.com/wricardo/treasure-path/game/config"
	"github.com/wricardo/treasure-path/game/results"
	"github.com/wricardo/treasure-path/game/service"
	"github.com/wricardo/treasure-path/game/session"
	"github.com/wricardo/treasure-path/transport/mcp"
	"github.com/wricardo/treasure-path/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Treasure Path Server"
)

const janitorInterval = time.Hour

// application holds state shared by every command
type application struct {
	logger *zap.Logger
	envErr error
}

func main() {
	// A missing .env file is fine; anything else is reported once logging is up
	app := &application{envErr: godotenv.Load()}

	if err := app.command().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// command builds the CLI. The root action is serve.
func (app *application) command() *cli.Command {
	return &cli.Command{
		Name:    "treasure-path",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "scenarios-dir", Value: "scenarios", Usage: "directory containing scenario files", Sources: cli.EnvVars("SCENARIOS_DIR")},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging", Sources: cli.EnvVars("DEBUG")},
			&cli.StringFlag{Name: "redis-addr", Usage: "Redis address for run results (in-memory when empty)", Sources: cli.EnvVars("REDIS_ADDR")},
			&cli.StringFlag{Name: "redis-password", Usage: "Redis password", Sources: cli.EnvVars("REDIS_PASSWORD")},
			&cli.IntFlag{Name: "redis-db", Usage: "Redis database number", Sources: cli.EnvVars("REDIS_DB")},
			&cli.FloatFlag{Name: "rate-limit", Value: 20, Usage: "requests per second per client IP (0 disables)", Sources: cli.EnvVars("RATE_LIMIT")},
			&cli.IntFlag{Name: "rate-burst", Value: 40, Usage: "request burst per client IP", Sources: cli.EnvVars("RATE_BURST")},
			&cli.DurationFlag{Name: "session-ttl", Value: 24 * time.Hour, Usage: "remove sessions idle for longer than this", Sources: cli.EnvVars("SESSION_TTL")},
			&cli.BoolFlag{Name: "ngrok", Usage: "enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Before: app.before,
		Action: app.serve,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "run the HTTP server with REST API, WebSocket, and MCP endpoint",
				Action:  app.serve,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "run the MCP stdio server, reusing an external API or starting an internal one",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "api-url", Value: "http://localhost:8080", Usage: "external API to reuse when reachable", Sources: cli.EnvVars("API_URL")},
				},
				Action: app.stdioMCP,
			},
			runCommand(app),
		},
	}
}

// before sets up logging for every command
func (app *application) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	logger, err := newLogger(cmd.Bool("debug"))
	if err != nil {
		return ctx, fmt.Errorf("init logger: %w", err)
	}
	app.logger = logger

	if app.envErr == nil {
		logger.Debug("loaded environment variables from .env file")
	} else if !errors.Is(app.envErr, os.ErrNotExist) {
		logger.Warn("error loading .env file", zap.Error(app.envErr))
	}
	return ctx, nil
}

// newLogger returns a development logger in debug mode and a production logger otherwise
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// serviceConfig is everything initializeServices needs from the command line
type serviceConfig struct {
	ScenariosDir  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func serviceConfigFrom(cmd *cli.Command) serviceConfig {
	return serviceConfig{
		ScenariosDir:  cmd.String("scenarios-dir"),
		RedisAddr:     cmd.String("redis-addr"),
		RedisPassword: cmd.String("redis-password"),
		RedisDB:       cmd.Int("redis-db"),
	}
}

// services is the wired application core
type services struct {
	game     service.GameService
	sessions *session.Manager
	store    results.Store
}

// Close releases the results store
func (s *services) Close() error {
	return s.store.Close()
}

// initializeServices wires the scenario, session and results layers into the game service
func initializeServices(cfg serviceConfig, logger *zap.Logger) (*services, error) {
	scenarios, err := config.NewManager(cfg.ScenariosDir, logger.Named("scenarios"))
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario manager: %w", err)
	}

	store, err := results.NewStore(results.Config{
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create results store: %w", err)
	}

	sessions := session.NewManager(logger.Named("sessions"))
	return &services{
		game:     service.NewGameService(sessions, scenarios, store, logger.Named("service")),
		sessions: sessions,
		store:    store,
	}, nil
}

// newAPIServer builds the REST API with logging and rate limiting from the command flags
func newAPIServer(cmd *cli.Command, svc service.GameService, hub *websocket.Hub, logger *zap.Logger) *api.Server {
	return api.NewServer(svc, hub,
		api.WithLogger(logger.Named("http")),
		api.WithRateLimit(rate.Limit(cmd.Float("rate-limit")), cmd.Int("rate-burst")),
	)
}

// mcpHandler serves MCP JSON-RPC messages over plain HTTP POST
func mcpHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
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

// serve starts the HTTP server with REST API, WebSocket hub, and an /mcp endpoint.
// If ngrok is enabled it also provisions a public tunnel.
func (app *application) serve(ctx context.Context, cmd *cli.Command) error {
	logger := app.logger
	svcs, err := initializeServices(serviceConfigFrom(cmd), logger)
	if err != nil {
		return err
	}
	defer svcs.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub(logger.Named("ws"))
	go hub.Run(ctx)
	go svcs.sessions.RunJanitor(ctx, janitorInterval, cmd.Duration("session-ttl"))

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	mcpClient := mcp.NewClient("http://" + addr)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", newAPIServer(cmd, svcs.game, hub, logger))
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening",
			zap.String("version", Version),
			zap.String("api", "http://"+addr+"/api"),
			zap.String("ws", "ws://"+addr+"/ws?session=<session_id>"),
			zap.String("mcp", "http://"+addr+"/mcp"),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.runNgrok(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), mainRouter)
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-serveErr:
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error("HTTP server shutdown error", zap.Error(shutdownErr))
	}

	wg.Wait()
	logger.Info("server stopped")
	return err
}

// runNgrok serves handler through an ngrok tunnel until ctx is cancelled
func (app *application) runNgrok(ctx context.Context, authToken, domain string, handler http.Handler) {
	logger := app.logger.Named("ngrok")
	if authToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		logger.Info("using custom ngrok domain", zap.String("domain", domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", zap.Error(err))
		return
	}

	// http.Serve returns once the tunnel is closed
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("failed to close ngrok tunnel", zap.Error(err))
		}
	}()

	url := tun.URL()
	logger.Info("ngrok tunnel established",
		zap.String("url", url),
		zap.String("api", url+"/api"),
		zap.String("mcp", url+"/mcp"),
	)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.Error("ngrok server error", zap.Error(err))
	}
	logger.Info("ngrok tunnel closed")
}

// externalAPIAvailable reports whether an API server answers at baseURL
func externalAPIAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// startInternalAPI serves the REST API on a random loopback port and returns its base URL
func startInternalAPI(ctx context.Context, handler http.Handler, logger *zap.Logger) (string, *http.Server, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}

	httpServer := &http.Server{
		Handler:     handler,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("internal HTTP server error", zap.Error(err))
		}
	}()

	return "http://" + listener.Addr().String(), httpServer, nil
}

// stdioMCP runs an MCP stdio server. It reuses an external API when one answers,
// otherwise it starts an internal API bound to a random loopback port.
// Logs go to stderr so stdout stays a clean JSON-RPC stream.
func (app *application) stdioMCP(ctx context.Context, cmd *cli.Command) error {
	logger := app.logger
	externalURL := cmd.String("api-url")

	baseURL := externalURL
	if externalAPIAvailable(externalURL) {
		logger.Info("external API server found, using it for MCP", zap.String("url", externalURL))
	} else {
		logger.Info("no external API server found, starting internal HTTP server")

		svcs, err := initializeServices(serviceConfigFrom(cmd), logger)
		if err != nil {
			return err
		}
		defer svcs.Close()

		hub := websocket.NewHub(logger.Named("ws"))
		go hub.Run(ctx)

		var httpServer *http.Server
		baseURL, httpServer, err = startInternalAPI(ctx, newAPIServer(cmd, svcs.game, hub, logger), logger)
		if err != nil {
			return err
		}
		defer httpServer.Close()
		logger.Info("internal HTTP server started", zap.String("url", baseURL))
	}

	mcpClient := mcp.NewClient(baseURL)
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
