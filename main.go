// Trello MCP Server - A Model Context Protocol server for the Trello REST API.
// Every Trello endpoint in the catalog is exposed as one MCP tool.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/olgasafonova/trello-mcp-server/internal/base"
	"github.com/olgasafonova/trello-mcp-server/internal/config"
	"github.com/olgasafonova/trello-mcp-server/internal/credentials"
	"github.com/olgasafonova/trello-mcp-server/internal/endpoint"
	"github.com/olgasafonova/trello-mcp-server/internal/infra"
	"github.com/olgasafonova/trello-mcp-server/internal/trello"
	"github.com/olgasafonova/trello-mcp-server/tools"
	"github.com/olgasafonova/trello-mcp-server/tracing"
)

// recoverPanic logs a panic instead of crashing the process.
func recoverPanic(logger *slog.Logger, operation string) {
	if r := recover(); r != nil {
		logger.Error("Panic recovered",
			"operation", operation,
			"panic", r,
			"stack", string(debug.Stack()))
	}
}

const (
	ServerName    = "trello-mcp-server"
	ServerVersion = "1.0.0"
)

func main() {
	cfg, err := config.Load(config.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// stdout is reserved for the MCP stdio transport
	logger := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	defer recoverPanic(logger, "run")

	shutdownTracing, err := tracing.Setup(ctx, tracing.FromEnv(ServerVersion))
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("Tracing shutdown failed", "error", err)
		}
	}()

	catalog, err := buildCatalog(ctx, cfg)
	if err != nil {
		return err
	}

	client := base.NewClient(
		base.WithLogger(logger),
		base.WithTimeout(cfg.Timeout),
		base.WithMaxConcurrent(cfg.MaxConcurrent),
	)
	defer client.Close()

	transport := base.NewTransport(cfg.BaseURL, client)
	transport.UserAgent = cfg.UserAgent

	provider := credentialProvider(cfg)

	if cfg.VerifyOnStart {
		if err := verifyCredentials(ctx, provider, cfg, client.HTTPClient, logger); err != nil {
			return err
		}
	}

	invoker := endpoint.NewInvoker(transport, provider, endpoint.WithLogger(logger))

	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Logger:       logger,
		Instructions: instructions(catalog, cfg.ReadOnly),
	})

	if err := tools.NewHandlerRegistry(invoker, logger).RegisterAll(server, catalog.All()); err != nil {
		return fmt.Errorf("registering tools: %w", err)
	}

	logger.Info("Starting Trello MCP Server",
		"name", ServerName,
		"version", ServerVersion,
		"base_url", cfg.BaseURL,
		"tools", catalog.Len(),
		"read_only", cfg.ReadOnly,
		"http", cfg.HTTPMode(),
	)

	if cfg.HTTPMode() {
		return serveHTTP(ctx, server, cfg, client, catalog.Len(), logger)
	}
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// buildCatalog assembles the built-in endpoints, any OpenAPI imports and the
// configured filters.
func buildCatalog(ctx context.Context, cfg *config.Config) (*trello.Catalog, error) {
	return trello.Load(ctx, trello.Options{
		OpenAPIFile: cfg.OpenAPISpec,
		ReadOnly:    cfg.ReadOnly,
		Categories:  cfg.Categories,
	})
}

// credentialProvider builds the lookup order for TRELLO_CREDENTIAL_SOURCE.
func credentialProvider(cfg *config.Config) credentials.Provider {
	return credentials.ForSource(cfg.CredentialSource, cfg.KeyringAccount, credentials.Credentials{
		Key:   cfg.APIKey,
		Token: cfg.APIToken,
	})
}

func verifyCredentials(ctx context.Context, provider credentials.Provider, cfg *config.Config, httpClient *http.Client, logger *slog.Logger) error {
	creds, err := provider.Credentials(ctx)
	if err != nil {
		return fmt.Errorf("resolving credentials: %w", err)
	}
	member, err := credentials.Verify(ctx, creds, cfg.BaseURL, httpClient)
	if err != nil {
		return fmt.Errorf("verifying credentials: %w", err)
	}
	logger.Info("Credentials verified", "member", member.Username)
	return nil
}

// instructions summarizes the exposed tool surface for the client.
func instructions(catalog *trello.Catalog, readOnly bool) string {
	var b strings.Builder
	b.WriteString("Trello MCP Server exposes the Trello REST API as tools named trello_<verb>_<resource>.\n\n")
	b.WriteString("Categories: " + strings.Join(catalog.Categories(), ", ") + "\n\n")
	b.WriteString(`Tips:
- Start from trello_get_member_boards (id=me) to find boards, then trello_get_board_lists to find lists.
- IDs come from earlier results; tools never guess them.
- Errors include Trello's HTTP status and message.`)
	if readOnly {
		b.WriteString("\n\nRead-only mode: only GET tools are available.")
	}
	return b.String()
}

// serveHTTP runs the Streamable HTTP transport with health and metrics
// endpoints until ctx is cancelled.
func serveHTTP(ctx context.Context, server *mcp.Server, cfg *config.Config, client *base.Client, toolCount int, logger *slog.Logger) error {
	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)

	secured := NewSecurityMiddleware(mcpHandler, logger, SecurityConfig{
		RateLimit:   cfg.RateLimit,
		MaxBodySize: cfg.MaxBodySize,
		AuthToken:   cfg.AuthToken,
	})
	defer secured.Close()

	mux := http.NewServeMux()
	mux.Handle("/mcp", secured)
	mux.HandleFunc("/health", healthHandler(client, toolCount))
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		defer recoverPanic(logger, "http server")
		logger.Info("Listening", "addr", cfg.HTTPAddr, "auth", cfg.AuthToken != "")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("Shutting down HTTP server")
		return httpServer.Shutdown(shutdownCtx)
	}
}

func healthHandler(client *base.Client, toolCount int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := client.CircuitBreakerStats()
		status := "ok"
		code := http.StatusOK
		if client.CircuitBreaker.State() == infra.CircuitOpen {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":          status,
			"version":         ServerVersion,
			"tools":           toolCount,
			"circuit_breaker": stats,
		})
	}
}
