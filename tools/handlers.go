package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/olgasafonova/trello-mcp-server/internal/endpoint"
	"github.com/olgasafonova/trello-mcp-server/metrics"
	"github.com/olgasafonova/trello-mcp-server/tracing"
)

// Invoker runs one endpoint call. *endpoint.Invoker satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, d endpoint.Descriptor, args map[string]any) (endpoint.Result, error)
}

// HandlerRegistry registers descriptors as MCP tools backed by an Invoker.
type HandlerRegistry struct {
	invoker Invoker
	logger  *slog.Logger
}

// NewHandlerRegistry creates a new handler registry.
func NewHandlerRegistry(invoker Invoker, logger *slog.Logger) *HandlerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &HandlerRegistry{
		invoker: invoker,
		logger:  logger,
	}
}

// RegisterAll registers one tool per descriptor with the MCP server.
func (h *HandlerRegistry) RegisterAll(server *mcp.Server, descriptors []endpoint.Descriptor) error {
	for _, d := range descriptors {
		if err := h.Register(server, d); err != nil {
			return err
		}
	}
	h.logger.Info("Registered all tools", "count", len(descriptors))
	return nil
}

// Register adds a single descriptor as a tool.
func (h *HandlerRegistry) Register(server *mcp.Server, d endpoint.Descriptor) error {
	spec := SpecFor(d)
	schema := InputSchema(d)

	validator, err := newArgumentValidator(spec.Name, schema)
	if err != nil {
		return err
	}

	tool := h.buildTool(spec)
	tool.InputSchema = schema
	server.AddTool(tool, h.handler(spec, d, validator))
	return nil
}

// buildTool creates an mcp.Tool from a ToolSpec.
func (h *HandlerRegistry) buildTool(spec ToolSpec) *mcp.Tool {
	annotations := &mcp.ToolAnnotations{
		Title:          spec.Title,
		ReadOnlyHint:   spec.ReadOnly,
		IdempotentHint: spec.Idempotent,
	}
	if !spec.ReadOnly {
		annotations.DestructiveHint = ptr(spec.Destructive)
	}
	if spec.OpenWorld {
		annotations.OpenWorldHint = ptr(true)
	}

	return &mcp.Tool{
		Name:        spec.Name,
		Title:       spec.Title,
		Description: spec.Description,
		Annotations: annotations,
	}
}

// handler wraps the invoker with panic recovery, metrics, tracing and logging.
// Failures are returned as IsError results so the model sees the message.
func (h *HandlerRegistry) handler(spec ToolSpec, d endpoint.Descriptor, validator *argumentValidator) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				h.recoverPanic(spec.Name, rec)
				result = errorResult(fmt.Errorf("%s: internal error", spec.Name))
				err = nil
			}
		}()

		ctx, span := tracing.StartSpan(ctx, "mcp.tool."+spec.Name)
		defer span.End()

		tracing.AddToolAttributes(span, spec.Name, spec.Category)
		span.SetAttributes(attribute.Bool("mcp.tool.readonly", spec.ReadOnly))

		metrics.RequestInFlight.WithLabelValues(spec.Name).Inc()
		defer metrics.RequestInFlight.WithLabelValues(spec.Name).Dec()

		start := time.Now()
		res, callErr := h.call(ctx, d, validator, req)
		duration := time.Since(start)

		span.SetAttributes(attribute.Float64("mcp.tool.duration_seconds", duration.Seconds()))

		if callErr != nil {
			tracing.RecordError(span, callErr)
			metrics.RecordRequest(spec.Name, duration.Seconds(), false)
			h.logger.Warn("Tool failed", "tool", spec.Name, "error", callErr, "duration", duration)
			return errorResult(callErr), nil
		}

		text, encErr := res.JSON()
		if encErr != nil {
			metrics.RecordRequest(spec.Name, duration.Seconds(), false)
			return errorResult(fmt.Errorf("%s: encoding result: %w", spec.Name, encErr)), nil
		}

		span.SetStatus(codes.Ok, "")
		metrics.RecordRequest(spec.Name, duration.Seconds(), true)
		h.logExecution(spec, res, duration)

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(text)}},
		}, nil
	}
}

func (h *HandlerRegistry) call(ctx context.Context, d endpoint.Descriptor, validator *argumentValidator, req *mcp.CallToolRequest) (endpoint.Result, error) {
	var raw []byte
	if req != nil && req.Params != nil {
		raw = req.Params.Arguments
	}
	args, err := decodeArguments(raw)
	if err != nil {
		return endpoint.Result{}, fmt.Errorf("%s: %w", d.Name, err)
	}
	if err := validator.Validate(args); err != nil {
		return endpoint.Result{}, fmt.Errorf("%s: %w", d.Name, err)
	}
	return h.invoker.Invoke(ctx, d, args)
}

// recoverPanic logs and counts a recovered panic.
func (h *HandlerRegistry) recoverPanic(toolName string, rec any) {
	metrics.PanicsRecovered.WithLabelValues(toolName).Inc()
	h.logger.Error("Panic recovered",
		"tool", toolName,
		"panic", rec,
		"stack", string(debug.Stack()))
}

// logExecution logs tool execution details.
func (h *HandlerRegistry) logExecution(spec ToolSpec, res endpoint.Result, duration time.Duration) {
	attrs := []any{
		"tool", spec.Name,
		"method", spec.Method,
		"path", spec.Path,
		"status", res.StatusCode,
		"duration", duration,
	}
	if res.NoContent {
		attrs = append(attrs, "no_content", true)
	}
	switch v := res.Value.(type) {
	case []any:
		attrs = append(attrs, "results_count", len(v))
	case map[string]any:
		if id, ok := v["id"].(string); ok {
			attrs = append(attrs, "id", id)
		}
	}
	h.logger.Info("Tool executed", attrs...)
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}
}
