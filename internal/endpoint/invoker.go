package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"

	"github.com/olgasafonova/trello-mcp-server/internal/credentials"
	apierrors "github.com/olgasafonova/trello-mcp-server/internal/errors"
	"github.com/olgasafonova/trello-mcp-server/metrics"
	"github.com/olgasafonova/trello-mcp-server/tracing"
)

// Transport sends exactly one request. Implementations must not retry.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

// Do calls f(ctx, req).
func (f TransportFunc) Do(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Result is a normalized Trello response.
type Result struct {
	StatusCode int
	Value      any  // decoded JSON: map[string]any, []any or a scalar
	NoContent  bool // 204, empty body, or a body that is not JSON
}

// JSON renders the result for a tool reply.
func (r Result) JSON() ([]byte, error) {
	if r.NoContent {
		return json.MarshalIndent(map[string]any{
			"status":     r.StatusCode,
			"no_content": true,
		}, "", "  ")
	}
	return json.MarshalIndent(r.Value, "", "  ")
}

// Invoker executes descriptors against a Transport.
type Invoker struct {
	transport   Transport
	credentials credentials.Provider
	logger      *slog.Logger
	newID       func() string
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithLogger sets the invoker's logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Invoker) {
		i.logger = l
	}
}

// WithInvocationIDs overrides invocation ID generation.
func WithInvocationIDs(fn func() string) Option {
	return func(i *Invoker) {
		i.newID = fn
	}
}

// NewInvoker creates an Invoker. A nil provider sends no credentials.
func NewInvoker(transport Transport, provider credentials.Provider, opts ...Option) *Invoker {
	inv := &Invoker{
		transport:   transport,
		credentials: provider,
		logger:      slog.Default(),
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Invoke performs the operation described by d with the given arguments.
func (i *Invoker) Invoke(ctx context.Context, d Descriptor, args map[string]any) (Result, error) {
	invocationID := i.newID()
	ctx, span := tracing.StartSpan(ctx, "trello.api."+d.Name)
	defer span.End()
	tracing.AddEndpointAttributes(span, d.Name, d.Method, d.Path, invocationID)

	logger := i.logger.With(
		"tool", d.Name,
		"method", d.Method,
		"invocation_id", invocationID,
	)

	req, err := BuildRequest(d, args)
	if err != nil {
		var missing *apierrors.MissingParameterError
		if errors.As(err, &missing) {
			metrics.RecordMissingParameter(d.Name, missing.Parameter)
		}
		tracing.RecordError(span, err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	if i.credentials != nil {
		creds, err := i.credentials.Credentials(ctx)
		if err != nil {
			err = fmt.Errorf("%s: resolving credentials: %w", d.Name, err)
			tracing.RecordError(span, err)
			span.SetStatus(codes.Error, err.Error())
			return Result{}, err
		}
		if creds.Key != "" {
			req.Query.Set(KeyParam, creds.Key)
		}
		if creds.Token != "" {
			req.Query.Set(TokenParam, creds.Token)
		}
	}

	start := time.Now()
	resp, err := i.transport.Do(ctx, req)
	duration := time.Since(start)
	if err != nil {
		metrics.RecordAPICall(d.Name, d.Method, duration.Seconds(), 0)
		logger.Warn("Trello request failed", "path", req.Path, "duration", duration, "error", err)
		err = fmt.Errorf("%s %s: %w", d.Method, req.Path, err)
		tracing.RecordError(span, err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	metrics.RecordAPICall(d.Name, d.Method, duration.Seconds(), resp.StatusCode)
	metrics.RecordResponseSize(d.Name, len(resp.Body))
	logger.Debug("Trello request completed",
		"path", req.Path,
		"status", resp.StatusCode,
		"duration", duration)

	result, err := i.normalize(d, req, resp, logger)
	tracing.AddResponseAttributes(span, resp.StatusCode, result.NoContent)
	if err != nil {
		tracing.RecordError(span, err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}
	span.SetStatus(codes.Ok, "")
	return result, nil
}

func (i *Invoker) normalize(d Descriptor, req *Request, resp *Response, logger *slog.Logger) (Result, error) {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, &apierrors.HTTPRequestError{
			Method:     req.Method,
			Path:       req.Path,
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
		}
	}

	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(resp.Body)) == 0 {
		metrics.NoContentResponses.WithLabelValues(d.Name).Inc()
		return Result{StatusCode: resp.StatusCode, NoContent: true}, nil
	}

	value, err := decodeBody(resp.Body)
	if err != nil {
		decodeErr := &apierrors.DecodeError{Endpoint: d.Name, Err: err}
		logger.Debug("Response body is not JSON", "error", decodeErr, "size", len(resp.Body))
		metrics.NoContentResponses.WithLabelValues(d.Name).Inc()
		return Result{StatusCode: resp.StatusCode, NoContent: true}, nil
	}

	return Result{StatusCode: resp.StatusCode, Value: value}, nil
}

// decodeBody decodes one JSON value, keeping numbers as json.Number so ids and
// counts above 2^53 survive re-encoding. Trailing data is an error.
func decodeBody(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON value")
	}
	return value, nil
}
