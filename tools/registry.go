// Package tools exposes endpoint descriptors as MCP tools. Each descriptor
// becomes one tool with a generated input schema, verb-derived annotations
// and a handler that runs the endpoint invoker.
package tools

import (
	"net/http"

	"github.com/olgasafonova/trello-mcp-server/internal/endpoint"
)

// ToolSpec defines a tool's metadata for registration.
type ToolSpec struct {
	// Name is the MCP tool name (e.g., "trello_get_board")
	Name string

	// Title is the human-readable tool title for annotations
	Title string

	// Description is the tool description shown to LLMs
	Description string

	// Category groups tools by Trello resource (boards, cards, etc.)
	Category string

	// Method and Path identify the Trello endpoint
	Method string
	Path   string

	// ReadOnly indicates the tool doesn't modify Trello state
	ReadOnly bool

	// Destructive indicates the tool can delete data
	Destructive bool

	// Idempotent indicates repeated calls have the same effect
	Idempotent bool

	// OpenWorld indicates the tool accesses external resources
	OpenWorld bool
}

// SpecFor derives a ToolSpec from a descriptor. Hints follow HTTP verb
// semantics: GET is read-only, PUT and DELETE are idempotent, DELETE is
// destructive.
func SpecFor(d endpoint.Descriptor) ToolSpec {
	spec := ToolSpec{
		Name:        d.Name,
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Method:      d.Method,
		Path:        d.Path,
		OpenWorld:   true,
	}
	if spec.Title == "" {
		spec.Title = d.Name
	}
	if spec.Description == "" {
		spec.Description = d.Method + " " + d.Path
	}

	switch d.Method {
	case http.MethodGet:
		spec.ReadOnly = true
		spec.Idempotent = true
	case http.MethodPut:
		spec.Idempotent = true
	case http.MethodDelete:
		spec.Destructive = true
		spec.Idempotent = true
	}
	return spec
}

// ptr is a helper to create a pointer to a value.
func ptr[T any](v T) *T {
	return &v
}
