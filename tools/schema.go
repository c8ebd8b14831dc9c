package tools

import (
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/olgasafonova/trello-mcp-server/internal/endpoint"
)

// InputSchema builds the JSON Schema for a descriptor's arguments. Every
// declared parameter becomes a property; required parameters are listed in
// "required". Undeclared properties are allowed and ignored by the invoker.
func InputSchema(d endpoint.Descriptor) *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(d.Params)),
	}

	for _, p := range d.Params {
		prop := &jsonschema.Schema{Description: describe(p)}
		switch p.Type {
		case "":
			prop.Type = string(endpoint.String)
		case endpoint.Array:
			// Trello also accepts a comma-separated string for lists.
			prop.Types = []string{string(endpoint.Array), string(endpoint.String)}
		default:
			prop.Type = string(p.Type)
		}
		for _, v := range p.Enum {
			prop.Enum = append(prop.Enum, v)
		}
		schema.Properties[p.Name] = prop
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}
	return schema
}

// describe prefixes the parameter's location so models can tell path IDs
// from query options.
func describe(p endpoint.Param) string {
	switch p.In {
	case endpoint.InPath:
		return p.Description + " (path)"
	case endpoint.InBody:
		return p.Description + " (body)"
	default:
		return p.Description
	}
}
