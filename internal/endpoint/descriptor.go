// Package endpoint implements the generic REST invocation layer behind every
// Trello tool: a Descriptor declares one HTTP operation, and the Invoker turns
// a descriptor plus caller arguments into exactly one HTTP request.
package endpoint

import (
	"fmt"
	"net/http"
	"regexp"
	"slices"
	"strings"
)

// Location says where a parameter travels in the outgoing request.
type Location string

const (
	InPath  Location = "path"
	InQuery Location = "query"
	InBody  Location = "body"
)

// ParamType is the JSON type advertised for a parameter.
type ParamType string

const (
	String  ParamType = "string"
	Boolean ParamType = "boolean"
	Integer ParamType = "integer"
	Number  ParamType = "number"
	Array   ParamType = "array"
	Object  ParamType = "object"
)

func (t ParamType) valid() bool {
	switch t {
	case String, Boolean, Integer, Number, Array, Object:
		return true
	}
	return false
}

// Reserved query names filled from the credential provider.
const (
	KeyParam   = "key"
	TokenParam = "token"
)

// Param describes one named argument of an endpoint.
type Param struct {
	Name        string
	In          Location
	Type        ParamType
	Required    bool
	Description string
	Enum        []string
}

// PathParam declares a required path placeholder value.
func PathParam(name, description string) Param {
	return Param{Name: name, In: InPath, Type: String, Required: true, Description: description}
}

// QueryParam declares an optional query-string parameter.
func QueryParam(name string, typ ParamType, description string) Param {
	return Param{Name: name, In: InQuery, Type: typ, Description: description}
}

// BodyField declares an optional JSON body field.
func BodyField(name string, typ ParamType, description string) Param {
	return Param{Name: name, In: InBody, Type: typ, Description: description}
}

// Require returns a copy of p marked as required.
func (p Param) Require() Param {
	p.Required = true
	return p
}

// OneOf returns a copy of p restricted to the given values.
func (p Param) OneOf(values ...string) Param {
	p.Enum = values
	return p
}

// Descriptor declares one Trello REST operation. Descriptors are static data:
// build them once and share them freely between goroutines.
type Descriptor struct {
	// Name is the tool name, e.g. "trello_get_card".
	Name string

	// Title is the human-readable name shown in tool annotations.
	Title string

	// Description is shown to the LLM when it picks a tool.
	Description string

	// Category groups related endpoints (boards, cards, ...).
	Category string

	// Method is one of GET, PUT, POST or DELETE.
	Method string

	// Path is the template relative to the API base, e.g. "/cards/{id}".
	Path string

	Params []Param

	// AlwaysSendBody sends "{}" when no body field was supplied.
	AlwaysSendBody bool
}

var placeholderPattern = regexp.MustCompile(`\{([^{}/]+)\}`)

// Placeholders returns the placeholder names in the order the template uses them.
func (d Descriptor) Placeholders() []string {
	matches := placeholderPattern.FindAllStringSubmatch(d.Path, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// PathParams returns the path parameters in template order.
func (d Descriptor) PathParams() []Param {
	var out []Param
	for _, name := range d.Placeholders() {
		if p, ok := d.Param(name); ok && p.In == InPath {
			out = append(out, p)
		}
	}
	return out
}

// QueryParams returns the query parameters in declaration order.
func (d Descriptor) QueryParams() []Param {
	return d.paramsIn(InQuery)
}

// BodyFields returns the JSON body fields in declaration order.
func (d Descriptor) BodyFields() []Param {
	return d.paramsIn(InBody)
}

// RequiredParams returns every parameter that must be supplied.
func (d Descriptor) RequiredParams() []Param {
	var out []Param
	for _, p := range d.Params {
		if p.Required {
			out = append(out, p)
		}
	}
	return out
}

// Param looks up a parameter by name.
func (d Descriptor) Param(name string) (Param, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// ReadOnly reports whether the endpoint only reads Trello state.
func (d Descriptor) ReadOnly() bool {
	return d.Method == http.MethodGet
}

func (d Descriptor) paramsIn(loc Location) []Param {
	var out []Param
	for _, p := range d.Params {
		if p.In == loc {
			out = append(out, p)
		}
	}
	return out
}

func (d Descriptor) hasBody() bool {
	return d.Method == http.MethodPost || d.Method == http.MethodPut
}

// Validate checks that the descriptor is internally consistent.
func (d Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("descriptor for %s %s: name is required", d.Method, d.Path)
	}
	switch d.Method {
	case http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete:
	default:
		return fmt.Errorf("%s: unsupported method %q", d.Name, d.Method)
	}
	if !strings.HasPrefix(d.Path, "/") {
		return fmt.Errorf("%s: path %q must start with /", d.Name, d.Path)
	}
	if d.AlwaysSendBody && !d.hasBody() {
		return fmt.Errorf("%s: %s requests cannot carry a body", d.Name, d.Method)
	}

	seen := make(map[string]bool, len(d.Params))
	for _, p := range d.Params {
		if p.Name == "" {
			return fmt.Errorf("%s: parameter with empty name", d.Name)
		}
		if p.Name == KeyParam || p.Name == TokenParam {
			return fmt.Errorf("%s: parameter %q is reserved for credentials", d.Name, p.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("%s: duplicate parameter %q", d.Name, p.Name)
		}
		seen[p.Name] = true
		if !p.Type.valid() {
			return fmt.Errorf("%s: parameter %q has invalid type %q", d.Name, p.Name, p.Type)
		}
		switch p.In {
		case InPath:
			if !p.Required {
				return fmt.Errorf("%s: path parameter %q must be required", d.Name, p.Name)
			}
		case InQuery:
		case InBody:
			if !d.hasBody() {
				return fmt.Errorf("%s: body field %q on a %s endpoint", d.Name, p.Name, d.Method)
			}
		default:
			return fmt.Errorf("%s: parameter %q has invalid location %q", d.Name, p.Name, p.In)
		}
	}

	placeholders := d.Placeholders()
	for i, name := range placeholders {
		if slices.Contains(placeholders[:i], name) {
			return fmt.Errorf("%s: placeholder {%s} appears twice", d.Name, name)
		}
		p, ok := d.Param(name)
		if !ok || p.In != InPath {
			return fmt.Errorf("%s: placeholder {%s} has no path parameter", d.Name, name)
		}
	}
	for _, p := range d.paramsIn(InPath) {
		if !slices.Contains(placeholders, p.Name) {
			return fmt.Errorf("%s: path parameter %q not used in %s", d.Name, p.Name, d.Path)
		}
	}
	return nil
}
