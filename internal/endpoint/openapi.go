package endpoint

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"slices"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// OpenAPICategory is the category given to imported descriptors without tags.
const OpenAPICategory = "openapi"

// LoadOpenAPIFile reads an OpenAPI 3 document and converts its operations.
func LoadOpenAPIFile(ctx context.Context, path string) ([]Descriptor, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading OpenAPI document %s: %w", path, err)
	}
	return FromOpenAPI(doc)
}

// LoadOpenAPIData parses an OpenAPI 3 document from memory.
func LoadOpenAPIData(ctx context.Context, data []byte) ([]Descriptor, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("parsing OpenAPI document: %w", err)
	}
	return FromOpenAPI(doc)
}

// FromOpenAPI converts the GET/PUT/POST/DELETE operations of doc into
// validated descriptors. Paths are taken as relative to the Trello base URL.
// Header and cookie parameters and the key/token credentials are skipped.
func FromOpenAPI(doc *openapi3.T) ([]Descriptor, error) {
	if doc == nil || doc.Paths == nil {
		return nil, nil
	}

	var out []Descriptor
	used := make(map[string]bool)

	for _, path := range doc.Paths.InMatchingOrder() {
		item := doc.Paths.Find(path)
		if item == nil {
			continue
		}
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete} {
			op := item.GetOperation(method)
			if op == nil {
				continue
			}

			d := Descriptor{
				Name:        operationName(op, path, method, used),
				Title:       op.Summary,
				Description: operationDescription(op),
				Category:    OpenAPICategory,
				Method:      method,
				Path:        path,
			}
			used[d.Name] = true
			if len(op.Tags) > 0 {
				d.Category = strings.ToLower(op.Tags[0])
			}

			for _, ref := range mergeParameters(item.Parameters, op.Parameters) {
				if ref == nil || ref.Value == nil {
					continue
				}
				if p, ok := convertParameter(ref.Value); ok {
					d.Params = append(d.Params, p)
				}
			}

			if op.RequestBody != nil && op.RequestBody.Value != nil && (method == http.MethodPost || method == http.MethodPut) {
				d.Params = append(d.Params, bodyFields(op.RequestBody.Value)...)
				d.AlwaysSendBody = op.RequestBody.Value.Required
			}

			if err := d.Validate(); err != nil {
				return nil, fmt.Errorf("OpenAPI operation %s %s: %w", method, path, err)
			}
			out = append(out, d)
		}
	}
	return out, nil
}

var nonIdentifier = regexp.MustCompile(`[^a-z0-9]+`)

// operationName prefers operationId and falls back to method plus the
// literal path segments, e.g. "trello_get_boards_lists".
func operationName(op *openapi3.Operation, path, method string, used map[string]bool) string {
	var raw string
	if op.OperationID != "" {
		raw = op.OperationID
	} else {
		parts := []string{strings.ToLower(method)}
		for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
			if seg == "" || strings.HasPrefix(seg, "{") {
				continue
			}
			parts = append(parts, seg)
		}
		raw = strings.Join(parts, "_")
	}

	name := strings.Trim(nonIdentifier.ReplaceAllString(strings.ToLower(raw), "_"), "_")
	if !strings.HasPrefix(name, "trello_") {
		name = "trello_" + name
	}
	if !used[name] {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", name, i)
		if !used[candidate] {
			return candidate
		}
	}
}

func operationDescription(op *openapi3.Operation) string {
	if op.Description != "" {
		return op.Description
	}
	return op.Summary
}

// mergeParameters lets operation-level parameters override path-level ones.
func mergeParameters(pathParams, opParams openapi3.Parameters) openapi3.Parameters {
	overridden := make(map[string]bool)
	for _, p := range opParams {
		if p != nil && p.Value != nil {
			overridden[p.Value.In+":"+p.Value.Name] = true
		}
	}

	var merged openapi3.Parameters
	for _, p := range pathParams {
		if p != nil && p.Value != nil && !overridden[p.Value.In+":"+p.Value.Name] {
			merged = append(merged, p)
		}
	}
	return append(merged, opParams...)
}

func convertParameter(p *openapi3.Parameter) (Param, bool) {
	if p.Name == KeyParam || p.Name == TokenParam {
		return Param{}, false
	}
	var loc Location
	switch p.In {
	case openapi3.ParameterInPath:
		loc = InPath
	case openapi3.ParameterInQuery:
		loc = InQuery
	default:
		return Param{}, false
	}

	param := Param{
		Name:        p.Name,
		In:          loc,
		Type:        String,
		Required:    p.Required || loc == InPath,
		Description: p.Description,
	}
	if p.Schema != nil && p.Schema.Value != nil {
		param.Type = schemaType(p.Schema.Value)
		param.Enum = enumStrings(p.Schema.Value)
		if param.Description == "" {
			param.Description = p.Schema.Value.Description
		}
	}
	return param, true
}

func bodyFields(rb *openapi3.RequestBody) []Param {
	mt := rb.Content.Get("application/json")
	if mt == nil || mt.Schema == nil || mt.Schema.Value == nil {
		return nil
	}
	schema := mt.Schema.Value

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	slices.Sort(names)

	var out []Param
	for _, name := range names {
		if name == KeyParam || name == TokenParam {
			continue
		}
		p := Param{
			Name:     name,
			In:       InBody,
			Type:     String,
			Required: slices.Contains(schema.Required, name),
		}
		if ref := schema.Properties[name]; ref != nil && ref.Value != nil {
			p.Type = schemaType(ref.Value)
			p.Enum = enumStrings(ref.Value)
			p.Description = ref.Value.Description
		}
		out = append(out, p)
	}
	return out
}

func schemaType(s *openapi3.Schema) ParamType {
	if s.Type == nil {
		return String
	}
	for _, t := range s.Type.Slice() {
		if pt := ParamType(t); pt.valid() {
			return pt
		}
	}
	return String
}

func enumStrings(s *openapi3.Schema) []string {
	var out []string
	for _, v := range s.Enum {
		if str, ok := v.(string); ok {
			out = append(out, str)
		}
	}
	return out
}
