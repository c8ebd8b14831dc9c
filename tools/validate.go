package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	gjsonschema "github.com/google/jsonschema-go/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v5"

	apierrors "github.com/olgasafonova/trello-mcp-server/internal/errors"
)

// argumentValidator checks tool arguments against a compiled input schema.
// Presence of required parameters is left to the invoker so a missing
// argument is always reported as a MissingParameterError.
type argumentValidator struct {
	schema *jsonschema.Schema
}

func newArgumentValidator(name string, input *gjsonschema.Schema) (*argumentValidator, error) {
	shape := *input
	shape.Required = nil

	data, err := json.Marshal(&shape)
	if err != nil {
		return nil, fmt.Errorf("%s: encoding input schema: %w", name, err)
	}

	compiler := jsonschema.NewCompiler()
	resource := name + ".json"
	if err := compiler.AddResource(resource, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%s: loading input schema: %w", name, err)
	}
	compiled, err := compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("%s: compiling input schema: %w", name, err)
	}
	return &argumentValidator{schema: compiled}, nil
}

// Validate returns a *errors.ValidationError naming the first offending
// argument. args must come from encoding/json (numbers as json.Number or
// float64).
func (v *argumentValidator) Validate(args map[string]any) error {
	err := v.schema.Validate(map[string]any(args))
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return apierrors.NewValidationError("", "", err.Error())
	}
	leaf := firstLeaf(ve)
	field := strings.TrimPrefix(leaf.InstanceLocation, "/")
	if i := strings.Index(field, "/"); i >= 0 {
		field = field[:i]
	}
	return apierrors.NewValidationError(field, "", leaf.Message)
}

// firstLeaf descends to the most specific cause.
func firstLeaf(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

// decodeArguments parses raw tool arguments. Absent or null arguments yield
// an empty map.
func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	args := map[string]any{}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return args, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&args); err != nil {
		return nil, apierrors.NewValidationError("", "", "arguments must be a JSON object: "+err.Error())
	}
	return args, nil
}
