package endpoint

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	apierrors "github.com/olgasafonova/trello-mcp-server/internal/errors"
)

// Request is one outgoing call, ready for a Transport.
type Request struct {
	Method string
	Path   string     // resolved path, relative to the API base URL
	Query  url.Values // never contains empty or null values
	Body   []byte     // nil when no body is sent
}

// Response is what a Transport hands back.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// BuildRequest checks the required arguments and assembles the request.
// It performs no I/O and does not add credentials.
func BuildRequest(d Descriptor, args map[string]any) (*Request, error) {
	for _, p := range d.RequiredParams() {
		if !supplied(args, p) {
			return nil, apierrors.NewMissingParameterError(d.Name, p.Name)
		}
	}

	path := d.Path
	for _, p := range d.PathParams() {
		s, err := formatValue(args[p.Name])
		if err != nil {
			return nil, apierrors.NewValidationError(p.Name, "", err.Error())
		}
		path = strings.Replace(path, "{"+p.Name+"}", url.PathEscape(s), 1)
	}

	query := url.Values{}
	for _, p := range d.QueryParams() {
		v, ok := args[p.Name]
		if !ok || v == nil {
			continue
		}
		s, err := formatValue(v)
		if err != nil {
			return nil, apierrors.NewValidationError(p.Name, "", err.Error())
		}
		if s == "" {
			continue
		}
		query.Set(p.Name, s)
	}

	req := &Request{
		Method: d.Method,
		Path:   path,
		Query:  query,
	}

	if d.hasBody() {
		body := make(map[string]any)
		for _, p := range d.BodyFields() {
			if v, ok := args[p.Name]; ok && v != nil {
				body[p.Name] = v
			}
		}
		switch {
		case len(body) > 0:
			data, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("%s: encoding request body: %w", d.Name, err)
			}
			req.Body = data
		case d.AlwaysSendBody:
			req.Body = []byte("{}")
		}
	}

	return req, nil
}

// supplied reports whether a required argument is present. A path or query
// value that renders blank is missing: the path would address a different
// resource and the query builder drops empty values. Body fields keep empty
// strings.
func supplied(args map[string]any, p Param) bool {
	v, ok := args[p.Name]
	if !ok || v == nil {
		return false
	}
	if p.In == InBody {
		return true
	}
	s, err := formatValue(v)
	if err != nil {
		// Reported by the builder with the real cause.
		return true
	}
	return strings.TrimSpace(s) != ""
}

// formatValue renders an argument for a URL. Lists use Trello's comma
// convention; objects are JSON-encoded.
func formatValue(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case json.Number:
		return x.String(), nil
	case float64:
		return formatFloat(x), nil
	case float32:
		return formatFloat(float64(x)), nil
	case int:
		return strconv.Itoa(x), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case []string:
		return strings.Join(x, ","), nil
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			if item == nil {
				continue
			}
			s, err := formatValue(item)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), nil
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return "", fmt.Errorf("cannot encode %T: %w", v, err)
		}
		return string(data), nil
	}
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
