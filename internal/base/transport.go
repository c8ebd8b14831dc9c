package base

import (
	"context"
	"strings"

	"github.com/olgasafonova/trello-mcp-server/internal/endpoint"
)

// DefaultBaseURL is the Trello REST API root.
const DefaultBaseURL = "https://api.trello.com/1"

// Transport sends endpoint requests to the Trello API through a Client.
type Transport struct {
	BaseURL   string
	UserAgent string
	Client    *Client
}

// NewTransport creates a Transport rooted at baseURL.
func NewTransport(baseURL string, client *Client) *Transport {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Transport{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Client:  client,
	}
}

// Do sends req once and returns the raw response.
func (t *Transport) Do(ctx context.Context, req *endpoint.Request) (*endpoint.Response, error) {
	u := t.BaseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	resp, err := t.Client.DoRequest(ctx, RequestConfig{
		Method:    req.Method,
		URL:       u,
		Body:      req.Body,
		UserAgent: t.UserAgent,
	})
	if err != nil {
		return nil, err
	}
	return &endpoint.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
	}, nil
}
