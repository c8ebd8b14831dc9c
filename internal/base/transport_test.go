package base

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/olgasafonova/trello-mcp-server/internal/endpoint"
)

func TestTransport_Do(t *testing.T) {
	var got *http.Request
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1"}`))
	}))
	defer server.Close()

	client := NewClient()
	defer client.Close()
	transport := NewTransport(server.URL+"/1/", client)
	transport.UserAgent = "trello-mcp-server/test"

	resp, err := transport.Do(context.Background(), &endpoint.Request{
		Method: http.MethodPost,
		Path:   "/cards",
		Query:  url.Values{"idList": {"abc123"}, "key": {"k"}},
		Body:   []byte(`{"name":"Buy milk"}`),
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	if got.Method != http.MethodPost {
		t.Errorf("method = %q, want POST", got.Method)
	}
	if got.URL.Path != "/1/cards" {
		t.Errorf("path = %q, want /1/cards", got.URL.Path)
	}
	if got.URL.Query().Get("idList") != "abc123" || got.URL.Query().Get("key") != "k" {
		t.Errorf("query = %q", got.URL.RawQuery)
	}
	if gotBody != `{"name":"Buy milk"}` {
		t.Errorf("body = %q", gotBody)
	}
	if got.Header.Get("User-Agent") != "trello-mcp-server/test" {
		t.Errorf("User-Agent = %q", got.Header.Get("User-Agent"))
	}
	if resp.StatusCode != http.StatusOK || string(resp.Body) != `{"id":"c1"}` {
		t.Errorf("response = %d %q", resp.StatusCode, resp.Body)
	}
}

func TestTransport_EscapedPath(t *testing.T) {
	var rawPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient()
	defer client.Close()

	_, err := NewTransport(server.URL, client).Do(context.Background(), &endpoint.Request{
		Method: http.MethodGet,
		Path:   "/search/" + url.PathEscape("a/b c"),
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if rawPath != "/search/a%2Fb%20c" {
		t.Errorf("escaped path = %q", rawPath)
	}
}

func TestNewTransport_DefaultBaseURL(t *testing.T) {
	tr := NewTransport("", NewClient())
	if tr.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", tr.BaseURL, DefaultBaseURL)
	}
}
