package endpoint

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"sync"
	"testing"

	"github.com/olgasafonova/trello-mcp-server/internal/credentials"
	apierrors "github.com/olgasafonova/trello-mcp-server/internal/errors"
)

// fakeTransport records requests and replies with a canned response.
type fakeTransport struct {
	mu       sync.Mutex
	requests []*Request
	resp     *Response
	err      error
}

func (f *fakeTransport) Do(_ context.Context, req *Request) (*Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeTransport) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func jsonResponse(status int, body string) *Response {
	return &Response{StatusCode: status, Header: http.Header{}, Body: []byte(body)}
}

var testCreds = credentials.Static{Key: "test-key", Token: "test-token"}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestInvoker(ft *fakeTransport) *Invoker {
	return NewInvoker(ft, testCreds, WithLogger(quietLogger()), WithInvocationIDs(func() string { return "test-id" }))
}

var (
	getBoard = Descriptor{
		Name:   "trello_get_board",
		Method: http.MethodGet,
		Path:   "/boards/{id}",
		Params: []Param{
			PathParam("id", "Board ID"),
			QueryParam("actions", String, "Actions to include"),
			QueryParam("cards", String, "Cards to include").OneOf("all", "closed", "none", "open", "visible"),
			QueryParam("labels", Boolean, "Include labels"),
			QueryParam("fields", Array, "Fields to return"),
		},
	}

	getCard = Descriptor{
		Name:   "trello_get_card",
		Method: http.MethodGet,
		Path:   "/cards/{id}",
		Params: []Param{PathParam("id", "Card ID")},
	}

	createCard = Descriptor{
		Name:   "trello_create_card",
		Method: http.MethodPost,
		Path:   "/cards",
		Params: []Param{
			QueryParam("idList", String, "List ID").Require(),
			QueryParam("pos", String, "Position"),
			BodyField("name", String, "Card name"),
			BodyField("desc", String, "Card description"),
		},
	}

	updateCard = Descriptor{
		Name:   "trello_update_card",
		Method: http.MethodPut,
		Path:   "/cards/{id}",
		Params: []Param{
			PathParam("id", "Card ID"),
			QueryParam("closed", Boolean, "Archive the card"),
			QueryParam("pos", Number, "Position"),
			BodyField("name", String, "Card name"),
			BodyField("desc", String, "Card description"),
		},
	}

	deleteCard = Descriptor{
		Name:   "trello_delete_card",
		Method: http.MethodDelete,
		Path:   "/cards/{id}",
		Params: []Param{PathParam("id", "Card ID")},
	}

	setCustomField = Descriptor{
		Name:           "trello_update_card_custom_field",
		Method:         http.MethodPut,
		Path:           "/cards/{idCard}/customField/{idCustomField}/item",
		AlwaysSendBody: true,
		Params: []Param{
			PathParam("idCard", "Card ID"),
			PathParam("idCustomField", "Custom field ID"),
			BodyField("value", Object, "New value"),
		},
	}
)

func TestInvoke_MissingPathParam(t *testing.T) {
	ft := &fakeTransport{resp: jsonResponse(200, `{}`)}
	inv := newTestInvoker(ft)

	tests := []struct {
		name string
		args map[string]any
	}{
		{"absent", map[string]any{}},
		{"null", map[string]any{"id": nil}},
		{"blank", map[string]any{"id": "  "}},
		{"nil map", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := inv.Invoke(context.Background(), getBoard, tt.args)

			var missing *apierrors.MissingParameterError
			if !errors.As(err, &missing) {
				t.Fatalf("expected MissingParameterError, got %v", err)
			}
			if missing.Parameter != "id" || missing.Endpoint != "trello_get_board" {
				t.Errorf("got %+v", missing)
			}
		})
	}

	if ft.calls() != 0 {
		t.Errorf("transport called %d times, want 0", ft.calls())
	}
}

func TestInvoke_MissingRequiredQueryParam(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{"absent", map[string]any{"name": "Buy milk"}},
		{"null", map[string]any{"idList": nil, "name": "Buy milk"}},
		{"empty string", map[string]any{"idList": "", "name": "Buy milk"}},
		{"blank string", map[string]any{"idList": "   ", "name": "Buy milk"}},
		{"empty list", map[string]any{"idList": []any{}, "name": "Buy milk"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fakeTransport{resp: jsonResponse(200, `{}`)}
			_, err := newTestInvoker(ft).Invoke(context.Background(), createCard, tt.args)

			var missing *apierrors.MissingParameterError
			if !errors.As(err, &missing) || missing.Parameter != "idList" {
				t.Fatalf("expected MissingParameterError for idList, got %v", err)
			}
			if ft.calls() != 0 {
				t.Errorf("transport called %d times, want 0", ft.calls())
			}
		})
	}
}

func TestInvoke_RequiredBodyFieldKeepsEmptyString(t *testing.T) {
	renameField := Descriptor{
		Name:   "trello_update_custom_field",
		Method: http.MethodPut,
		Path:   "/customFields/{id}",
		Params: []Param{
			PathParam("id", "Custom field ID"),
			BodyField("name", String, "Field name").Require(),
		},
	}
	ft := &fakeTransport{resp: jsonResponse(200, `{}`)}
	_, err := newTestInvoker(ft).Invoke(context.Background(), renameField, map[string]any{"id": "cf1", "name": ""})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if got := string(ft.requests[0].Body); got != `{"name":""}` {
		t.Errorf("body = %s", got)
	}
}

func TestInvoke_UnsetOptionalParamsOmitted(t *testing.T) {
	ft := &fakeTransport{resp: jsonResponse(200, `{"id":"b1"}`)}
	_, err := newTestInvoker(ft).Invoke(context.Background(), getBoard, map[string]any{"id": "b1"})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	req := ft.requests[0]
	if req.Path != "/boards/b1" {
		t.Errorf("path = %q, want /boards/b1", req.Path)
	}
	want := map[string][]string{"key": {"test-key"}, "token": {"test-token"}}
	if !reflect.DeepEqual(map[string][]string(req.Query), want) {
		t.Errorf("query = %v, want only credentials", req.Query)
	}
	if req.Body != nil {
		t.Errorf("GET should have no body, got %q", req.Body)
	}
}

func TestInvoke_QueryStringification(t *testing.T) {
	ft := &fakeTransport{resp: jsonResponse(200, `{}`)}
	_, err := newTestInvoker(ft).Invoke(context.Background(), getBoard, map[string]any{
		"id":      "b1",
		"actions": "",
		"cards":   "open",
		"labels":  true,
		"fields":  []any{"name", "desc", nil},
	})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	q := ft.requests[0].Query
	if q.Has("actions") {
		t.Error("empty string query values should be omitted")
	}
	if q.Get("cards") != "open" {
		t.Errorf("cards = %q", q.Get("cards"))
	}
	if q.Get("labels") != "true" {
		t.Errorf("labels = %q, want true", q.Get("labels"))
	}
	if q.Get("fields") != "name,desc" {
		t.Errorf("fields = %q, want name,desc", q.Get("fields"))
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "abc", "abc"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"integral float", float64(3), "3"},
		{"large integral float", float64(1700000000000), "1700000000000"},
		{"fraction", 16384.5, "16384.5"},
		{"negative", float64(-2), "-2"},
		{"int", 42, "42"},
		{"int64", int64(7), "7"},
		{"json number", json.Number("12"), "12"},
		{"string slice", []string{"a", "b"}, "a,b"},
		{"any slice", []any{"a", float64(2), true}, "a,2,true"},
		{"object", map[string]any{"text": "hi"}, `{"text":"hi"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatValue(tt.in)
			if err != nil {
				t.Fatalf("formatValue failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("formatValue(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestInvoke_PathEscaping(t *testing.T) {
	ft := &fakeTransport{resp: jsonResponse(200, `{}`)}
	_, err := newTestInvoker(ft).Invoke(context.Background(), getCard, map[string]any{"id": "a/b c?"})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if got := ft.requests[0].Path; got != "/cards/a%2Fb%20c%3F" {
		t.Errorf("path = %q", got)
	}
}

func TestInvoke_IdempotentGet(t *testing.T) {
	ft := &fakeTransport{resp: jsonResponse(200, `{"id":"b1","name":"Roadmap","lists":[{"id":"l1"}]}`)}
	inv := newTestInvoker(ft)
	args := map[string]any{"id": "b1"}

	first, err := inv.Invoke(context.Background(), getBoard, args)
	if err != nil {
		t.Fatalf("first Invoke failed: %v", err)
	}
	second, err := inv.Invoke(context.Background(), getBoard, args)
	if err != nil {
		t.Fatalf("second Invoke failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ:\n%#v\n%#v", first, second)
	}
	if !reflect.DeepEqual(ft.requests[0], ft.requests[1]) {
		t.Error("identical calls should produce identical requests")
	}
}

func TestInvoke_NoContent(t *testing.T) {
	tests := []struct {
		name string
		resp *Response
	}{
		{"204 empty", jsonResponse(http.StatusNoContent, "")},
		{"200 empty", jsonResponse(http.StatusOK, "")},
		{"200 whitespace", jsonResponse(http.StatusOK, " \n\t")},
		{"200 not json", jsonResponse(http.StatusOK, "OK")},
		{"200 trailing data", jsonResponse(http.StatusOK, `{"id":"c1"} extra`)},
		{"200 two values", jsonResponse(http.StatusOK, `{} {}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fakeTransport{resp: tt.resp}
			result, err := newTestInvoker(ft).Invoke(context.Background(), deleteCard, map[string]any{"id": "c1"})
			if err != nil {
				t.Fatalf("Invoke failed: %v", err)
			}
			if !result.NoContent {
				t.Error("expected no-content marker")
			}
			if result.Value != nil {
				t.Errorf("Value = %v, want nil", result.Value)
			}
			if result.StatusCode != tt.resp.StatusCode {
				t.Errorf("StatusCode = %d, want %d", result.StatusCode, tt.resp.StatusCode)
			}
		})
	}
}

func TestInvoke_HTTPError(t *testing.T) {
	ft := &fakeTransport{resp: jsonResponse(http.StatusNotFound, "The requested resource was not found.")}
	result, err := newTestInvoker(ft).Invoke(context.Background(), getCard, map[string]any{"id": "missing"})

	var httpErr *apierrors.HTTPRequestError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPRequestError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", httpErr.StatusCode)
	}
	if httpErr.Method != http.MethodGet || httpErr.Path != "/cards/missing" {
		t.Errorf("error = %+v", httpErr)
	}
	if string(httpErr.Body) != "The requested resource was not found." {
		t.Errorf("Body = %q", httpErr.Body)
	}
	if !apierrors.IsNotFound(err) {
		t.Error("IsNotFound should be true")
	}
	if result.Value != nil || result.NoContent {
		t.Errorf("no result expected on error, got %+v", result)
	}
}

func TestInvoke_HTTPErrorWithJSONBodyNotDecoded(t *testing.T) {
	ft := &fakeTransport{resp: jsonResponse(http.StatusUnauthorized, `{"message":"invalid token"}`)}
	_, err := newTestInvoker(ft).Invoke(context.Background(), getCard, map[string]any{"id": "c1"})

	if !apierrors.IsUnauthorized(err) {
		t.Fatalf("expected 401 HTTPRequestError, got %v", err)
	}
}

func TestInvoke_CreateCard(t *testing.T) {
	canned := `{"id":"c1","name":"Buy milk","idList":"abc123","labels":[]}`
	ft := &fakeTransport{resp: jsonResponse(200, canned)}

	result, err := newTestInvoker(ft).Invoke(context.Background(), createCard, map[string]any{
		"idList": "abc123",
		"name":   "Buy milk",
	})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	if ft.calls() != 1 {
		t.Fatalf("transport called %d times, want 1", ft.calls())
	}
	req := ft.requests[0]
	if req.Method != http.MethodPost || req.Path != "/cards" {
		t.Errorf("request = %s %s, want POST /cards", req.Method, req.Path)
	}
	if string(req.Body) != `{"name":"Buy milk"}` {
		t.Errorf("body = %s", req.Body)
	}
	if req.Query.Get("idList") != "abc123" || req.Query.Get("key") != "test-key" || req.Query.Get("token") != "test-token" {
		t.Errorf("query = %v", req.Query)
	}
	if len(req.Query) != 3 {
		t.Errorf("query has unexpected entries: %v", req.Query)
	}

	var want any
	if err := json.Unmarshal([]byte(canned), &want); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(result.Value, want) {
		t.Errorf("Value = %#v, want %#v", result.Value, want)
	}
}

func TestInvoke_KeepsLargeNumbers(t *testing.T) {
	ft := &fakeTransport{resp: jsonResponse(200, `{"id":"c1","n":9007199254740993,"pos":16384.5,"badges":{"votes":0}}`)}
	result, err := newTestInvoker(ft).Invoke(context.Background(), getCard, map[string]any{"id": "c1"})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	data, err := json.Marshal(result.Value)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"badges":{"votes":0},"id":"c1","n":9007199254740993,"pos":16384.5}`
	if string(data) != want {
		t.Errorf("re-encoded = %s, want %s", data, want)
	}
}

func TestInvoke_GetCardByID(t *testing.T) {
	ft := &fakeTransport{resp: jsonResponse(200, `{"id":"64513f05ce82b6b80d0cf85e"}`)}
	_, err := newTestInvoker(ft).Invoke(context.Background(), getCard, map[string]any{"id": "64513f05ce82b6b80d0cf85e"})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	if ft.calls() != 1 {
		t.Fatalf("transport called %d times, want 1", ft.calls())
	}
	req := ft.requests[0]
	if req.Method != http.MethodGet {
		t.Errorf("method = %q, want GET", req.Method)
	}
	if req.Path != "/cards/64513f05ce82b6b80d0cf85e" {
		t.Errorf("path = %q", req.Path)
	}
	if req.Body != nil {
		t.Errorf("body = %q, want none", req.Body)
	}
}

func TestInvoke_UpdateCardBodyAndQuery(t *testing.T) {
	ft := &fakeTransport{resp: jsonResponse(200, `{"id":"c1"}`)}
	_, err := newTestInvoker(ft).Invoke(context.Background(), updateCard, map[string]any{
		"id":     "c1",
		"desc":   "",
		"closed": false,
		"pos":    float64(2),
	})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	req := ft.requests[0]
	if string(req.Body) != `{"desc":""}` {
		t.Errorf("empty strings must be kept in the body, got %s", req.Body)
	}
	if req.Query.Get("closed") != "false" || req.Query.Get("pos") != "2" {
		t.Errorf("query = %v", req.Query)
	}
}

func TestInvoke_BodyOmittedWhenNoFields(t *testing.T) {
	ft := &fakeTransport{resp: jsonResponse(200, `{"id":"c1"}`)}
	_, err := newTestInvoker(ft).Invoke(context.Background(), updateCard, map[string]any{"id": "c1", "name": nil})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if ft.requests[0].Body != nil {
		t.Errorf("body = %q, want nil", ft.requests[0].Body)
	}
}

func TestInvoke_AlwaysSendBody(t *testing.T) {
	ft := &fakeTransport{resp: jsonResponse(200, `{}`)}
	_, err := newTestInvoker(ft).Invoke(context.Background(), setCustomField, map[string]any{
		"idCard":        "c1",
		"idCustomField": "f1",
	})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	req := ft.requests[0]
	if string(req.Body) != "{}" {
		t.Errorf("body = %q, want {}", req.Body)
	}
	if req.Path != "/cards/c1/customField/f1/item" {
		t.Errorf("path = %q", req.Path)
	}
}

func TestInvoke_TransportError(t *testing.T) {
	boom := errors.New("connection reset")
	ft := &fakeTransport{err: boom}

	_, err := newTestInvoker(ft).Invoke(context.Background(), getCard, map[string]any{"id": "c1"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
	if ft.calls() != 1 {
		t.Errorf("transport called %d times, want exactly 1", ft.calls())
	}
}

func TestInvoke_CredentialError(t *testing.T) {
	ft := &fakeTransport{resp: jsonResponse(200, `{}`)}
	inv := NewInvoker(ft, credentials.Static{}, WithLogger(quietLogger()))

	_, err := inv.Invoke(context.Background(), getCard, map[string]any{"id": "c1"})
	if !errors.Is(err, credentials.ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials, got %v", err)
	}
	if ft.calls() != 0 {
		t.Errorf("transport called %d times, want 0", ft.calls())
	}
}

func TestInvoke_NilProviderSendsNoCredentials(t *testing.T) {
	ft := &fakeTransport{resp: jsonResponse(200, `{}`)}
	inv := NewInvoker(ft, nil, WithLogger(quietLogger()))

	if _, err := inv.Invoke(context.Background(), getCard, map[string]any{"id": "c1"}); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if len(ft.requests[0].Query) != 0 {
		t.Errorf("query = %v, want empty", ft.requests[0].Query)
	}
}

func TestInvoke_IgnoresUndeclaredArguments(t *testing.T) {
	ft := &fakeTransport{resp: jsonResponse(200, `{}`)}
	_, err := newTestInvoker(ft).Invoke(context.Background(), getCard, map[string]any{"id": "c1", "bogus": "x"})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if ft.requests[0].Query.Has("bogus") {
		t.Error("undeclared arguments must not reach the request")
	}
}

func TestResult_JSON(t *testing.T) {
	data, err := Result{StatusCode: 204, NoContent: true}.JSON()
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got["status"] != float64(204) || got["no_content"] != true {
		t.Errorf("no-content JSON = %s", data)
	}

	data, err = Result{StatusCode: 200, Value: []any{"a"}}.JSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[\n  \"a\"\n]" {
		t.Errorf("value JSON = %q", data)
	}
}

func TestTransportFunc(t *testing.T) {
	called := false
	tf := TransportFunc(func(ctx context.Context, req *Request) (*Response, error) {
		called = true
		return jsonResponse(200, `[]`), nil
	})

	result, err := NewInvoker(tf, nil).Invoke(context.Background(), getCard, map[string]any{"id": "c1"})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if !called {
		t.Error("TransportFunc was not called")
	}
	if !reflect.DeepEqual(result.Value, []any{}) {
		t.Errorf("Value = %#v", result.Value)
	}
}
