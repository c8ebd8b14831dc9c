package endpoint

import (
	"net/http"
	"reflect"
	"strings"
	"testing"
)

func TestDescriptor_Validate(t *testing.T) {
	tests := []struct {
		name    string
		d       Descriptor
		wantErr string
	}{
		{
			name: "valid get",
			d:    getBoard,
		},
		{
			name: "valid post with required query",
			d:    createCard,
		},
		{
			name: "valid always-send-body",
			d:    setCustomField,
		},
		{
			name: "placeholders with dash and dot",
			d: Descriptor{Name: "x", Method: http.MethodGet, Path: "/cards/{id-card}/actions/{action.id}",
				Params: []Param{PathParam("id-card", "Card ID"), PathParam("action.id", "Action ID")}},
		},
		{
			name:    "missing name",
			d:       Descriptor{Method: http.MethodGet, Path: "/boards"},
			wantErr: "name is required",
		},
		{
			name:    "unsupported method",
			d:       Descriptor{Name: "x", Method: http.MethodPatch, Path: "/boards"},
			wantErr: "unsupported method",
		},
		{
			name:    "relative path",
			d:       Descriptor{Name: "x", Method: http.MethodGet, Path: "boards"},
			wantErr: "must start with /",
		},
		{
			name:    "placeholder without param",
			d:       Descriptor{Name: "x", Method: http.MethodGet, Path: "/boards/{id}"},
			wantErr: "has no path parameter",
		},
		{
			name: "path param without placeholder",
			d: Descriptor{Name: "x", Method: http.MethodGet, Path: "/boards",
				Params: []Param{PathParam("id", "")}},
			wantErr: "not used in",
		},
		{
			name: "duplicate placeholder",
			d: Descriptor{Name: "x", Method: http.MethodGet, Path: "/boards/{id}/{id}",
				Params: []Param{PathParam("id", "")}},
			wantErr: "appears twice",
		},
		{
			name: "optional path param",
			d: Descriptor{Name: "x", Method: http.MethodGet, Path: "/boards/{id}",
				Params: []Param{{Name: "id", In: InPath, Type: String}}},
			wantErr: "must be required",
		},
		{
			name: "placeholder bound to query param",
			d: Descriptor{Name: "x", Method: http.MethodGet, Path: "/boards/{id}",
				Params: []Param{QueryParam("id", String, "")}},
			wantErr: "has no path parameter",
		},
		{
			name: "duplicate param",
			d: Descriptor{Name: "x", Method: http.MethodGet, Path: "/boards",
				Params: []Param{QueryParam("fields", String, ""), QueryParam("fields", Array, "")}},
			wantErr: "duplicate parameter",
		},
		{
			name: "reserved credential name",
			d: Descriptor{Name: "x", Method: http.MethodGet, Path: "/boards",
				Params: []Param{QueryParam("token", String, "")}},
			wantErr: "reserved",
		},
		{
			name: "body on get",
			d: Descriptor{Name: "x", Method: http.MethodGet, Path: "/boards",
				Params: []Param{BodyField("name", String, "")}},
			wantErr: "body field",
		},
		{
			name:    "always-send-body on delete",
			d:       Descriptor{Name: "x", Method: http.MethodDelete, Path: "/boards", AlwaysSendBody: true},
			wantErr: "cannot carry a body",
		},
		{
			name: "invalid type",
			d: Descriptor{Name: "x", Method: http.MethodGet, Path: "/boards",
				Params: []Param{QueryParam("n", ParamType("date"), "")}},
			wantErr: "invalid type",
		},
		{
			name: "invalid location",
			d: Descriptor{Name: "x", Method: http.MethodGet, Path: "/boards",
				Params: []Param{{Name: "n", In: Location("header"), Type: String}}},
			wantErr: "invalid location",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.d.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDescriptor_Views(t *testing.T) {
	d := Descriptor{
		Name:   "trello_update_check_item",
		Method: http.MethodPut,
		Path:   "/cards/{idCard}/checkItem/{idCheckItem}",
		Params: []Param{
			PathParam("idCheckItem", "Check item ID"),
			QueryParam("state", String, "State").OneOf("complete", "incomplete"),
			BodyField("name", String, "Name"),
			PathParam("idCard", "Card ID"),
			QueryParam("pos", String, "Position").Require(),
		},
	}

	names := func(ps []Param) []string {
		var out []string
		for _, p := range ps {
			out = append(out, p.Name)
		}
		return out
	}

	if got := names(d.PathParams()); !reflect.DeepEqual(got, []string{"idCard", "idCheckItem"}) {
		t.Errorf("PathParams() = %v, want template order", got)
	}
	if got := names(d.QueryParams()); !reflect.DeepEqual(got, []string{"state", "pos"}) {
		t.Errorf("QueryParams() = %v", got)
	}
	if got := names(d.BodyFields()); !reflect.DeepEqual(got, []string{"name"}) {
		t.Errorf("BodyFields() = %v", got)
	}
	if got := names(d.RequiredParams()); !reflect.DeepEqual(got, []string{"idCheckItem", "idCard", "pos"}) {
		t.Errorf("RequiredParams() = %v", got)
	}
	if p, ok := d.Param("state"); !ok || !reflect.DeepEqual(p.Enum, []string{"complete", "incomplete"}) {
		t.Errorf("Param(state) = %+v, %v", p, ok)
	}
	if _, ok := d.Param("nope"); ok {
		t.Error("Param(nope) should not be found")
	}
	if d.ReadOnly() {
		t.Error("PUT descriptor should not be read-only")
	}
	if !getCard.ReadOnly() {
		t.Error("GET descriptor should be read-only")
	}
}

func TestParamHelpersDoNotMutate(t *testing.T) {
	base := QueryParam("filter", String, "Filter")
	required := base.Require()
	limited := base.OneOf("open", "closed")

	if base.Required || base.Enum != nil {
		t.Error("helpers must return copies")
	}
	if !required.Required {
		t.Error("Require() should mark the copy required")
	}
	if len(limited.Enum) != 2 {
		t.Errorf("OneOf() enum = %v", limited.Enum)
	}
}

func TestBuildRequest_NoIO(t *testing.T) {
	req, err := BuildRequest(createCard, map[string]any{"idList": "l1", "pos": "top", "desc": "d"})
	if err != nil {
		t.Fatalf("BuildRequest failed: %v", err)
	}
	if req.Query.Has("key") || req.Query.Has("token") {
		t.Error("BuildRequest must not add credentials")
	}
	if req.Query.Get("pos") != "top" {
		t.Errorf("pos = %q", req.Query.Get("pos"))
	}
	if string(req.Body) != `{"desc":"d"}` {
		t.Errorf("body = %s", req.Body)
	}
}
