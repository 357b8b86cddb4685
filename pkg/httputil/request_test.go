package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecodeJSONKeepsNumbers(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Bob","age":30,"big":9007199254740993}`))

	var body map[string]any
	if err := DecodeJSON(req, &body); err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}
	if body["name"] != "Bob" {
		t.Errorf("name = %v", body["name"])
	}
	if n, ok := body["big"].(json.Number); !ok || n.String() != "9007199254740993" {
		t.Errorf("big = %#v, want json.Number 9007199254740993", body["big"])
	}

	bad := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	if err := DecodeJSON(bad, &body); err == nil {
		t.Errorf("expected error for truncated body")
	}
}

func TestQueryParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=2&perPage=abc&sort=-created&skipTotal=1&flag=maybe", nil)

	if got := QueryParam(req, "sort", ""); got != "-created" {
		t.Errorf("QueryParam(sort) = %q", got)
	}
	if got := QueryParam(req, "filter", "none"); got != "none" {
		t.Errorf("QueryParam(filter) = %q", got)
	}

	intTests := []struct {
		key  string
		def  int
		want int
	}{
		{"page", 1, 2},
		{"perPage", 30, 30},
		{"missing", 7, 7},
	}
	for _, tt := range intTests {
		t.Run("int_"+tt.key, func(t *testing.T) {
			if got := QueryParamInt(req, tt.key, tt.def); got != tt.want {
				t.Errorf("QueryParamInt(%s) = %d, want %d", tt.key, got, tt.want)
			}
		})
	}

	if !QueryParamBool(req, "skipTotal", false) {
		t.Errorf("skipTotal=1 should be true")
	}
	if QueryParamBool(req, "flag", false) {
		t.Errorf("unknown values fall back to the default")
	}
	if !QueryParamBool(req, "missing", true) {
		t.Errorf("missing values fall back to the default")
	}
}
