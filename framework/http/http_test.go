package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	gohttp "github.com/km-arc/go-singleton/framework/http"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func newJSONRequest(t *testing.T, body string) *gohttp.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return gohttp.NewRequest(req)
}

func newResponse(t *testing.T) (*gohttp.Response, *httptest.ResponseRecorder) {
	t.Helper()
	rr := httptest.NewRecorder()
	return gohttp.NewResponse(rr), rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&m); err != nil {
		t.Fatalf("decodeJSON: %v", err)
	}
	return m
}

// ── Request ──────────────────────────────────────────────────────────────────

func TestRequest_BindJSON(t *testing.T) {
	var p struct {
		Message string `json:"message"`
	}
	if err := newJSONRequest(t, `{"message":"hello"}`).Bind(&p); err != nil {
		t.Fatalf("Bind error: %v", err)
	}
	if p.Message != "hello" {
		t.Errorf("Message: got %q want %q", p.Message, "hello")
	}
}

func TestRequest_BindJSON_EmptyBody(t *testing.T) {
	var v any
	if err := newJSONRequest(t, "").Bind(&v); err == nil {
		t.Error("expected error for empty body, got nil")
	}
}

func TestRequest_BindJSON_InvalidJSON(t *testing.T) {
	var v map[string]any
	if err := newJSONRequest(t, `{bad json}`).Bind(&v); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestRequest_BindForm(t *testing.T) {
	var p struct {
		Message string `json:"message"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(url.Values{"message": {"hi"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if err := gohttp.NewRequest(req).Bind(&p); err != nil {
		t.Fatalf("Bind form error: %v", err)
	}
	if p.Message != "hi" {
		t.Errorf("Message: got %q want %q", p.Message, "hi")
	}
}

func TestRequest_Query(t *testing.T) {
	req := gohttp.NewRequest(httptest.NewRequest(http.MethodGet, "/?kind=audit", nil))
	if got := req.Query("kind"); got != "audit" {
		t.Errorf("Query: got %q", got)
	}
	if got := req.Query("missing", "all"); got != "all" {
		t.Errorf("Query fallback: got %q", got)
	}
}

func TestRequest_RouteParam(t *testing.T) {
	r := chi.NewRouter()
	var got string
	r.Get("/audit/{file}", func(w http.ResponseWriter, req *http.Request) {
		got = gohttp.NewRequest(req).RouteParam("file")
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/audit/a.log", nil))

	if got != "a.log" {
		t.Errorf("RouteParam: got %q want a.log", got)
	}
}

func TestRequest_Header(t *testing.T) {
	raw := httptest.NewRequest(http.MethodGet, "/", nil)
	raw.Header.Set("X-Request-Id", "abc")
	if got := gohttp.NewRequest(raw).Header("X-Request-Id"); got != "abc" {
		t.Errorf("Header: got %q", got)
	}
}

// ── Response ─────────────────────────────────────────────────────────────────

func TestResponse_JSON(t *testing.T) {
	res, rr := newResponse(t)
	res.JSON(http.StatusOK, map[string]any{"key": "val"})

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q want application/json", ct)
	}
	if m := decodeJSON(t, rr); m["key"] != "val" {
		t.Errorf("body key: got %v want val", m["key"])
	}
}

func TestResponse_SuccessAndCreated(t *testing.T) {
	res, rr := newResponse(t)
	res.Success(map[string]any{"id": float64(1)})
	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d want 200", rr.Code)
	}
	data, ok := decodeJSON(t, rr)["data"].(map[string]any)
	if !ok || data["id"] != float64(1) {
		t.Errorf("data envelope: got %v", data)
	}

	res, rr = newResponse(t)
	res.Created("x")
	if rr.Code != http.StatusCreated {
		t.Errorf("status: got %d want 201", rr.Code)
	}
}

func TestResponse_ErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		call   func(*gohttp.Response)
		status int
		msg    string
	}{
		{"Error", func(r *gohttp.Response) { r.Error(http.StatusConflict, "conflict") }, http.StatusConflict, "conflict"},
		{"BadRequest", func(r *gohttp.Response) { r.BadRequest() }, http.StatusBadRequest, "Bad Request."},
		{"NotFound", func(r *gohttp.Response) { r.NotFound("nope") }, http.StatusNotFound, "nope"},
		{"ServerError", func(r *gohttp.Response) { r.ServerError() }, http.StatusInternalServerError, "Server Error."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, rr := newResponse(t)
			tt.call(res)
			if rr.Code != tt.status {
				t.Errorf("status: got %d want %d", rr.Code, tt.status)
			}
			if m := decodeJSON(t, rr); m["message"] != tt.msg {
				t.Errorf("message: got %v want %q", m["message"], tt.msg)
			}
		})
	}
}
