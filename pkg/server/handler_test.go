package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ngclient/ngutils/pkg/headtags"
	"github.com/ngclient/ngutils/pkg/middleware"
	"github.com/ngclient/ngutils/pkg/snapshot"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()
	s := New(nil, append([]Option{WithLogger(quietLogger())}, opts...)...)
	return s, newHTTPTestServer(t, s)
}

func newHTTPTestServer(t *testing.T, s *Server) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path, body string) (*http.Response, string) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(data)
}

func expectStatus(t *testing.T, resp *http.Response, body string, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s: status = %d, want %d (body %s)", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want, body)
	}
}

func errorCode(t *testing.T, body string) string {
	t.Helper()
	var e struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		t.Fatalf("error body %q: %v", body, err)
	}
	return e.Code
}

func TestModelOfNewClient(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := do(t, ts, http.MethodGet, "/api/clients/c1/model", "")
	expectStatus(t, resp, body, http.StatusOK)
	if strings.TrimSpace(body) != `{"contributedTags":[],"styleclasses":null}` {
		t.Errorf("model = %s", body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestReplaceTagLifecycle(t *testing.T) {
	_, ts := newTestServer(t)
	const path = "/api/clients/c1/tags"

	icon := `{"tagName":"link","attrs":[{"name":"rel","value":"icon"},{"name":"href","value":"/a.ico"}]}`
	icon2 := `{"tagName":"link","attrs":[{"name":"rel","value":"icon"},{"name":"href","value":"/b.ico"}]}`

	tests := []struct {
		name     string
		body     string
		previous string
	}{
		{"append", `{"tagName":"link","attrName":"rel","attrValue":"icon","tag":` + icon + `}`, "null"},
		{"replace", `{"tagName":"link","attrName":"rel","attrValue":"icon","tag":` + icon2 + `}`, icon},
		{"remove", `{"tagName":"link","attrName":"rel","attrValue":"icon","tag":null}`, icon2},
		{"noop", `{"tagName":"link","attrName":"rel","attrValue":"icon"}`, "null"},
	}

	for _, tt := range tests {
		resp, body := do(t, ts, http.MethodPut, path, tt.body)
		expectStatus(t, resp, body, http.StatusOK)

		var got struct {
			Previous json.RawMessage `json:"previous"`
		}
		if err := json.Unmarshal([]byte(body), &got); err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if string(got.Previous) != tt.previous {
			t.Errorf("%s: previous = %s, want %s", tt.name, got.Previous, tt.previous)
		}
	}

	_, body := do(t, ts, http.MethodGet, "/api/clients/c1/model", "")
	if !strings.Contains(body, `"contributedTags":[]`) {
		t.Errorf("model after remove = %s", body)
	}
}

func TestReplaceTagValidation(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := do(t, ts, http.MethodPut, "/api/clients/c1/tags",
		`{"tagName":"meta","tag":{"tagName":"<script>","attrs":[]}}`)
	expectStatus(t, resp, body, http.StatusBadRequest)
	if code := errorCode(t, body); code != "N001" {
		t.Errorf("code = %q, want N001", code)
	}

	resp, body = do(t, ts, http.MethodPut, "/api/clients/c1/tags", `{"tagName":`)
	expectStatus(t, resp, body, http.StatusBadRequest)
	if code := errorCode(t, body); code != "N020" {
		t.Errorf("code = %q, want N020", code)
	}
}

func TestViewportSwitching(t *testing.T) {
	s, ts := newTestServer(t)

	resp, body := do(t, ts, http.MethodPost, "/api/clients/c1/viewport", `{"mode":1}`)
	expectStatus(t, resp, body, http.StatusNoContent)
	resp, body = do(t, ts, http.MethodPost, "/api/clients/c1/viewport", `{"mode":"deny-zoom-in"}`)
	expectStatus(t, resp, body, http.StatusNoContent)

	c, _ := s.Clients().Lookup("c1")
	tags := c.Service.HeaderTags()
	if len(tags) != 1 {
		t.Fatalf("tags = %+v, want exactly one viewport", tags)
	}
	if v, _ := tags[0].Attr("content"); v != headtags.ViewportContent(headtags.ViewportDenyZoomIn) {
		t.Errorf("content = %q", v)
	}

	resp, body = do(t, ts, http.MethodGet, "/api/clients/c1/head", "")
	expectStatus(t, resp, body, http.StatusOK)
	want := `  <meta name="viewport" content="width=device-width, initial-scale=1.0, maximum-scale=1.0" data-ngutils>` + "\n"
	if body != want {
		t.Errorf("head = %q, want %q", body, want)
	}

	resp, body = do(t, ts, http.MethodPost, "/api/clients/c1/viewport", `{}`)
	expectStatus(t, resp, body, http.StatusNoContent)
	if v, _ := c.Service.HeaderTags()[0].Attr("content"); v != headtags.ViewportContent(headtags.ViewportDefault) {
		t.Errorf("default content = %q", v)
	}
}

func TestViewportInvalidMode(t *testing.T) {
	_, ts := newTestServer(t)

	for _, body := range []string{`{"mode":7}`, `{"mode":-1}`, `{"mode":"tiny"}`, `{"mode":true}`} {
		resp, got := do(t, ts, http.MethodPost, "/api/clients/c1/viewport", body)
		expectStatus(t, resp, got, http.StatusBadRequest)
		if code := errorCode(t, got); code != "N003" {
			t.Errorf("%s: code = %q, want N003", body, code)
		}
	}
}

func TestStyleClasses(t *testing.T) {
	_, ts := newTestServer(t)
	const base = "/api/clients/c1/styleclasses/orders"

	resp, body := do(t, ts, http.MethodGet, base, "")
	expectStatus(t, resp, body, http.StatusNotFound)
	if code := errorCode(t, body); code != "N002" {
		t.Errorf("code = %q, want N002", code)
	}

	for _, c := range []string{"red", "bold"} {
		resp, body = do(t, ts, http.MethodPost, base, `{"styleclass":"`+c+`"}`)
		expectStatus(t, resp, body, http.StatusNoContent)
	}

	resp, body = do(t, ts, http.MethodGet, base, "")
	expectStatus(t, resp, body, http.StatusOK)
	if strings.TrimSpace(body) != `{"styleclass":"red bold"}` {
		t.Errorf("styleclass = %s", body)
	}

	resp, body = do(t, ts, http.MethodDelete, base+"/red", "")
	expectStatus(t, resp, body, http.StatusNoContent)
	_, body = do(t, ts, http.MethodGet, base, "")
	if strings.TrimSpace(body) != `{"styleclass":"bold"}` {
		t.Errorf("after remove = %s", body)
	}

	resp, body = do(t, ts, http.MethodDelete, base+"/bold", "")
	expectStatus(t, resp, body, http.StatusNoContent)
	resp, body = do(t, ts, http.MethodGet, base, "")
	expectStatus(t, resp, body, http.StatusNotFound)

	resp, body = do(t, ts, http.MethodPost, base, `{"styleclass":""}`)
	expectStatus(t, resp, body, http.StatusBadRequest)
}

func TestCleanup(t *testing.T) {
	_, ts := newTestServer(t)

	do(t, ts, http.MethodPost, "/api/clients/c1/viewport", `{"mode":0}`)
	resp, body := do(t, ts, http.MethodPost, "/api/clients/c1/cleanup", "")
	expectStatus(t, resp, body, http.StatusNoContent)

	_, body = do(t, ts, http.MethodGet, "/api/clients/c1/model", "")
	if !strings.Contains(body, `"contributedTags":[]`) {
		t.Errorf("model = %s", body)
	}
}

func TestPage(t *testing.T) {
	_, ts := newTestServer(t)

	do(t, ts, http.MethodPost, "/api/clients/c1/styleclasses/orders", `{"styleclass":"red"}`)
	do(t, ts, http.MethodPost, "/api/clients/c1/viewport", `{"mode":2}`)

	resp, body := do(t, ts, http.MethodGet, "/api/clients/c1/page?form=orders", "")
	expectStatus(t, resp, body, http.StatusOK)

	for _, want := range []string{
		"<!DOCTYPE html>",
		`<div class="svy-form red" data-form="orders">`,
		`content="width=device-width, initial-scale=1.0, minimum-scale=1.0"`,
		`data-watch="/api/clients/c1/watch"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q:\n%s", want, body)
		}
	}
	if strings.Count(body, `name="viewport"`) != 1 {
		t.Errorf("page should carry exactly one viewport:\n%s", body)
	}

	_, body = do(t, ts, http.MethodGet, "/api/clients/c1/page?watch=0", "")
	if strings.Contains(body, "data-watch") {
		t.Error("watch=0 should omit the watch script")
	}
}

func TestInvalidClientID(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := do(t, ts, http.MethodGet, "/api/clients/bad%20id/model", "")
	expectStatus(t, resp, body, http.StatusBadRequest)
	if code := errorCode(t, body); code != "N021" {
		t.Errorf("code = %q, want N021", code)
	}
}

func TestCloseSnapshotsAndRestores(t *testing.T) {
	store := snapshot.NewMemoryStore()
	s, ts := newTestServer(t, WithStore(store))

	do(t, ts, http.MethodPost, "/api/clients/c1/styleclasses/orders", `{"styleclass":"red"}`)
	resp, body := do(t, ts, http.MethodDelete, "/api/clients/c1", "")
	expectStatus(t, resp, body, http.StatusNoContent)

	if s.Clients().Len() != 0 {
		t.Fatalf("clients = %v, want none", s.Clients().IDs())
	}
	if store.Len() != 1 {
		t.Fatalf("snapshots = %d, want 1", store.Len())
	}

	resp, body = do(t, ts, http.MethodGet, "/api/clients/c1/styleclasses/orders", "")
	expectStatus(t, resp, body, http.StatusOK)
	if strings.TrimSpace(body) != `{"styleclass":"red"}` {
		t.Errorf("restored = %s", body)
	}

	// Closing an unknown client is fine.
	resp, body = do(t, ts, http.MethodDelete, "/api/clients/nobody", "")
	expectStatus(t, resp, body, http.StatusNoContent)
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := middleware.NewMetrics(middleware.WithRegistry(reg), middleware.WithNamespace("test"))
	_, ts := newTestServer(t, WithMetrics(m, reg))

	resp, body := do(t, ts, http.MethodGet, "/healthz", "")
	expectStatus(t, resp, body, http.StatusOK)
	if !strings.Contains(body, `"status":"ok"`) {
		t.Errorf("healthz = %s", body)
	}

	do(t, ts, http.MethodPost, "/api/clients/c1/viewport", `{"mode":0}`)

	resp, body = do(t, ts, http.MethodGet, "/metrics", "")
	expectStatus(t, resp, body, http.StatusOK)
	for _, want := range []string{
		`test_http_requests_total{method="POST",route="/api/clients/{clientID}/viewport",status="204"} 1`,
		`test_header_tag_operations_total{result="appended"} 1`,
		`test_active_clients 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestUnknownRoute(t *testing.T) {
	_, ts := newTestServer(t)
	resp, body := do(t, ts, http.MethodGet, "/nope", "")
	expectStatus(t, resp, body, http.StatusNotFound)
	if !bytes.Contains([]byte(body), []byte("not found")) {
		t.Errorf("body = %s", body)
	}
}
