package http_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-singleton/framework/audit"
	"github.com/km-arc/go-singleton/framework/routing"
	"github.com/km-arc/go-singleton/framework/singleton"
	auditdhttp "github.com/km-arc/go-singleton/http"
)

func newServer(t *testing.T, opts ...audit.Option) (*routing.Router, string) {
	t.Helper()
	dir := t.TempDir()
	reg := singleton.New()
	c := &auditdhttp.AuditController{
		Audit:    audit.NewFactory(reg, append([]audit.Option{audit.WithDir(dir)}, opts...)...),
		Registry: reg,
	}
	r := routing.New(nil)
	c.Routes(r)
	return r, dir
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestAppend_WritesLine(t *testing.T) {
	r, dir := newServer(t)

	rr := post(r, "/audit/app.log", `{"message":"hello"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	b, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Log started: "))
	assert.True(t, strings.HasSuffix(lines[1], ": hello"))
}

func TestAppend_ConcurrentRequests(t *testing.T) {
	r, dir := newServer(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rr := post(r, "/audit/shared.log", `{"message":"hello"}`)
			assert.Equal(t, http.StatusCreated, rr.Code)
		}()
	}
	wg.Wait()

	b, err := os.ReadFile(filepath.Join(dir, "shared.log"))
	require.NoError(t, err)
	assert.Equal(t, 21, strings.Count(string(b), "\n"))
	assert.Equal(t, 1, strings.Count(string(b), "Log started: "))
}

func TestAppend_BadRequests(t *testing.T) {
	r, _ := newServer(t)

	assert.Equal(t, http.StatusBadRequest, post(r, "/audit/app.log", `{bad`).Code)
	assert.Equal(t, http.StatusBadRequest, post(r, "/audit/app.log", `{"message":""}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(r, "/audit/..", `{"message":"x"}`).Code)
}

func TestAppend_RejectsHiddenAndForeignFiles(t *testing.T) {
	r, dir := newServer(t)
	env := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(env, []byte("APP_PORT=8000\n"), 0o600))

	for _, path := range []string{"/audit/.env", "/audit/.log", "/audit/main.go", "/audit/f1"} {
		assert.Equal(t, http.StatusBadRequest, post(r, path, `{"message":"APP_PORT=1"}`).Code, path)
	}

	b, err := os.ReadFile(env)
	require.NoError(t, err)
	assert.Equal(t, "APP_PORT=8000\n", string(b))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAppend_FileLimit(t *testing.T) {
	r, dir := newServer(t, audit.WithMaxFiles(3))

	for i := 0; i < 10; i++ {
		rr := post(r, fmt.Sprintf("/audit/f%d.log", i), `{"message":"x"}`)
		if i < 3 {
			assert.Equal(t, http.StatusCreated, rr.Code)
		} else {
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		}
	}
	assert.Equal(t, http.StatusCreated, post(r, "/audit/f0.log", `{"message":"again"}`).Code)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestAppend_IOFailureIs500(t *testing.T) {
	r, dir := newServer(t)
	// a directory where the audit file should be makes the header append fail
	require.NoError(t, os.Mkdir(filepath.Join(dir, "taken.log"), 0o755))

	assert.Equal(t, http.StatusInternalServerError, post(r, "/audit/taken.log", `{"message":"x"}`).Code)
}

func TestSingletons_ListsAuditManagers(t *testing.T) {
	r, dir := newServer(t)
	require.Equal(t, http.StatusCreated, post(r, "/audit/a.log", `{"message":"x"}`).Code)
	require.Equal(t, http.StatusCreated, post(r, "/audit/b.log", `{"message":"x"}`).Code)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/singletons?kind=audit", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data []struct {
			Kind  string `json:"kind"`
			Name  string `json:"name"`
			State string `json:"state"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, filepath.Join(dir, "a.log"), body.Data[0].Name)
	assert.Equal(t, filepath.Join(dir, "b.log"), body.Data[1].Name)
	assert.Equal(t, "ready", body.Data[0].State)
}

func TestHealth(t *testing.T) {
	r, _ := newServer(t)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
