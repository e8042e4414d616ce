// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func newTestServer(t *testing.T, verifier Verifier) *httptest.Server {
	t.Helper()

	logger := log.New(io.Discard)
	srv := httptest.NewServer(NewServer(NewService(NewMemoryStore(), verifier, logger), logger))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, body string) (int, map[string]json.RawMessage) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	defer resp.Body.Close()

	var decoded map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decoding response error = %v", err)
	}
	return resp.StatusCode, decoded
}

func TestServerOperatorLifecycle(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeVerifier{spec: json.RawMessage(`{"name": "weather"}`)})

	// Empty registry.
	status, body := doJSON(t, http.MethodGet, srv.URL+"/operators", "")
	if status != http.StatusOK {
		t.Fatalf("GET /operators status = %d", status)
	}
	if string(body["components"]) != "[]" {
		t.Errorf("components = %s, want []", body["components"])
	}

	// Register.
	status, body = doJSON(t, http.MethodPost, srv.URL+"/operators",
		`{"name": "weather", "gitRemoteUrl": "/tmp/weather"}`)
	if status != http.StatusCreated {
		t.Fatalf("POST /operators status = %d, body = %v", status, body)
	}
	var op Operator
	if err := json.Unmarshal(body["component"], &op); err != nil {
		t.Fatalf("decoding component error = %v", err)
	}
	if op.Name != "weather" || op.GitRemoteURL != "/tmp/weather" || len(op.Versions) != 0 {
		t.Errorf("component = %+v", op)
	}

	// Duplicate name.
	status, _ = doJSON(t, http.MethodPost, srv.URL+"/operators",
		`{"name": "weather", "gitRemoteUrl": "/tmp/other"}`)
	if status != http.StatusConflict {
		t.Errorf("POST duplicate status = %d, want 409", status)
	}

	// Fetch.
	status, body = doJSON(t, http.MethodGet, srv.URL+"/operators/weather", "")
	if status != http.StatusOK {
		t.Fatalf("GET /operators/weather status = %d", status)
	}
	if err := json.Unmarshal(body["component"], &op); err != nil || op.Name != "weather" {
		t.Errorf("component = %+v, err = %v", op, err)
	}

	// Unknown operator.
	status, body = doJSON(t, http.MethodGet, srv.URL+"/operators/absent", "")
	if status != http.StatusNotFound {
		t.Errorf("GET /operators/absent status = %d, want 404", status)
	}
	if len(body["error"]) == 0 {
		t.Errorf("error body = %v, want an error message", body)
	}
}

func TestServerRegisterVersion(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeVerifier{spec: json.RawMessage(`{"name": "weather"}`)})
	if status, _ := doJSON(t, http.MethodPost, srv.URL+"/operators",
		`{"name": "weather", "gitRemoteUrl": "/tmp/weather"}`); status != http.StatusCreated {
		t.Fatalf("POST /operators status = %d", status)
	}

	status, body := doJSON(t, http.MethodPost, srv.URL+"/operators/weather/versions",
		`{"version": "0.1.0", "version_tag": "mezuri/sources/0.1.0", "version_hash": "abc"}`)
	if status != http.StatusCreated {
		t.Fatalf("POST versions status = %d, body = %v", status, body)
	}
	var rec OperatorVersion
	if err := json.Unmarshal(body["version"], &rec); err != nil {
		t.Fatalf("decoding version error = %v", err)
	}
	if rec.Version != "0.1.0" || rec.Hash != "abc" || string(rec.Spec) != `{"name": "weather"}` {
		t.Errorf("version = %+v", rec)
	}

	// Same version again — conflict without touching the list.
	status, _ = doJSON(t, http.MethodPost, srv.URL+"/operators/weather/versions",
		`{"version": "0.1.0", "version_tag": "mezuri/sources/0.1.0", "version_hash": "abc"}`)
	if status != http.StatusConflict {
		t.Errorf("POST duplicate version status = %d, want 409", status)
	}

	// Version list.
	status, body = doJSON(t, http.MethodGet, srv.URL+"/operators/weather/versions", "")
	if status != http.StatusOK {
		t.Fatalf("GET versions status = %d", status)
	}
	var versions []versionSummary
	if err := json.Unmarshal(body["versions"], &versions); err != nil {
		t.Fatalf("decoding versions error = %v", err)
	}
	if len(versions) != 1 || versions[0].Version != "0.1.0" || versions[0].Hash != "abc" {
		t.Errorf("versions = %+v", versions)
	}

	// Single version record, spec included.
	status, body = doJSON(t, http.MethodGet, srv.URL+"/operators/weather/versions/0.1.0", "")
	if status != http.StatusOK {
		t.Fatalf("GET version status = %d", status)
	}
	if err := json.Unmarshal(body["operator_version"], &rec); err != nil || rec.Version != "0.1.0" {
		t.Errorf("operator_version = %+v, err = %v", rec, err)
	}

	// Unknown version.
	status, _ = doJSON(t, http.MethodGet, srv.URL+"/operators/weather/versions/9.9.9", "")
	if status != http.StatusNotFound {
		t.Errorf("GET unknown version status = %d, want 404", status)
	}
}

func TestServerRejectsFailedVerification(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeVerifier{err: ErrHashMismatch})
	if status, _ := doJSON(t, http.MethodPost, srv.URL+"/operators",
		`{"name": "weather", "gitRemoteUrl": "/tmp/weather"}`); status != http.StatusCreated {
		t.Fatalf("POST /operators status = %d", status)
	}

	status, body := doJSON(t, http.MethodPost, srv.URL+"/operators/weather/versions",
		`{"version": "0.1.0", "version_tag": "mezuri/sources/0.1.0", "version_hash": "abc"}`)
	if status != http.StatusBadRequest {
		t.Fatalf("POST versions status = %d, want 400, body = %v", status, body)
	}

	// The failed registration left no trace.
	status, body = doJSON(t, http.MethodGet, srv.URL+"/operators/weather/versions", "")
	if status != http.StatusOK {
		t.Fatalf("GET versions status = %d", status)
	}
	if string(body["versions"]) != "[]" {
		t.Errorf("versions = %s, want []", body["versions"])
	}
}

func TestServerValidatesRequests(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeVerifier{})

	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "operator without name", path: "/operators", body: `{"gitRemoteUrl": "/tmp/x"}`},
		{name: "operator without remote", path: "/operators", body: `{"name": "x"}`},
		{name: "malformed json", path: "/operators", body: `{"name": `},
		{name: "version without version", path: "/operators/x/versions", body: `{"version_tag": "t", "version_hash": "h"}`},
		{name: "version without tag", path: "/operators/x/versions", body: `{"version": "0.1.0", "version_hash": "h"}`},
		{name: "version without hash", path: "/operators/x/versions", body: `{"version": "0.1.0", "version_tag": "t"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			status, body := doJSON(t, http.MethodPost, srv.URL+tt.path, tt.body)
			if status != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", status)
			}
			if len(body["error"]) == 0 {
				t.Errorf("error body = %v, want an error message", body)
			}
		})
	}
}
