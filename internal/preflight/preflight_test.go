package preflight_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"soundminer/internal/preflight"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()

	if res := preflight.CheckDirectoryAccess("staging", dir); !res.Passed {
		t.Fatalf("writable dir failed: %+v", res)
	}

	missing := filepath.Join(dir, "missing")
	if res := preflight.CheckDirectoryAccess("staging", missing); res.Passed {
		t.Fatalf("missing dir passed: %+v", res)
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if res := preflight.CheckDirectoryAccess("staging", file); res.Passed {
		t.Fatalf("regular file passed: %+v", res)
	}
}

func TestCheckDiskSpace(t *testing.T) {
	dir := t.TempDir()

	if res := preflight.CheckDiskSpace("disk", dir, 1); !res.Passed {
		t.Fatalf("1-byte floor failed: %+v", res)
	}
	if res := preflight.CheckDiskSpace("disk", dir, ^uint64(0)); res.Passed {
		t.Fatalf("impossible floor passed: %+v", res)
	}
}

func TestCheckRelayTreatsAnyResponseAsReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	if res := preflight.CheckRelay(context.Background(), "relay", server.URL); !res.Passed {
		t.Fatalf("responding relay failed: %+v", res)
	}
}

func TestCheckRelayUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	if res := preflight.CheckRelay(context.Background(), "relay", server.URL); res.Passed {
		t.Fatalf("closed relay passed: %+v", res)
	}
}
