package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func startTestServer(t *testing.T) (*Server, context.CancelFunc, chan error) {
	t.Helper()

	server, err := NewWithAddr("127.0.0.1:0")
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx)
	}()
	return server, cancel, done
}

func awaitShutdown(t *testing.T, cancel context.CancelFunc, done chan error) {
	t.Helper()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServeResolveRoundTrip(t *testing.T) {
	server, cancel, done := startTestServer(t)
	defer awaitShutdown(t, cancel, done)

	url := fmt.Sprintf("http://%s/api/resolve", server.Addr())
	body := `{"systemKey": "classic-58", "category": "white", "width": 1.2, "height": 1.5}`
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post resolve: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var result struct {
		Coefficient float64 `json:"coefficient"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	// Exact breakpoint of the embedded classic-58/white grid.
	if result.Coefficient != 1.0 {
		t.Fatalf("coefficient = %v, want 1.0", result.Coefficient)
	}
}

func TestServeStatus(t *testing.T) {
	server, cancel, done := startTestServer(t)
	defer awaitShutdown(t, cancel, done)

	resp, err := http.Get(fmt.Sprintf("http://%s/api/status", server.Addr()))
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestNewWithDatasetPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dataset.json")
	doc := `{"custom-sys": {"only": {"widths": [1], "heights": [1], "values": [[2.5]]}}}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	t.Setenv("SASHCOEF_DATASET_PATH", path)

	server, cancel, done := startTestServer(t)
	defer awaitShutdown(t, cancel, done)

	resp, err := http.Get(fmt.Sprintf("http://%s/api/systems", server.Addr()))
	if err != nil {
		t.Fatalf("get systems: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Systems []string `json:"systems"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode systems: %v", err)
	}
	if len(body.Systems) != 1 || body.Systems[0] != "custom-sys" {
		t.Fatalf("systems = %v, want [custom-sys]", body.Systems)
	}
}

func TestNewFailsOnMalformedDataset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dataset.json")
	doc := `{"broken": {"only": {"widths": [2, 1], "heights": [1], "values": [[1], [1]]}}}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	t.Setenv("SASHCOEF_DATASET_PATH", path)

	if _, err := NewWithAddr("127.0.0.1:0"); err == nil {
		t.Fatal("expected startup failure for malformed dataset")
	}
}

func TestNewFailsOnUnknownBucketingMode(t *testing.T) {
	t.Setenv("SASHCOEF_BUCKETING", "nearest")

	if _, err := NewWithAddr("127.0.0.1:0"); err == nil {
		t.Fatal("expected startup failure for unknown bucketing mode")
	}
}

func TestBilinearModeFromEnv(t *testing.T) {
	t.Setenv("SASHCOEF_BUCKETING", "bilinear")

	server, cancel, done := startTestServer(t)
	defer awaitShutdown(t, cancel, done)

	// Midway between classic-58/white breakpoints: interpolated, not ceiled.
	url := fmt.Sprintf("http://%s/api/resolve", server.Addr())
	body := `{"systemKey": "classic-58", "category": "white", "width": 1.0, "height": 1.25}`
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post resolve: %v", err)
	}
	defer resp.Body.Close()

	var result struct {
		Coefficient float64 `json:"coefficient"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	// width 1.0 sits between breakpoints 0.8 and 1.2; height 1.25 between
	// 1.0 and 1.5. Bilinear blend of the four surrounding cells.
	if result.Coefficient >= 1.11 || result.Coefficient <= 1.0 {
		t.Fatalf("coefficient = %v, want an interpolated value in (1.0, 1.11)", result.Coefficient)
	}
}
