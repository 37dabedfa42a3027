package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nerrad567/gray-logic-hap/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-hap/internal/infrastructure/logging"
)

// freePort returns a TCP port that was free a moment ago.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func writeConfig(t *testing.T, storageSection string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`
accessory:
  name: "Test Lamp"

%s

database:
  path: %q
  wal_mode: true
  busy_timeout: 5

mqtt:
  enabled: false

influxdb:
  enabled: false

logging:
  level: error
  format: text
  output: stderr

api:
  host: "127.0.0.1"
  port: %d
`, storageSection, filepath.Join(dir, "hap.db"), freePort(t))
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv("GRAYLOGIC_CONFIG", path)
	return dir
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("GRAYLOGIC_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

func TestRun_InvalidStorageBackend(t *testing.T) {
	writeConfig(t, "storage:\n  backend: tape")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with an unknown storage backend")
	}
}

func TestRun_FileBackendPersistsState(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "accessory.yaml")
	writeConfig(t, fmt.Sprintf("storage:\n  backend: file\n  path: %q", statePath))

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if _, err := os.Stat(statePath); err != nil {
		t.Errorf("state file not written: %v", err)
	}
}

func TestRun_SQLiteBackendPersistsState(t *testing.T) {
	dir := writeConfig(t, "storage:\n  backend: sqlite\n  key: lamp")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, "hap.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM storage_blobs WHERE key = 'lamp'`).Scan(&n); err != nil {
		t.Fatalf("query storage_blobs: %v", err)
	}
	if n != 1 {
		t.Errorf("stored rows = %d, want 1", n)
	}
}

func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv("GRAYLOGIC_CONFIG", "")

	if path := getConfigPath(); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

func TestGetConfigPath_EnvOverride(t *testing.T) {
	expected := "/custom/path/config.yaml"
	t.Setenv("GRAYLOGIC_CONFIG", expected)

	if path := getConfigPath(); path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

func TestBuildDevice(t *testing.T) {
	device, bulb := buildDevice(config.Default().Accessory)

	accessories := device.Accessories()
	if len(accessories) != 1 || accessories[0].AID() != 1 {
		t.Fatalf("accessories = %d, want one with aid 1", len(accessories))
	}
	if bulb.On.IID() != 9 || bulb.Brightness.IID() != 10 {
		t.Errorf("iids = %d/%d, want 9/10", bulb.On.IID(), bulb.Brightness.IID())
	}
	if c, ok := device.Characteristic(1, 9); !ok || c != bulb.On {
		t.Error("device.Characteristic(1, 9) does not resolve to the bulb's On")
	}
}

func TestHealthCheck_NilClients(t *testing.T) {
	if err := healthCheck(context.Background(), nil, nil, nil); err != nil {
		t.Errorf("healthCheck() with nothing enabled = %v, want nil", err)
	}
}

func TestChangeLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithWriter(&buf, config.LoggingConfig{Level: "debug", Format: "json"}, "test")
	device, bulb := buildDevice(config.Default().Accessory)
	device.AddEventSink(changeLogger{log: log})

	bulb.Brightness.Set(40)

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("failed to parse log output %q: %v", buf.String(), err)
	}
	if entry["msg"] != "characteristic changed" {
		t.Errorf("msg = %v, want %q", entry["msg"], "characteristic changed")
	}
	if entry["iid"] != float64(10) || entry["value"] != float64(40) {
		t.Errorf("iid/value = %v/%v, want 10/40", entry["iid"], entry["value"])
	}
}
