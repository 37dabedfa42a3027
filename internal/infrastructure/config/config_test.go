package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
accessory:
  name: "Kitchen Lamp"
storage:
  backend: "sqlite"
  key: "kitchen"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  enabled: true
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  host: "0.0.0.0"
  port: 8080
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Accessory.Name != "Kitchen Lamp" {
		t.Errorf("Accessory.Name = %q, want %q", cfg.Accessory.Name, "Kitchen Lamp")
	}
	if cfg.Storage.Backend != "sqlite" || cfg.Storage.Key != "kitchen" {
		t.Errorf("Storage = %+v, want sqlite/kitchen", cfg.Storage)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if !cfg.MQTT.Enabled || cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT = %+v, want enabled on localhost", cfg.MQTT)
	}
	// Untouched sections keep their defaults.
	if cfg.Accessory.Manufacturer != "Gray Logic" {
		t.Errorf("Accessory.Manufacturer = %q, want default", cfg.Accessory.Manufacturer)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	_, err := Load(writeConfig(t, `
storage:
  backend: "tape"
`))
	if err == nil {
		t.Error("Load() expected validation error for unknown storage backend, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config { return Default() }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(*Config) {}, false},
		{"memory backend", func(c *Config) { c.Storage.Backend = "memory"; c.Storage.Path = "" }, false},
		{"missing accessory name", func(c *Config) { c.Accessory.Name = "" }, true},
		{"file backend without path", func(c *Config) { c.Storage.Path = "" }, true},
		{"sqlite backend without database", func(c *Config) { c.Storage.Backend = "sqlite"; c.Database.Path = "" }, true},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "s3" }, true},
		{"invalid QoS", func(c *Config) { c.MQTT.QoS = 3 }, true},
		{"invalid port low", func(c *Config) { c.API.Port = 0 }, true},
		{"invalid port high", func(c *Config) { c.API.Port = 70000 }, true},
		{"influxdb without url", func(c *Config) { c.InfluxDB.Enabled = true }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}
	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}
	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := Default()

	t.Setenv("GRAYLOGIC_STORAGE_BACKEND", "memory")
	t.Setenv("GRAYLOGIC_STORAGE_PATH", "/custom/accessory.yaml")
	t.Setenv("GRAYLOGIC_STORAGE_KEY", "den-lamp")
	t.Setenv("GRAYLOGIC_DATABASE_PATH", "/custom/path.db")
	t.Setenv("GRAYLOGIC_MQTT_HOST", "mqtt.example.com")
	t.Setenv("GRAYLOGIC_MQTT_USERNAME", "testuser")
	t.Setenv("GRAYLOGIC_MQTT_PASSWORD", "testpass")
	t.Setenv("GRAYLOGIC_API_HOST", "192.168.1.1")
	t.Setenv("GRAYLOGIC_INFLUXDB_TOKEN", "secret-token")

	applyEnvOverrides(cfg)

	checks := []struct {
		field string
		got   string
		want  string
	}{
		{"Storage.Backend", cfg.Storage.Backend, "memory"},
		{"Storage.Path", cfg.Storage.Path, "/custom/accessory.yaml"},
		{"Storage.Key", cfg.Storage.Key, "den-lamp"},
		{"Database.Path", cfg.Database.Path, "/custom/path.db"},
		{"MQTT.Broker.Host", cfg.MQTT.Broker.Host, "mqtt.example.com"},
		{"MQTT.Auth.Username", cfg.MQTT.Auth.Username, "testuser"},
		{"MQTT.Auth.Password", cfg.MQTT.Auth.Password, "testpass"},
		{"API.Host", cfg.API.Host, "192.168.1.1"},
		{"InfluxDB.Token", cfg.InfluxDB.Token, "secret-token"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
	if cfg.Storage.Backend != "file" {
		t.Errorf("Storage.Backend = %q, want file", cfg.Storage.Backend)
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.API.Port != 51826 {
		t.Errorf("API.Port = %d, want 51826", cfg.API.Port)
	}
}
