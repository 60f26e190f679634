package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfig writes content to a temporary config.yaml and returns its path.
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
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
api:
  host: "0.0.0.0"
  port: 9090
monitoring:
  backend: "mqtt"
  topic_prefix: "plant/monitoring"
mqtt:
  broker:
    host: "broker.local"
    port: 1883
    client_id: "test-client"
  qos: 1
pagination:
  default_size: 10
  max_size: 50
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}
	if cfg.Monitoring.Backend != MonitoringBackendMQTT {
		t.Errorf("Monitoring.Backend = %q, want %q", cfg.Monitoring.Backend, MonitoringBackendMQTT)
	}
	if cfg.Monitoring.TopicPrefix != "plant/monitoring" {
		t.Errorf("Monitoring.TopicPrefix = %q, want %q", cfg.Monitoring.TopicPrefix, "plant/monitoring")
	}
	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.local")
	}
	if cfg.Pagination.DefaultSize != 10 || cfg.Pagination.MaxSize != 50 {
		t.Errorf("Pagination = %+v, want {10 50}", cfg.Pagination)
	}

	// Values absent from the file keep their defaults.
	if cfg.Monitoring.HTTP.ReadTimeout != 5 {
		t.Errorf("Monitoring.HTTP.ReadTimeout = %d, want default 5", cfg.Monitoring.HTTP.ReadTimeout)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "invalid: [yaml: content")

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	configPath := writeConfig(t, `
database:
  path: ""
monitoring:
  backend: "carrier-pigeon"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "database.path") {
		t.Errorf("error %q should mention database.path", err)
	}
	if !strings.Contains(err.Error(), "monitoring.backend") {
		t.Errorf("error %q should mention monitoring.backend", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config { return defaultConfig() }

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name:    "invalid port low",
			mutate:  func(c *Config) { c.API.Port = 0 },
			wantErr: true,
		},
		{
			name:    "invalid port high",
			mutate:  func(c *Config) { c.API.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "zero websocket ping interval",
			mutate:  func(c *Config) { c.WebSocket.PingInterval = 0 },
			wantErr: true,
		},
		{
			name:    "negative websocket pong timeout",
			mutate:  func(c *Config) { c.WebSocket.PongTimeout = -1 },
			wantErr: true,
		},
		{
			name:    "zero default page size",
			mutate:  func(c *Config) { c.Pagination.DefaultSize = 0 },
			wantErr: true,
		},
		{
			name:    "max page size below default",
			mutate:  func(c *Config) { c.Pagination.MaxSize = 5 },
			wantErr: true,
		},
		{
			name: "http backend without timeouts",
			mutate: func(c *Config) {
				c.Monitoring.Backend = MonitoringBackendHTTP
				c.Monitoring.HTTP.ConnectTimeout = 0
				c.Monitoring.HTTP.ReadTimeout = 0
			},
			wantErr: true,
		},
		{
			name: "none backend ignores http timeouts",
			mutate: func(c *Config) {
				c.Monitoring.Backend = MonitoringBackendNone
				c.Monitoring.HTTP.ConnectTimeout = 0
			},
			wantErr: false,
		},
		{
			name:    "http backend without base url",
			mutate:  func(c *Config) { c.Monitoring.HTTP.BaseURL = "" },
			wantErr: true,
		},
		{
			name: "mqtt backend with invalid QoS",
			mutate: func(c *Config) {
				c.Monitoring.Backend = MonitoringBackendMQTT
				c.MQTT.QoS = 3
			},
			wantErr: true,
		},
		{
			name: "mqtt QoS ignored for other backends",
			mutate: func(c *Config) {
				c.Monitoring.Backend = MonitoringBackendNone
				c.MQTT.QoS = 3
			},
			wantErr: false,
		},
		{
			name: "amqp backend without url",
			mutate: func(c *Config) {
				c.Monitoring.Backend = MonitoringBackendAMQP
				c.AMQP.URL = ""
			},
			wantErr: true,
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Monitoring.Backend = "smoke-signals" },
			wantErr: true,
		},
		{
			name: "influxdb enabled without url",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.URL = ""
			},
			wantErr: true,
		},
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
	cfg := defaultConfig()

	t.Setenv("AUTOMAK_DATABASE_PATH", "/custom/path.db")
	t.Setenv("AUTOMAK_API_HOST", "192.168.1.1")
	t.Setenv("AUTOMAK_API_PORT", "9191")
	t.Setenv("AUTOMAK_MONITORING_BACKEND", "amqp")
	t.Setenv("AUTOMAK_MONITORING_URL", "http://monitor:8082")
	t.Setenv("AUTOMAK_MQTT_HOST", "mqtt.example.com")
	t.Setenv("AUTOMAK_MQTT_USERNAME", "testuser")
	t.Setenv("AUTOMAK_MQTT_PASSWORD", "testpass")
	t.Setenv("AUTOMAK_AMQP_URL", "amqp://u:p@rabbit:5672/")
	t.Setenv("AUTOMAK_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("AUTOMAK_LOG_LEVEL", "debug")

	applyEnvOverrides(cfg)

	checks := []struct {
		field string
		got   string
		want  string
	}{
		{"Database.Path", cfg.Database.Path, "/custom/path.db"},
		{"API.Host", cfg.API.Host, "192.168.1.1"},
		{"Monitoring.Backend", cfg.Monitoring.Backend, "amqp"},
		{"Monitoring.HTTP.BaseURL", cfg.Monitoring.HTTP.BaseURL, "http://monitor:8082"},
		{"MQTT.Broker.Host", cfg.MQTT.Broker.Host, "mqtt.example.com"},
		{"MQTT.Auth.Username", cfg.MQTT.Auth.Username, "testuser"},
		{"MQTT.Auth.Password", cfg.MQTT.Auth.Password, "testpass"},
		{"AMQP.URL", cfg.AMQP.URL, "amqp://u:p@rabbit:5672/"},
		{"InfluxDB.Token", cfg.InfluxDB.Token, "secret-token"},
		{"Logging.Level", cfg.Logging.Level, "debug"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}

	if cfg.API.Port != 9191 {
		t.Errorf("API.Port = %d, want 9191", cfg.API.Port)
	}
}

func TestApplyEnvOverrides_InvalidPortIgnored(t *testing.T) {
	cfg := defaultConfig()
	t.Setenv("AUTOMAK_API_PORT", "not-a-port")

	applyEnvOverrides(cfg)

	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d, want default 8080", cfg.API.Port)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Database.Path == "" {
		t.Error("defaultConfig should have non-empty Database.Path")
	}
	if cfg.API.Port != 8080 {
		t.Errorf("defaultConfig API.Port = %d, want 8080", cfg.API.Port)
	}
	if cfg.Monitoring.Backend != MonitoringBackendHTTP {
		t.Errorf("defaultConfig Monitoring.Backend = %q, want %q", cfg.Monitoring.Backend, MonitoringBackendHTTP)
	}
	if cfg.Pagination.DefaultSize != 20 {
		t.Errorf("defaultConfig Pagination.DefaultSize = %d, want 20", cfg.Pagination.DefaultSize)
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
}
