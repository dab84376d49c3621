package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:   HTTPConfig{Port: 5000},
		Engine: EngineConfig{Driver: DriverMeilisearch, Host: "http://localhost:7700"},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 70000

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MeiliHost(t *testing.T) {
	for _, host := range []string{"", "localhost:7700", "ftp://localhost", "http://"} {
		t.Run("host="+host, func(t *testing.T) {
			cfg := validConfig()
			cfg.Engine.Host = host
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected error for host %q", host)
			}
		})
	}
}

func TestValidate_RedisAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Engine.Driver = DriverRedis
	cfg.Engine.Host = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing redis addrs")
	}

	cfg.Engine.Addrs = []string{"localhost:6379"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Engine.Driver = "elastic"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
	expected := `engine.driver must be "meilisearch" or "redis", got "elastic"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_WildcardOrigin(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.AllowedOrigins = Origins{"*"}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for wildcard origin")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 5000 {
		t.Errorf("expected Port=5000, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Engine.Driver != DriverMeilisearch {
		t.Errorf("expected Driver=%q, got %q", DriverMeilisearch, cfg.Engine.Driver)
	}
	if cfg.Engine.Index != "documents" {
		t.Errorf("expected Index='documents', got %q", cfg.Engine.Index)
	}
	if cfg.Engine.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Engine.ReadinessTimeout)
	}
	if cfg.Engine.TagField != "tags" {
		t.Errorf("expected TagField='tags', got %q", cfg.Engine.TagField)
	}
	if cfg.Setup.DocumentsPath != "documents.json" {
		t.Errorf("expected DocumentsPath='documents.json', got %q", cfg.Setup.DocumentsPath)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:   HTTPConfig{Port: 8080, ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Engine: EngineConfig{Driver: DriverRedis, Index: "movies", ReadinessTimeout: 15},
		Setup:  SetupConfig{DocumentsPath: "/data/movies.json"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected Port=8080, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Engine.Driver != DriverRedis {
		t.Errorf("expected Driver=redis, got %q", cfg.Engine.Driver)
	}
	if cfg.Engine.Index != "movies" {
		t.Errorf("expected Index='movies', got %q", cfg.Engine.Index)
	}
	if cfg.Setup.DocumentsPath != "/data/movies.json" {
		t.Errorf("expected DocumentsPath override, got %q", cfg.Setup.DocumentsPath)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SEARCHGW_TEST_HOST", "http://meili:7700")
	t.Setenv("SEARCHGW_TEST_EMPTY", "")

	tests := []struct {
		in, want string
	}{
		{"host: ${SEARCHGW_TEST_HOST}", "host: http://meili:7700"},
		{"host: ${SEARCHGW_TEST_HOST:-http://x}", "host: http://meili:7700"},
		{"key: ${SEARCHGW_TEST_EMPTY:-fallback}", "key: fallback"},
		{"key: ${SEARCHGW_TEST_UNSET_VAR}", "key: "},
		{"plain: value", "plain: value"},
	}
	for _, tc := range tests {
		if got := string(expandEnvVars([]byte(tc.in))); got != tc.want {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParse_OriginsFromEnv(t *testing.T) {
	t.Setenv("SEARCHGW_TEST_ORIGINS", "http://localhost:3000, https://app.example.com,")

	cfg, err := Parse([]byte(`
engine:
  host: http://localhost:7700
auth:
  shared_secret: s3cret
  allowed_origins: ${SEARCHGW_TEST_ORIGINS}
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := []string{"http://localhost:3000", "https://app.example.com"}
	if len(cfg.Auth.AllowedOrigins) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.Auth.AllowedOrigins)
	}
	for i := range want {
		if cfg.Auth.AllowedOrigins[i] != want[i] {
			t.Errorf("origin[%d] = %q, want %q", i, cfg.Auth.AllowedOrigins[i], want[i])
		}
	}
	if !cfg.Auth.Enabled() {
		t.Error("expected gate to be enabled")
	}
}

func TestParse_OriginsList(t *testing.T) {
	cfg, err := Parse([]byte(`
engine:
  host: http://localhost:7700
auth:
  allowed_origins:
    - http://localhost:3000
    - " https://app.example.com "
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cfg.Auth.AllowedOrigins) != 2 || cfg.Auth.AllowedOrigins[1] != "https://app.example.com" {
		t.Errorf("unexpected origins: %v", cfg.Auth.AllowedOrigins)
	}
}

func TestParse_EmptyOriginsDisableGate(t *testing.T) {
	cfg, err := Parse([]byte(`
engine:
  host: http://localhost:7700
auth:
  shared_secret: ""
  allowed_origins: ""
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cfg.Auth.AllowedOrigins) != 0 {
		t.Errorf("expected no origins, got %v", cfg.Auth.AllowedOrigins)
	}
	if cfg.Auth.Enabled() {
		t.Error("expected gate to be disabled")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	content := "http:\n  port: 9000\nengine:\n  driver: redis\n  addrs: [\"localhost:6379\"]\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.HTTP.Port != 9000 || cfg.Engine.Driver != DriverRedis {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_LocalConfig(t *testing.T) {
	t.Setenv("MEILI_HOST", "http://meili.test:7700")
	t.Setenv("ENGINE_DRIVER", "")

	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("Load(local): %v", err)
	}
	if cfg.Engine.Host != "http://meili.test:7700" {
		t.Errorf("expected host from env, got %q", cfg.Engine.Host)
	}
	if cfg.Engine.Index != "documents" {
		t.Errorf("expected index 'documents', got %q", cfg.Engine.Index)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("expected local, got %q", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("expected prod, got %q", got)
	}
}
