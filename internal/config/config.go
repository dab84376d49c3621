package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Engine drivers.
const (
	DriverMeilisearch = "meilisearch"
	DriverRedis       = "redis"
)

// Config holds the gateway configuration. It is read once at startup and
// never mutated afterwards.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Engine  EngineConfig  `yaml:"engine"`
	Auth    AuthConfig    `yaml:"auth"`
	Setup   SetupConfig   `yaml:"setup"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds the access gate credentials. The gate is off when both are empty.
type AuthConfig struct {
	SharedSecret   string  `yaml:"shared_secret"`
	AllowedOrigins Origins `yaml:"allowed_origins"`
}

// Enabled reports whether the access gate should run.
func (a AuthConfig) Enabled() bool {
	return a.SharedSecret != "" || len(a.AllowedOrigins) > 0
}

// Origins is a list of allowed browser origins. In YAML it is either a
// sequence or a single comma-separated string, so it can come from one env var.
type Origins []string

// UnmarshalYAML accepts a sequence or a comma-separated scalar.
func (o *Origins) UnmarshalYAML(node *yaml.Node) error {
	var items []string
	switch node.Kind {
	case yaml.SequenceNode:
		if err := node.Decode(&items); err != nil {
			return fmt.Errorf("decode origins: %w", err)
		}
	case yaml.ScalarNode:
		items = strings.Split(node.Value, ",")
	default:
		return fmt.Errorf("allowed_origins must be a list or a string (line %d)", node.Line)
	}

	out := make(Origins, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*o = out
	return nil
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// EngineConfig holds search engine connection settings.
type EngineConfig struct {
	Driver           string `yaml:"driver"` // meilisearch, redis (default: meilisearch)
	Index            string `yaml:"index"`
	TimeoutSec       int    `yaml:"timeout_sec"` // 0 = no timeout
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`

	// meilisearch
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`

	// redis
	Addrs      []string `yaml:"addrs"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
	DB         int      `yaml:"db"`
	TextFields []string `yaml:"text_fields"`
	TagField   string   `yaml:"tag_field"`
}

// SetupConfig holds index setup settings.
type SetupConfig struct {
	DocumentsPath string `yaml:"documents_path"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse expands env variables in data, decodes it, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 5000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Engine.Driver == "" {
		c.Engine.Driver = DriverMeilisearch
	}
	if c.Engine.Index == "" {
		c.Engine.Index = "documents"
	}
	if c.Engine.ReadinessTimeout <= 0 {
		c.Engine.ReadinessTimeout = 10
	}
	if c.Engine.TagField == "" {
		c.Engine.TagField = "tags"
	}
	if c.Setup.DocumentsPath == "" {
		c.Setup.DocumentsPath = "documents.json"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Engine.TimeoutSec < 0 {
		return fmt.Errorf("engine.timeout_sec must not be negative, got %d", c.Engine.TimeoutSec)
	}

	switch c.Engine.Driver {
	case DriverMeilisearch:
		u, err := url.Parse(c.Engine.Host)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("engine.host must be an http(s) URL, got %q", c.Engine.Host)
		}
	case DriverRedis:
		if len(c.Engine.Addrs) == 0 {
			return fmt.Errorf("engine.addrs is required for the redis driver")
		}
	default:
		return fmt.Errorf("engine.driver must be %q or %q, got %q",
			DriverMeilisearch, DriverRedis, c.Engine.Driver)
	}

	for _, origin := range c.Auth.AllowedOrigins {
		if origin == "*" {
			return fmt.Errorf("auth.allowed_origins: use an empty list instead of %q", origin)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
