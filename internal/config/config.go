// Package config resolves the server configuration once at startup.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/barokatu/tauri-updater-server/internal/auth"
)

// DefaultSecret is the shared secret used when none is configured.
// Every real deployment is expected to override it.
const DefaultSecret = auth.DefaultSecret

// Config holds the server configuration.
type Config struct {
	Listen        string `yaml:"listen"`
	DataFile      string `yaml:"data_file"`
	ProxyProtocol bool   `yaml:"proxy_protocol"`
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`

	// RequestTimeout bounds the time a request may spend on the record store.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	KV   KV   `yaml:"kv"`
	Auth Auth `yaml:"auth"`
}

// KV holds the key-value store connection details.
type KV struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
	Key   string `yaml:"key"`
}

// Configured returns true if both the endpoint and token are set.
func (k KV) Configured() bool {
	return k.URL != "" && k.Token != ""
}

// Auth holds the credential configuration.
type Auth struct {
	Secret string `yaml:"secret"`

	// Read requires a credential to fetch the record.
	Read bool `yaml:"read"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Listen:    ":8080",
		DataFile:  "data/updates.json",
		LogLevel:  "info",
		LogFormat: "text",

		RequestTimeout: 30 * time.Second,
		KV: KV{
			Key: "tauri-updates",
		},
		Auth: Auth{
			Secret: DefaultSecret,
		},
	}
}

// Load resolves the configuration from the optional YAML file at path, a ".env"
// file in the working directory and the process environment, in that order.
func Load(path string) (*Config, error) {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	return Resolve(path, os.LookupEnv)
}

// Resolve applies the YAML file at path (if any) and then the variables
// returned by lookup on top of the defaults.
func Resolve(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		body, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		dec := yaml.NewDecoder(bytes.NewReader(body))
		dec.KnownFields(true)

		err = dec.Decode(cfg)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse %q: %w", path, err)
		}
	}

	err := cfg.applyEnv(lookup)
	if err != nil {
		return nil, err
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, target *string) {
		v, ok := lookup(key)
		if ok && v != "" {
			*target = v
		}
	}

	boolean := func(key string, target *bool) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}

		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %q", key, v)
		}

		*target = b

		return nil
	}

	// PORT is what most hosting platforms set, LISTEN_ADDRESS wins if both are present.
	port, ok := lookup("PORT")
	if ok && port != "" {
		c.Listen = ":" + port
	}

	str("LISTEN_ADDRESS", &c.Listen)
	str("DATA_FILE", &c.DataFile)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("KV_REST_API_URL", &c.KV.URL)
	str("KV_REST_API_TOKEN", &c.KV.Token)
	str("KV_KEY", &c.KV.Key)
	str("AUTH_SECRET", &c.Auth.Secret)

	v, ok := lookup("REQUEST_TIMEOUT")
	if ok && v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid value for REQUEST_TIMEOUT: %q", v)
		}

		c.RequestTimeout = timeout
	}

	err := boolean("AUTH_READ", &c.Auth.Read)
	if err != nil {
		return err
	}

	return boolean("PROXY_PROTOCOL", &c.ProxyProtocol)
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return errors.New("listen address can't be empty")
	}

	if c.DataFile == "" {
		return errors.New("data file path can't be empty")
	}

	if c.Auth.Secret == "" {
		return errors.New("authentication secret can't be empty")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("invalid request timeout %s", c.RequestTimeout)
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}

	_, err := c.Level()
	if err != nil {
		return err
	}

	return nil
}

// Warnings returns the configuration issues that don't prevent starting.
func (c *Config) Warnings() []string {
	warnings := []string{}

	if (c.KV.URL == "") != (c.KV.Token == "") {
		warnings = append(warnings, "Only one of KV_REST_API_URL and KV_REST_API_TOKEN is set, using the local file")
	}

	err := auth.WeakSecret(c.Auth.Secret)
	if err != nil {
		warnings = append(warnings, "Weak authentication secret, set AUTH_SECRET: "+err.Error())
	}

	return warnings
}

// Level returns the parsed log level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(c.LogLevel))
	if err != nil {
		return level, fmt.Errorf("invalid log level %q", c.LogLevel)
	}

	return level, nil
}
