// Package config reads the YAML file the command line tool accepts in place
// of repeating flags.
//
//	endpoint: https://swapi-graphql.netlify.app/.netlify/functions/index
//	ws_endpoint: wss://example.com/graphql
//	schema_file: schema.json
//	timeout: 10s
//	headers:
//	  Authorization: Bearer ${API_TOKEN}
//	protocols: [graphql-transport-ws]
//	validate: true
//	log_level: debug
//	otel:
//	  endpoint: localhost:4317
//	  service: qlient
//
// ${VAR} references are expanded from the environment before parsing.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/hanpama/qlient/internal/client"
	"github.com/hanpama/qlient/internal/transport/httptp"
	"github.com/hanpama/qlient/internal/transport/wstp"
)

type Config struct {
	Endpoint     string            `yaml:"endpoint" validate:"required_without=SchemaFile,omitempty,url"`
	WSEndpoint   string            `yaml:"ws_endpoint" validate:"omitempty,url"`
	SchemaFile   string            `yaml:"schema_file"`
	Timeout      time.Duration     `yaml:"timeout" validate:"gte=0"`
	Headers      map[string]string `yaml:"headers"`
	Protocols    []string          `yaml:"protocols" validate:"dive,oneof=graphql-transport-ws graphql-ws"`
	ValidateDocs bool              `yaml:"validate"`
	LogLevel     string            `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Otel         Otel              `yaml:"otel"`
}

type Otel struct {
	Endpoint string `yaml:"endpoint" validate:"omitempty,hostname_port"`
	Service  string `yaml:"service" validate:"required_with=Endpoint"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML, rejecting unknown keys, and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(os.ExpandEnv(string(data)))))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints. Errors are validator.ValidationErrors.
func (c *Config) Validate() error {
	if err := validatorInstance().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Level maps LogLevel to a slog level, defaulting to info.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func (c *Config) HTTPOptions() []httptp.Option {
	var opts []httptp.Option
	if c.Timeout > 0 {
		opts = append(opts, httptp.WithTimeout(c.Timeout))
	}
	for k, v := range c.Headers {
		opts = append(opts, httptp.WithHeader(k, v))
	}
	return opts
}

func (c *Config) WSOptions() []wstp.Option {
	var opts []wstp.Option
	if len(c.Protocols) > 0 {
		opts = append(opts, wstp.WithProtocols(c.Protocols...))
	}
	for k, v := range c.Headers {
		opts = append(opts, wstp.WithHeader(k, v))
	}
	return opts
}

func (c *Config) ClientOptions() []client.Option {
	var opts []client.Option
	if c.SchemaFile != "" {
		opts = append(opts, client.WithSchemaFile(c.SchemaFile))
	}
	if c.ValidateDocs {
		opts = append(opts, client.WithValidation(true))
	}
	return opts
}

// SubscriptionEndpoint is WSEndpoint, or Endpoint when none is set.
func (c *Config) SubscriptionEndpoint() string {
	if c.WSEndpoint != "" {
		return c.WSEndpoint
	}
	return c.Endpoint
}
