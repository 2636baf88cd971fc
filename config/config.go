// Package config loads the settings of a roa server.
//
// Values are resolved in order: built-in defaults, an optional YAML file,
// then ROA_ prefixed environment variables. The result is validated before
// it is returned.
//
//	cfg, err := config.Load("roa.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Environment variable names follow the struct nesting, for example
// ROA_SERVER_PORT or ROA_LOGGER_LEVEL.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "ROA_"

var (
	// ErrRead is returned when the config file cannot be read.
	ErrRead = errors.New("config: read failed")
	// ErrParse is returned for malformed YAML or environment values.
	ErrParse = errors.New("config: parse failed")
	// ErrInvalid is returned when the resolved config fails validation.
	ErrInvalid = errors.New("config: validation failed")
)

// Config is the root configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server" envPrefix:"SERVER_"`
	Logger     LoggerConfig     `yaml:"logger" envPrefix:"LOGGER_"`
	Router     RouterConfig     `yaml:"router" envPrefix:"ROUTER_"`
	Middleware MiddlewareConfig `yaml:"middleware" envPrefix:"MIDDLEWARE_"`
}

// ServerConfig configures the listener and transport.
type ServerConfig struct {
	Host string `yaml:"host" env:"HOST"`
	Port int    `yaml:"port" env:"PORT" validate:"min=1,max=65535"`

	// Transport is "http" for net/http or "fasthttp".
	Transport string `yaml:"transport" env:"TRANSPORT" validate:"oneof=http fasthttp"`

	// H2C enables cleartext HTTP/2 on the net/http transport.
	H2C bool `yaml:"h2c" env:"H2C"`

	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
}

// Addr returns the listen address in host:port form.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// LoggerConfig configures the zap logger.
type LoggerConfig struct {
	Level  string `yaml:"level" env:"LEVEL" validate:"oneof=debug info warn error dpanic panic fatal"`
	Format string `yaml:"format" env:"FORMAT" validate:"oneof=json console"`
}

// RouterConfig configures the route tree.
type RouterConfig struct {
	Root string `yaml:"root" env:"ROOT" validate:"required,startswith=/"`
}

// MiddlewareConfig configures the default middleware stack. Zero values
// disable the stage they control.
type MiddlewareConfig struct {
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT" validate:"gte=0"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" env:"MAX_BODY_BYTES" validate:"gte=0"`
	RequestIDHeader string        `yaml:"request_id_header" env:"REQUEST_ID_HEADER" validate:"required"`
	MetricsPath     string        `yaml:"metrics_path" env:"METRICS_PATH" validate:"omitempty,startswith=/"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Transport:       "http",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "json",
		},
		Router: RouterConfig{
			Root: "/",
		},
		Middleware: MiddlewareConfig{
			RequestTimeout:  30 * time.Second,
			MaxBodyBytes:    4 << 20,
			RequestIDHeader: "X-Request-ID",
			MetricsPath:     "/metrics",
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load resolves the configuration. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRead, err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrParse, path, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("%w: environment: %w", ErrParse, err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return cfg, nil
}
