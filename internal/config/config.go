// Package config provides unified configuration loading from files,
// environment variables, and CLI flags using viper and pflag.
//
// Resolution order (highest wins):
//  1. CLI flags
//  2. Environment variables (prefix CANOPY_)
//  3. Config file (config.yaml in . or /etc/canopy/)
//  4. Compiled defaults
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Backend names a workload backend implementation.
type Backend string

const (
	BackendFake       Backend = "fake"
	BackendKubernetes Backend = "kubernetes"
)

// Viper keys for serve-mode configuration.
const (
	keyServeAddress        = "serve.address"
	keyServeAllowedOrigins = "serve.allowed_origins"
	keyServeAuthToken      = "serve.auth_token"
	keyServeBackend        = "serve.backend"
	keyServeDebugEnabled   = "serve.debug.enabled"
	keyServeFakePortStart  = "serve.fake.port_start"
)

// Viper keys for publish-mode configuration.
const (
	keyPublishOutput     = "publish.output"
	keyPublishRelays     = "publish.relays"
	keyPublishParameters = "publish.parameters"
)

// Option describes a single configuration entry: its viper key, the
// corresponding CLI flag name, the compiled default, and a
// human-readable description shown in --help output.
type Option struct {
	Key         string
	Flag        string
	Default     any
	Description string
}

// ServeOptions defines the configuration entries available in serve
// mode. Each entry is registered as a viper default and a CLI flag.
var ServeOptions = []Option{
	{Key: keyServeAddress, Flag: toFlag(keyServeAddress), Default: ":8600", Description: "Serve listen address"},
	{Key: keyServeAllowedOrigins, Flag: toFlag(keyServeAllowedOrigins), Default: []string{}, Description: "Serve allowed CORS origins"},
	{Key: keyServeAuthToken, Flag: toFlag(keyServeAuthToken), Default: "", Description: "Serve bearer token (empty disables auth)"},
	{Key: keyServeBackend, Flag: toFlag(keyServeBackend), Default: string(BackendFake), Description: "Workload backend (fake or kubernetes)"},
	{Key: keyServeDebugEnabled, Flag: toFlag(keyServeDebugEnabled), Default: false, Description: "Serve debug logging"},
	{Key: keyServeFakePortStart, Flag: toFlag(keyServeFakePortStart), Default: 52000, Description: "Fake backend service port counter base"},
}

// PublishOptions defines the configuration entries available in
// publish mode.
var PublishOptions = []Option{
	{Key: keyPublishOutput, Flag: toFlag(keyPublishOutput), Default: "canopy.manifest.json", Description: "Publish manifest output path"},
	{Key: keyPublishRelays, Flag: toFlag(keyPublishRelays), Default: []string{}, Description: "Message relay resources to publish"},
	{Key: keyPublishParameters, Flag: toFlag(keyPublishParameters), Default: []string{}, Description: "Extra input parameters to publish"},
}

// Config wraps a viper instance with typed accessors.
type Config struct {
	v *viper.Viper
}

// New loads configuration from defaults, config file, and
// environment.
func New() (*Config, error) {
	v := viper.New()

	// default values
	for _, o := range ServeOptions {
		v.SetDefault(o.Key, o.Default)
	}
	for _, o := range PublishOptions {
		v.SetDefault(o.Key, o.Default)
	}

	// load config from file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/canopy/")

	if err := v.ReadInConfig(); err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !(errors.As(err, &notFoundErr) || errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// load config from environment variables
	v.SetEnvPrefix("CANOPY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return &Config{v: v}, nil
}

// BindFlags registers the given options as CLI flags and binds them
// to their viper keys.
func (c *Config) BindFlags(fs *pflag.FlagSet, options []Option) error {
	for _, o := range options {
		switch v := o.Default.(type) {
		case string:
			fs.String(o.Flag, v, o.Description)
		case int:
			fs.Int(o.Flag, v, o.Description)
		case bool:
			fs.Bool(o.Flag, v, o.Description)
		case []string:
			fs.StringSlice(o.Flag, v, o.Description)
		default:
			return fmt.Errorf("unsupported flag type for key: %s", o.Key)
		}

		if err := c.v.BindPFlag(o.Key, fs.Lookup(o.Flag)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", o.Flag, err)
		}
	}

	return nil
}

func (c *Config) ServeAddress() string {
	return c.v.GetString(keyServeAddress) // CANOPY_SERVE_ADDRESS
}

func (c *Config) ServeAllowedOrigins() []string {
	return c.v.GetStringSlice(keyServeAllowedOrigins) // CANOPY_SERVE_ALLOWED_ORIGINS
}

func (c *Config) ServeAuthToken() string {
	return c.v.GetString(keyServeAuthToken) // CANOPY_SERVE_AUTH_TOKEN
}

func (c *Config) ServeBackend() Backend {
	return Backend(c.v.GetString(keyServeBackend)) // CANOPY_SERVE_BACKEND
}

func (c *Config) ServeDebugEnabled() bool {
	return c.v.GetBool(keyServeDebugEnabled) // CANOPY_SERVE_DEBUG_ENABLED
}

func (c *Config) FakePortStart() int32 {
	return c.v.GetInt32(keyServeFakePortStart) // CANOPY_SERVE_FAKE_PORT_START
}

func (c *Config) PublishOutput() string {
	return c.v.GetString(keyPublishOutput) // CANOPY_PUBLISH_OUTPUT
}

func (c *Config) PublishRelays() []string {
	return c.v.GetStringSlice(keyPublishRelays) // CANOPY_PUBLISH_RELAYS
}

func (c *Config) PublishParameters() []string {
	return c.v.GetStringSlice(keyPublishParameters) // CANOPY_PUBLISH_PARAMETERS
}

// toFlag converts a viper key like "serve.fake.port_start" into a CLI
// flag like "fake-port-start" by lower-casing, replacing dots and
// underscores with hyphens, and stripping the "serve-" or "publish-"
// prefix.
func toFlag(key string) string {
	flag := strings.ToLower(key)
	flag = strings.ReplaceAll(flag, ".", "-")
	flag = strings.ReplaceAll(flag, "_", "-")
	flag = strings.TrimPrefix(flag, "serve-")
	flag = strings.TrimPrefix(flag, "publish-")
	return flag
}
