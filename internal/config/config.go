// Copyright 2025 Alexander Alten (novatechflow), NovaTechflow (novatechflow.com).
// This project is supported and financed by Scalytics, Inc. (www.scalytics.io).
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrAPIKeyRequired is returned when authentication is enforced but no key
// is configured. Such a server would reject every request, so it refuses to
// start instead.
var ErrAPIKeyRequired = errors.New("require-auth is set but no API key is configured")

// Config is built once by Load and treated as read-only afterwards.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Auth   AuthConfig   `yaml:"auth"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	TLSCert        string        `yaml:"tls_cert"`
	TLSKey         string        `yaml:"tls_key"`
	MetricsAddr    string        `yaml:"metrics_addr"`
	SessionTimeout time.Duration `yaml:"session_timeout"`
}

// AuthConfig is the admission policy for the MCP endpoint.
type AuthConfig struct {
	APIKey      string `yaml:"api_key"`
	RequireAuth bool   `yaml:"require_auth"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

func (s ServerConfig) TLSEnabled() bool {
	return s.TLSCert != "" && s.TLSKey != ""
}

func (a AuthConfig) Validate() error {
	if a.RequireAuth && a.APIKey == "" {
		return ErrAPIKeyRequired
	}
	return nil
}

func (c Config) Validate() error {
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if (c.Server.TLSCert == "") != (c.Server.TLSKey == "") {
		return errors.New("ssl-cert and ssl-key must be provided together")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Server.Port)
	}
	if c.Server.SessionTimeout < 0 {
		return fmt.Errorf("session timeout %s must not be negative", c.Server.SessionTimeout)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q", c.Log.Format)
	}
	return nil
}

// Default returns the configuration used when no file, env or flag sets a value.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load merges defaults, an optional YAML file, MCP_* environment variables
// and command-line flags, in increasing order of precedence.
func Load(args []string) (Config, error) {
	fs := flag.NewFlagSet("quotemcp", flag.ContinueOnError)
	flags := registerFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Default()
	path := flags.configPath
	if path == "" {
		path = os.Getenv("MCP_CONFIG")
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnvOverrides(&cfg)
	flags.apply(fs, &cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Auth.APIKey, "MCP_API_KEY")
	setTruthy(&cfg.Auth.RequireAuth, "MCP_REQUIRE_AUTH")

	setString(&cfg.Server.Host, "MCP_HOST")
	setInt(&cfg.Server.Port, "MCP_PORT")
	setString(&cfg.Server.TLSCert, "MCP_SSL_CERT")
	setString(&cfg.Server.TLSKey, "MCP_SSL_KEY")
	setString(&cfg.Server.MetricsAddr, "MCP_METRICS_ADDR")
	setDuration(&cfg.Server.SessionTimeout, "MCP_SESSION_TIMEOUT")

	setString(&cfg.Log.Level, "MCP_LOG_LEVEL")
	setString(&cfg.Log.Format, "MCP_LOG_FORMAT")
}

func setString(target *string, envKey string) {
	if val, ok := os.LookupEnv(envKey); ok {
		*target = val
	}
}

func setInt(target *int, envKey string) {
	if val, ok := os.LookupEnv(envKey); ok {
		parsed, err := strconv.Atoi(strings.TrimSpace(val))
		if err == nil {
			*target = parsed
		}
	}
}

func setDuration(target *time.Duration, envKey string) {
	if val, ok := os.LookupEnv(envKey); ok {
		parsed, err := time.ParseDuration(strings.TrimSpace(val))
		if err == nil {
			*target = parsed
		}
	}
}

// setTruthy treats "true", "1" and "yes" (any case) as true and every other
// value as false.
func setTruthy(target *bool, envKey string) {
	if val, ok := os.LookupEnv(envKey); ok {
		*target = isTruthy(val)
	}
}

func isTruthy(val string) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}
