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
	"flag"
	"time"
)

type flagValues struct {
	configPath     string
	apiKey         string
	requireAuth    bool
	host           string
	port           int
	tlsCert        string
	tlsKey         string
	metricsAddr    string
	sessionTimeout time.Duration
	logLevel       string
	logFormat      string
}

func registerFlags(fs *flag.FlagSet) *flagValues {
	v := &flagValues{}
	fs.StringVar(&v.configPath, "config", "", "Path to YAML config file")
	fs.StringVar(&v.apiKey, "api-key", "", "API key clients must present (overrides MCP_API_KEY)")
	fs.BoolVar(&v.requireAuth, "require-auth", false, "Reject requests without a valid API key (overrides MCP_REQUIRE_AUTH)")
	fs.StringVar(&v.host, "host", "", "Host to bind to")
	fs.IntVar(&v.port, "port", 0, "Port to bind to")
	fs.StringVar(&v.tlsCert, "ssl-cert", "", "Path to TLS certificate file")
	fs.StringVar(&v.tlsKey, "ssl-key", "", "Path to TLS private key file")
	fs.StringVar(&v.metricsAddr, "metrics-addr", "", "Address for the Prometheus metrics listener")
	fs.DurationVar(&v.sessionTimeout, "session-timeout", 0, "Idle timeout for MCP sessions")
	fs.StringVar(&v.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&v.logFormat, "log-format", "", "Log format: text or json")
	return v
}

// apply copies only the flags present on the command line, so an unset flag
// never clobbers a value from the environment or the config file.
func (v *flagValues) apply(fs *flag.FlagSet, cfg *Config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "api-key":
			cfg.Auth.APIKey = v.apiKey
		case "require-auth":
			cfg.Auth.RequireAuth = v.requireAuth
		case "host":
			cfg.Server.Host = v.host
		case "port":
			cfg.Server.Port = v.port
		case "ssl-cert":
			cfg.Server.TLSCert = v.tlsCert
		case "ssl-key":
			cfg.Server.TLSKey = v.tlsKey
		case "metrics-addr":
			cfg.Server.MetricsAddr = v.metricsAddr
		case "session-timeout":
			cfg.Server.SessionTimeout = v.sessionTimeout
		case "log-level":
			cfg.Log.Level = v.logLevel
		case "log-format":
			cfg.Log.Format = v.logFormat
		}
	})
}
