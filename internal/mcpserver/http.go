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


package mcpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandlerOptions wires the HTTP surface around an MCP server.
type HandlerOptions struct {
	Server         *mcp.Server
	Gate           *AuthGate
	Logger         *slog.Logger
	SessionTimeout time.Duration
	Version        string
}

type serviceInfo struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Endpoint string `json:"endpoint"`
}

type healthStatus struct {
	Status string `json:"status"`
}

// NewHandler routes /mcp to the streamable HTTP transport, serves the probe
// endpoints, and puts the gate in front of all of it.
func NewHandler(opts HandlerOptions) http.Handler {
	version := opts.Version
	if version == "" {
		version = "dev"
	}
	server := opts.Server
	mcpHandler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{
		SessionTimeout: opts.SessionTimeout,
		Logger:         opts.Logger,
	})

	mux := http.NewServeMux()
	mux.Handle("/mcp", mcpHandler)
	mux.Handle("/mcp/", mcpHandler)
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, serviceInfo{Name: serverName, Version: version, Endpoint: "/mcp"})
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, healthStatus{Status: "ok"})
	})
	mux.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("pong"))
	})

	var handler http.Handler = mux
	if opts.Gate != nil {
		handler = opts.Gate.Wrap(handler)
	}
	return handler
}
