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


package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/novatechflow/quotemcp/internal/config"
	"github.com/novatechflow/quotemcp/internal/mcpserver"
	"github.com/novatechflow/quotemcp/internal/quotes"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if errors.Is(err, config.ErrAPIKeyRequired) {
		log.Fatalf("invalid config: %v (set MCP_API_KEY or pass -api-key)", err)
	}
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := newLogger(os.Stdout, cfg.Log)

	audit := mcpserver.NewAuditLog(logger.With("component", "auth"), 0)
	defer audit.Close()

	gate, err := mcpserver.NewAuthGate(cfg.Auth, mcpserver.WithAuditLog(audit))
	if err != nil {
		log.Fatalf("auth gate init failed: %v", err)
	}
	if !cfg.Auth.RequireAuth {
		logger.Warn("authentication disabled; MCP server is unauthenticated")
	}

	server := mcpserver.NewServer(mcpserver.Options{
		Catalog: quotes.Default(),
		Logger:  logger.With("component", "tools"),
		Version: version,
	})
	handler := mcpserver.NewHandler(mcpserver.HandlerOptions{
		Server:         server,
		Gate:           gate,
		Logger:         logger.With("component", "mcp"),
		SessionTimeout: cfg.Server.SessionTimeout,
		Version:        version,
	})

	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		var err error
		if cfg.Server.TLSEnabled() {
			logger.Info("mcp server listening", "addr", "https://"+addr, "require_auth", cfg.Auth.RequireAuth)
			err = srv.ListenAndServeTLS(cfg.Server.TLSCert, cfg.Server.TLSKey)
		} else {
			logger.Info("mcp server listening", "addr", "http://"+addr, "require_auth", cfg.Auth.RequireAuth)
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Error("mcp server error", "error", err)
			cancel()
		}
	}()

	var metricsSrv *http.Server
	if cfg.Server.MetricsAddr != "" {
		metricsSrv = newMetricsServer(cfg.Server.MetricsAddr)
		go func() {
			logger.Info("metrics listening", "addr", cfg.Server.MetricsAddr)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	logger.Info("quotemcp shutting down")
}

func newMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("service", "quotemcp")
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
