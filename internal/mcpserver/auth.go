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
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/novatechflow/quotemcp/internal/config"
)

// Decision is the per-request outcome of the admission gate.
type Decision int

const (
	// DecisionAllowed means a matching API key was presented.
	DecisionAllowed Decision = iota
	// DecisionExempt means the path bypasses authentication.
	DecisionExempt
	// DecisionDisabled means authentication is not enforced.
	DecisionDisabled
	// DecisionMissing means no credential was found in any accepted header.
	DecisionMissing
	// DecisionInvalid means a credential was found but did not match.
	DecisionInvalid
)

func (d Decision) String() string {
	switch d {
	case DecisionAllowed:
		return "allowed"
	case DecisionExempt:
		return "exempt"
	case DecisionDisabled:
		return "disabled"
	case DecisionMissing:
		return "missing_key"
	case DecisionInvalid:
		return "invalid_key"
	default:
		return "unknown"
	}
}

// Forward reports whether the request proceeds to the wrapped handler.
func (d Decision) Forward() bool {
	return d == DecisionAllowed || d == DecisionExempt || d == DecisionDisabled
}

const maxRequestIDLen = 128

var exemptPaths = map[string]struct{}{
	"/":       {},
	"/health": {},
	"/ping":   {},
}

// IsExemptPath reports whether path bypasses authentication. Matching is exact.
func IsExemptPath(path string) bool {
	_, ok := exemptPaths[path]
	return ok
}

type credentialSource struct {
	header  string
	extract func(http.Header) string
}

// credentialChain is evaluated in order; the first non-empty value wins and
// later headers are never consulted.
var credentialChain = []credentialSource{
	{header: "x-api-key", extract: headerValue("x-api-key")},
	// Unreachable once net/http canonicalizes names; kept so the order
	// matches what clients are told.
	{header: "X-API-Key", extract: headerValue("X-API-Key")},
	{header: "Authorization", extract: func(h http.Header) string {
		return stripBearerPrefix(headerValue("Authorization")(h))
	}},
	{header: "api-key", extract: headerValue("api-key")},
}

// headerValue looks the name up canonically and then verbatim, for headers
// set directly on the map without canonicalization.
func headerValue(name string) func(http.Header) string {
	return func(h http.Header) string {
		if v := h.Get(name); v != "" {
			return v
		}
		if values := h[name]; len(values) > 0 {
			return values[0]
		}
		return ""
	}
}

// stripBearerPrefix removes a literal "Bearer " prefix. Values without the
// prefix are returned unchanged.
func stripBearerPrefix(value string) string {
	return strings.TrimPrefix(value, "Bearer ")
}

// extractCredential returns the first non-empty credential and the header it
// came from.
func extractCredential(h http.Header) (string, string, bool) {
	for _, source := range credentialChain {
		if v := source.extract(h); v != "" {
			return v, source.header, true
		}
	}
	return "", "", false
}

// AuthGate admits or rejects requests on a shared API key. It holds only the
// configuration it was built with and is safe for concurrent use.
type AuthGate struct {
	cfg   config.AuthConfig
	audit *AuditLog
}

type GateOption func(*AuthGate)

// WithAuditLog sends every enforced decision to audit.
func WithAuditLog(audit *AuditLog) GateOption {
	return func(g *AuthGate) {
		g.audit = audit
	}
}

// NewAuthGate fails with config.ErrAPIKeyRequired when authentication is
// required but no key is configured.
func NewAuthGate(cfg config.AuthConfig, opts ...GateOption) (*AuthGate, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &AuthGate{cfg: cfg}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Decide classifies r without writing a response.
func (g *AuthGate) Decide(r *http.Request) Decision {
	if !g.cfg.RequireAuth {
		return DecisionDisabled
	}
	if IsExemptPath(r.URL.Path) {
		return DecisionExempt
	}
	provided, _, ok := extractCredential(r.Header)
	if !ok {
		return DecisionMissing
	}
	if subtle.ConstantTimeCompare([]byte(provided), []byte(g.cfg.APIKey)) != 1 {
		return DecisionInvalid
	}
	return DecisionAllowed
}

// Wrap returns a handler that rejects unauthenticated requests with a JSON
// error body and passes the rest to next untouched.
func (g *AuthGate) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := g.Decide(r)
		authDecisionsTotal.WithLabelValues(decision.String()).Inc()

		switch decision {
		case DecisionMissing:
			g.record(r, decision)
			writeMissingAPIKey(w)
			return
		case DecisionInvalid:
			g.record(r, decision)
			writeInvalidAPIKey(w)
			return
		case DecisionAllowed:
			g.record(r, decision)
		}
		next.ServeHTTP(w, r)
	})
}

func (g *AuthGate) record(r *http.Request, decision Decision) {
	if g.audit == nil {
		return
	}
	g.audit.Record(AuditEntry{
		RequestID:  requestID(r),
		Decision:   decision,
		Method:     r.Method,
		Path:       r.URL.Path,
		RemoteAddr: r.RemoteAddr,
	})
}

func requestID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-Request-Id")); id != "" && len(id) <= maxRequestIDLen {
		return id
	}
	return uuid.NewString()
}
