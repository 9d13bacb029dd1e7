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
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/novatechflow/quotemcp/internal/config"
	"github.com/novatechflow/quotemcp/internal/quotes"
)

// headerTransport adds fixed headers to every outgoing request.
type headerTransport struct {
	headers map[string]string
	base    http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for name, value := range t.headers {
		req.Header.Set(name, value)
	}
	return t.base.RoundTrip(req)
}

func newTestServer(t *testing.T, auth config.AuthConfig) *httptest.Server {
	t.Helper()
	gate, err := NewAuthGate(auth)
	if err != nil {
		t.Fatalf("NewAuthGate: %v", err)
	}
	handler := NewHandler(HandlerOptions{
		Server:  NewServer(Options{Catalog: quotes.Default(), Version: "test"}),
		Gate:    gate,
		Version: "test",
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestProbeEndpoints(t *testing.T) {
	srv := newTestServer(t, config.AuthConfig{RequireAuth: true, APIKey: testKey})

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	var health healthStatus
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || health.Status != "ok" {
		t.Fatalf("unexpected /health: %d %+v", resp.StatusCode, health)
	}

	resp, err = http.Get(srv.URL + "/ping")
	if err != nil {
		t.Fatalf("GET /ping: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "pong" {
		t.Fatalf("unexpected /ping: %d %q", resp.StatusCode, body)
	}

	resp, err = http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	var info serviceInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatalf("decode info: %v", err)
	}
	resp.Body.Close()
	if info.Name != serverName || info.Endpoint != "/mcp" {
		t.Fatalf("unexpected service info: %+v", info)
	}
}

func TestUnknownPathIsGatedBeforeRouting(t *testing.T) {
	srv := newTestServer(t, config.AuthConfig{RequireAuth: true, APIKey: testKey})

	resp, err := http.Get(srv.URL + "/does-not-exist")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 before routing, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/does-not-exist", nil)
	req.Header.Set("x-api-key", testKey)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET with key: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 once authenticated, got %d", resp.StatusCode)
	}
}

func TestMCPEndpointRejections(t *testing.T) {
	srv := newTestServer(t, config.AuthConfig{RequireAuth: true, APIKey: testKey})

	cases := []struct {
		name    string
		headers map[string]string
		status  int
		body    string
	}{
		{"missing", nil, http.StatusUnauthorized, missingBodyJSON},
		{"invalid", map[string]string{"x-api-key": "wrong"}, http.StatusForbidden, invalidBodyJSON},
		{"wrong first header", map[string]string{"x-api-key": "wrong", "Authorization": "Bearer " + testKey}, http.StatusForbidden, invalidBodyJSON},
	}
	for _, tc := range cases {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/mcp", strings.NewReader(`{}`))
		if err != nil {
			t.Fatalf("%s: build request: %v", tc.name, err)
		}
		for name, value := range tc.headers {
			req.Header.Set(name, value)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s: request: %v", tc.name, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != tc.status || string(body) != tc.body {
			t.Fatalf("%s: got %d %s", tc.name, resp.StatusCode, body)
		}
	}
}

func TestMCPToolsThroughGate(t *testing.T) {
	forms := []map[string]string{
		{"x-api-key": testKey},
		{"Authorization": "Bearer " + testKey},
		{"api-key": testKey},
	}
	srv := newTestServer(t, config.AuthConfig{RequireAuth: true, APIKey: testKey})

	for _, headers := range forms {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		session := connect(t, ctx, srv.URL, headers)

		count := callTool[QuotesCountOutput](t, ctx, session, toolQuotesCount, nil)
		if count.TotalQuotes != 20 {
			t.Fatalf("headers %v: unexpected count %+v", headers, count)
		}
		quote := callTool[QuoteOutput](t, ctx, session, toolQuoteOfTheDay, map[string]any{"category": "inspirational"})
		if quote.Quote == "" || quote.Author == "" || quote.Category != "inspirational" || quote.TotalQuotesAvailable != 20 {
			t.Fatalf("headers %v: unexpected quote %+v", headers, quote)
		}
		random := callTool[QuoteOutput](t, ctx, session, toolRandomQuote, nil)
		if random.Category != "random" {
			t.Fatalf("headers %v: unexpected random quote %+v", headers, random)
		}

		res, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name:      toolQuoteOfTheDay,
			Arguments: map[string]any{"category": "funny"},
		})
		if err != nil {
			t.Fatalf("CallTool with bad category: %v", err)
		}
		if !res.IsError {
			t.Fatalf("expected tool error for unknown category")
		}
		session.Close()
		cancel()
	}
}

func TestMCPConnectWithoutKeyFails(t *testing.T) {
	srv := newTestServer(t, config.AuthConfig{RequireAuth: true, APIKey: testKey})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := mcp.NewClient(&mcp.Implementation{Name: "mcp-test-client", Version: "test"}, nil)
	if session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: srv.URL + "/mcp"}, nil); err == nil {
		session.Close()
		t.Fatalf("expected connect to fail without API key")
	}
}

func TestMCPWithoutAuth(t *testing.T) {
	srv := newTestServer(t, config.AuthConfig{})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	session := connect(t, ctx, srv.URL, map[string]string{"x-api-key": "anything"})
	defer session.Close()
	count := callTool[QuotesCountOutput](t, ctx, session, toolQuotesCount, nil)
	if count.TotalQuotes != 20 {
		t.Fatalf("unexpected count %+v", count)
	}
}

func connect(t *testing.T, ctx context.Context, baseURL string, headers map[string]string) *mcp.ClientSession {
	t.Helper()
	client := mcp.NewClient(&mcp.Implementation{Name: "mcp-test-client", Version: "test"}, nil)
	transport := &mcp.StreamableClientTransport{
		Endpoint: baseURL + "/mcp",
		HTTPClient: &http.Client{
			Transport: &headerTransport{headers: headers, base: http.DefaultTransport},
		},
	}
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		t.Fatalf("Connect with %v: %v", headers, err)
	}
	return session
}

func callTool[T any](t *testing.T, ctx context.Context, session *mcp.ClientSession, name string, args map[string]any) T {
	t.Helper()
	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool %s: %v", name, err)
	}
	if res.IsError {
		t.Fatalf("CallTool %s returned error", name)
	}
	var out T
	if res.StructuredContent != nil {
		payload, err := json.Marshal(res.StructuredContent)
		if err != nil {
			t.Fatalf("marshal output: %v", err)
		}
		if err := json.Unmarshal(payload, &out); err != nil {
			t.Fatalf("unmarshal output: %v", err)
		}
		return out
	}
	if len(res.Content) > 0 {
		if text, ok := res.Content[0].(*mcp.TextContent); ok {
			if err := json.Unmarshal([]byte(text.Text), &out); err != nil {
				t.Fatalf("unmarshal text output: %v", err)
			}
			return out
		}
	}
	t.Fatalf("tool %s returned no output", name)
	return out
}
