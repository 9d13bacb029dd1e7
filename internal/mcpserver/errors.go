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
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON payload returned when the gate rejects a request.
// Connector error handling keys off these exact field names.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details"`
}

var (
	missingAPIKeyBody = ErrorBody{
		Error:   "Unauthorized",
		Message: "API key required. Provide it via the x-api-key header.",
		Details: "This MCP server requires authentication. Include a valid API key in the x-api-key header.",
	}
	invalidAPIKeyBody = ErrorBody{
		Error:   "Forbidden",
		Message: "Invalid API key.",
		Details: "The provided API key is not valid for this MCP server.",
	}
)

func writeMissingAPIKey(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `ApiKey header="x-api-key"`)
	writeError(w, http.StatusUnauthorized, missingAPIKeyBody)
}

func writeInvalidAPIKey(w http.ResponseWriter) {
	writeError(w, http.StatusForbidden, invalidAPIKeyBody)
}

func writeError(w http.ResponseWriter, status int, body ErrorBody) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}
