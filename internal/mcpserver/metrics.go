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

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "quotemcp"

var (
	authDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "auth_decisions_total",
			Help:      "Admission decisions by outcome.",
		},
		[]string{"decision"},
	)
	auditDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "audit_dropped_total",
			Help:      "Audit entries dropped because the queue was full.",
		},
	)
	toolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tool_calls_total",
			Help:      "MCP tool calls by tool and status.",
		},
		[]string{"tool", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		authDecisionsTotal,
		auditDroppedTotal,
		toolCallsTotal,
	)
}
