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
	"log/slog"
	"sync"
	"sync/atomic"
)

const defaultAuditQueueSize = 1024

// AuditEntry describes one enforced admission decision. It never carries
// header values.
type AuditEntry struct {
	RequestID  string
	Decision   Decision
	Method     string
	Path       string
	RemoteAddr string
}

// AuditLog writes audit entries from a bounded queue on its own goroutine so
// a slow log sink cannot stall request handling. Entries that do not fit are
// dropped and counted. A nil *AuditLog discards everything.
type AuditLog struct {
	logger *slog.Logger
	q      chan AuditEntry
	done   chan struct{}
	wg     sync.WaitGroup

	closeOnce sync.Once
	dropped   atomic.Uint64
}

func NewAuditLog(logger *slog.Logger, queueSize int) *AuditLog {
	if logger == nil {
		logger = slog.Default()
	}
	if queueSize < 1 {
		queueSize = defaultAuditQueueSize
	}
	a := &AuditLog{
		logger: logger,
		q:      make(chan AuditEntry, queueSize),
		done:   make(chan struct{}),
	}
	a.wg.Add(1)
	go a.run()
	return a
}

// Record enqueues entry without blocking.
func (a *AuditLog) Record(entry AuditEntry) {
	if a == nil {
		return
	}
	select {
	case <-a.done:
		a.drop()
		return
	default:
	}
	select {
	case a.q <- entry:
	default:
		a.drop()
	}
}

// Dropped returns how many entries were discarded since creation.
func (a *AuditLog) Dropped() uint64 {
	if a == nil {
		return 0
	}
	return a.dropped.Load()
}

// Close flushes queued entries and stops the writer. It is safe to call more
// than once.
func (a *AuditLog) Close() {
	if a == nil {
		return
	}
	a.closeOnce.Do(func() {
		close(a.done)
		a.wg.Wait()
	})
}

func (a *AuditLog) drop() {
	a.dropped.Add(1)
	auditDroppedTotal.Inc()
}

func (a *AuditLog) run() {
	defer a.wg.Done()
	for {
		select {
		case entry := <-a.q:
			a.write(entry)
		case <-a.done:
			for {
				select {
				case entry := <-a.q:
					a.write(entry)
				default:
					return
				}
			}
		}
	}
}

func (a *AuditLog) write(entry AuditEntry) {
	// A panicking handler must not take the process down with it.
	defer func() { _ = recover() }()

	level, msg := slog.LevelInfo, "api key accepted"
	switch entry.Decision {
	case DecisionMissing:
		level, msg = slog.LevelWarn, "missing api key"
	case DecisionInvalid:
		level, msg = slog.LevelWarn, "invalid api key"
	}
	a.logger.LogAttrs(context.Background(), level, msg,
		slog.String("request_id", entry.RequestID),
		slog.String("decision", entry.Decision.String()),
		slog.String("method", entry.Method),
		slog.String("path", entry.Path),
		slog.String("remote_addr", entry.RemoteAddr),
	)
}
