// Package audit implements an append-only, in-memory ring buffer of
// AuditRecord values with periodic flush to a JSON file and
// newest-first queries: a fixed-capacity slice with a monotonic insert
// position that overwrites its oldest entry first once full, keyed by a
// sortable ULID rather than a numeric counter.
package audit

import (
	"encoding/json"
	"os"
	"sort"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/wyd-tools/gamevault/internal/errs"
	"github.com/wyd-tools/gamevault/internal/model"
	"github.com/wyd-tools/gamevault/internal/reporter"
)

// Log is the audit log. Every Facade call produces exactly one record
// here, allowed or denied.
type Log struct {
	mu              sync.Mutex
	ring            []model.AuditRecord
	cap             int
	nextPos         int
	count           int
	flushEveryN     int
	sinceFlush      int
	path            string
	report          reporter.Reporter
}

// Config bounds the log's in-memory cap and flush cadence.
type Config struct {
	Path            string
	MaxEntries      int // default 10000
	FlushEveryN     int // default 100
}

// New returns a Log configured per cfg, backed by the file at cfg.Path.
func New(cfg Config, report reporter.Reporter) *Log {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 10_000
	}
	if cfg.FlushEveryN <= 0 {
		cfg.FlushEveryN = 100
	}
	if report == nil {
		report = reporter.NoOp()
	}
	return &Log{
		ring:        make([]model.AuditRecord, cfg.MaxEntries),
		cap:         cfg.MaxEntries,
		flushEveryN: cfg.FlushEveryN,
		path:        cfg.Path,
		report:      report,
	}
}

// Record appends one record, generating a sortable ULID if rec.ID is
// empty, and flushes to disk every FlushEveryN records.
func (l *Log) Record(rec model.AuditRecord) model.AuditRecord {
	if rec.ID == "" {
		rec.ID = ulid.Make().String()
	}

	l.mu.Lock()
	l.ring[l.nextPos] = rec
	l.nextPos = (l.nextPos + 1) % l.cap
	if l.count < l.cap {
		l.count++
	}
	l.sinceFlush++
	shouldFlush := l.sinceFlush >= l.flushEveryN
	l.mu.Unlock()

	if shouldFlush {
		if err := l.Flush(); err != nil {
			l.report.Error("audit: periodic flush failed", reporter.Fields{"error": err})
		}
	}
	return rec
}

// History returns records matching roleFilter (empty matches every
// role), newest-first, capped at maxEntries (0 means unbounded).
func (l *Log) History(roleFilter string, maxEntries int) []model.AuditRecord {
	l.mu.Lock()
	snapshot := l.snapshotLocked()
	l.mu.Unlock()

	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].ID > snapshot[j].ID })

	if roleFilter == "" && maxEntries <= 0 {
		return snapshot
	}
	out := make([]model.AuditRecord, 0, len(snapshot))
	for _, r := range snapshot {
		if roleFilter != "" && r.Role != roleFilter {
			continue
		}
		out = append(out, r)
		if maxEntries > 0 && len(out) >= maxEntries {
			break
		}
	}
	return out
}

// snapshotLocked must be called with l.mu held; it returns every live
// entry in insertion order.
func (l *Log) snapshotLocked() []model.AuditRecord {
	if l.count == 0 {
		return nil
	}
	start := l.nextPos - l.count
	if start < 0 {
		start += l.cap
	}
	out := make([]model.AuditRecord, 0, l.count)
	for i := 0; i < l.count; i++ {
		idx := (start + i) % l.cap
		out = append(out, l.ring[idx])
	}
	return out
}

// Flush writes every in-memory record to l.path, truncating the file to
// exactly the current in-memory set on every flush.
func (l *Log) Flush() error {
	l.mu.Lock()
	snapshot := l.snapshotLocked()
	l.sinceFlush = 0
	l.mu.Unlock()

	if l.path == "" {
		return nil
	}
	raw, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return errs.Wrap(errs.CodeRegistryCorruption, err)
	}
	if err := os.WriteFile(l.path, raw, 0o644); err != nil {
		return errs.Wrap(errs.CodeWriteFailure, err)
	}
	return nil
}
