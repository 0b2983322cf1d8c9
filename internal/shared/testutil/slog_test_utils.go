package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Entry is one captured log record.
type Entry struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// BufferedSlogHandler collects every record a logger emits so tests
// can assert on log behavior. Safe for concurrent use; attrs attached
// via Logger.With are folded into each captured entry.
type BufferedSlogHandler struct {
	mu      sync.Mutex
	entries []Entry
	base    []slog.Attr
}

// NewBufferedSlogHandler returns an empty capturing handler.
func NewBufferedSlogHandler() *BufferedSlogHandler {
	return &BufferedSlogHandler{}
}

// NewTestLogger returns a logger wired to a fresh capturing handler.
func NewTestLogger(t testingT) (*slog.Logger, *BufferedSlogHandler) {
	t.Helper()
	h := NewBufferedSlogHandler()
	return slog.New(h), h
}

// testingT is the subset of *testing.T the helpers need.
type testingT interface {
	Helper()
	Errorf(format string, args ...any)
	Logf(format string, args ...any)
}

func (h *BufferedSlogHandler) Enabled(context.Context, slog.Level) bool {
	// Tests want everything, including debug.
	return true
}

func (h *BufferedSlogHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, r.NumAttrs()+len(h.base))
	for _, a := range h.base {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, Entry{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	return nil
}

func (h *BufferedSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	// Derived handlers share the parent's entry buffer so captures
	// land in one place regardless of which logger emitted them.
	return &derivedHandler{root: h.root(), base: append(h.baseAttrs(), attrs...)}
}

func (h *BufferedSlogHandler) WithGroup(string) slog.Handler {
	// Groups are flattened for assertions.
	return h
}

func (h *BufferedSlogHandler) root() *BufferedSlogHandler { return h }

func (h *BufferedSlogHandler) baseAttrs() []slog.Attr {
	return append([]slog.Attr{}, h.base...)
}

// derivedHandler carries Logger.With attrs while writing into the
// root handler's buffer.
type derivedHandler struct {
	root *BufferedSlogHandler
	base []slog.Attr
}

func (d *derivedHandler) Enabled(context.Context, slog.Level) bool { return true }

func (d *derivedHandler) Handle(ctx context.Context, r slog.Record) error {
	r = r.Clone()
	r.AddAttrs(d.base...)
	return d.root.Handle(ctx, r)
}

func (d *derivedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &derivedHandler{root: d.root, base: append(append([]slog.Attr{}, d.base...), attrs...)}
}

func (d *derivedHandler) WithGroup(string) slog.Handler { return d }

// Records returns a copy of everything captured so far.
func (h *BufferedSlogHandler) Records() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// RecordsByLevel returns the captured entries at exactly level.
func (h *BufferedSlogHandler) RecordsByLevel(level slog.Level) []Entry {
	var out []Entry
	for _, e := range h.Records() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// ContainsMessage reports whether any entry's message contains substr.
func (h *BufferedSlogHandler) ContainsMessage(substr string) bool {
	for _, e := range h.Records() {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// ContainsAttr reports whether any entry carries key with exactly
// value. Note slog stores ints as int64, so pass int64 for counters.
func (h *BufferedSlogHandler) ContainsAttr(key string, value any) bool {
	for _, e := range h.Records() {
		if got, ok := e.Attrs[key]; ok && got == value {
			return true
		}
	}
	return false
}

// Count returns how many entries were captured.
func (h *BufferedSlogHandler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Reset drops all captured entries.
func (h *BufferedSlogHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = h.entries[:0]
}

// AssertLogContains fails the test unless an entry at level has a
// message containing substr.
func AssertLogContains(t testingT, handler *BufferedSlogHandler, level slog.Level, substr string) {
	t.Helper()
	entries := handler.RecordsByLevel(level)
	for _, e := range entries {
		if strings.Contains(e.Message, substr) {
			return
		}
	}
	t.Errorf("no %s log containing %q", level, substr)
	for _, e := range entries {
		t.Logf("captured at %s: %s", level, e.Message)
	}
}

// AssertNoErrors fails the test if any error-level entry was captured.
func AssertNoErrors(t testingT, handler *BufferedSlogHandler) {
	t.Helper()
	for _, e := range handler.RecordsByLevel(slog.LevelError) {
		t.Errorf("unexpected error log: %s %v", e.Message, e.Attrs)
	}
}
