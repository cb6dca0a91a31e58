package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHandler captures log records for testing.
type testHandler struct {
	buf    *bytes.Buffer
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func newTestHandler() *testHandler {
	return &testHandler{
		buf:   &bytes.Buffer{},
		level: slog.LevelDebug,
	}
}

func (h *testHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *testHandler) Handle(_ context.Context, r slog.Record) error {
	data := map[string]any{
		"level": r.Level.String(),
		"msg":   r.Message,
	}
	for _, attr := range h.attrs {
		data[attr.Key] = attr.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		data[a.Key] = a.Value.Any()
		return true
	})
	return json.NewEncoder(h.buf).Encode(data)
}

func (h *testHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newH := &testHandler{
		buf:    h.buf,
		level:  h.level,
		attrs:  make([]slog.Attr, len(h.attrs)+len(attrs)),
		groups: h.groups,
	}
	copy(newH.attrs, h.attrs)
	copy(newH.attrs[len(h.attrs):], attrs)
	return newH
}

func (h *testHandler) WithGroup(name string) slog.Handler {
	return &testHandler{
		buf:    h.buf,
		level:  h.level,
		attrs:  h.attrs,
		groups: append(h.groups, name),
	}
}

func (h *testHandler) getLastRecord() map[string]any {
	lines := bytes.Split(h.buf.Bytes(), []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		if len(lines[i]) > 0 {
			var m map[string]any
			if err := json.Unmarshal(lines[i], &m); err == nil {
				return m
			}
		}
	}
	return nil
}

func TestEnrichLogger(t *testing.T) {
	t.Run("adds graph, run, and node fields", func(t *testing.T) {
		h := newTestHandler()
		logger := slog.New(h)

		enriched := EnrichLogger(logger, "etl", "run-1", "n1")
		require.NotNil(t, enriched)
		enriched.Info("hello")

		rec := h.getLastRecord()
		require.NotNil(t, rec)
		assert.Equal(t, "etl", rec["graph_id"])
		assert.Equal(t, "run-1", rec["run_id"])
		assert.Equal(t, "n1", rec["node_id"])
	})

	t.Run("nil logger stays nil", func(t *testing.T) {
		assert.Nil(t, EnrichLogger(nil, "g", "r", "n"))
	})
}

func TestLogFinishStart(t *testing.T) {
	h := newTestHandler()
	LogFinishStart(slog.New(h), "etl", 3)

	rec := h.getLastRecord()
	require.NotNil(t, rec)
	assert.Equal(t, "DEBUG", rec["level"])
	assert.Equal(t, "graph finish starting", rec["msg"])
	assert.Equal(t, "etl", rec["graph_id"])
	assert.Equal(t, float64(3), rec["nodes"])

	// Nil logger must not panic.
	LogFinishStart(nil, "etl", 3)
}

func TestLogFinishComplete(t *testing.T) {
	h := newTestHandler()
	LogFinishComplete(slog.New(h), "etl", 250*time.Millisecond, 3)

	rec := h.getLastRecord()
	require.NotNil(t, rec)
	assert.Equal(t, "INFO", rec["level"])
	assert.Equal(t, "graph finished", rec["msg"])
	assert.Equal(t, float64(250), rec["duration_ms"])

	LogFinishComplete(nil, "etl", time.Second, 3)
}

func TestLogHookError(t *testing.T) {
	h := newTestHandler()
	LogHookError(slog.New(h), "etl", "n1", errors.New("flush failed"))

	rec := h.getLastRecord()
	require.NotNil(t, rec)
	assert.Equal(t, "ERROR", rec["level"])
	assert.Equal(t, "lifecycle hook failed", rec["msg"])
	assert.Equal(t, "n1", rec["node_id"])
	assert.Equal(t, "flush failed", rec["error"])

	LogHookError(nil, "etl", "n1", errors.New("x"))
}

func TestLogRunStart(t *testing.T) {
	h := newTestHandler()
	LogRunStart(slog.New(h), "etl", "run-1", true)

	rec := h.getLastRecord()
	require.NotNil(t, rec)
	assert.Equal(t, "graph run starting", rec["msg"])
	assert.Equal(t, "run-1", rec["run_id"])
	assert.Equal(t, true, rec["streaming"])

	LogRunStart(nil, "etl", "run-1", false)
}

func TestTimedOperation(t *testing.T) {
	done := TimedOperation()
	time.Sleep(10 * time.Millisecond)
	elapsed := done()
	assert.GreaterOrEqual(t, elapsed, 10*time.Millisecond)
}
