package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestContext_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	rc := NewRequestContextWithID(logger, "req-1", 42)
	rc.ConversationID = 7
	rc.Info("chat turn finished", slog.Int(LogFieldIteration, 2))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-1", entry[LogFieldRequestID])
	assert.Equal(t, float64(42), entry[LogFieldUserID])
	assert.Equal(t, float64(7), entry[LogFieldConversationID])
	assert.Equal(t, float64(2), entry[LogFieldIteration])
}

func TestRequestContext_GeneratesID(t *testing.T) {
	rc := NewRequestContext(nil, 1)
	assert.Len(t, rc.RequestID, 36)
	assert.NotNil(t, rc.Logger)
}

func TestFromContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	rc := NewRequestContext(nil, 3)
	ctx := WithRequestContext(context.Background(), rc)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, rc, got)
	assert.Same(t, rc, FromContextOrNew(ctx, 3))
	assert.NotSame(t, rc, FromContextOrNew(context.Background(), 3))
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.RecordTurn(100*time.Millisecond, false)
	m.RecordTurn(300*time.Millisecond, true)
	m.RecordFallback()
	m.RecordToolCall("get_sleep_stats", true)
	m.RecordToolCall("get_sleep_stats", false)
	m.RecordToolCall("create_habit", true)

	s := m.Snapshot()
	assert.Equal(t, int64(2), s.TurnTotal)
	assert.Equal(t, int64(1), s.TurnFailed)
	assert.Equal(t, int64(1), s.TurnFallback)
	assert.Equal(t, int64(200), s.AverageDurationMs)
	assert.InDelta(t, 50.0, s.SuccessRate(), 1e-9)
	require.Len(t, s.Tools, 2)
	assert.Equal(t, ToolSnapshot{Name: "create_habit", Calls: 1}, s.Tools[0])
	assert.Equal(t, ToolSnapshot{Name: "get_sleep_stats", Calls: 2, Failures: 1}, s.Tools[1])

	m.Reset()
	s = m.Snapshot()
	assert.Zero(t, s.TurnTotal)
	assert.Empty(t, s.Tools)
	assert.InDelta(t, 100.0, s.SuccessRate(), 1e-9)
}
