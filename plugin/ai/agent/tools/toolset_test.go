package tools

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/eidos/internal/errors"
	"github.com/hrygo/eidos/internal/observability"
	"github.com/hrygo/eidos/server/service/tracker"
	"github.com/hrygo/eidos/store"
)

func decodeResult(t *testing.T, text string) *Result {
	t.Helper()
	r := &Result{}
	require.NoError(t, json.Unmarshal([]byte(text), r))
	return r
}

func TestToolset_RoutesBuiltinAndExternal(t *testing.T) {
	ctx := context.Background()
	e, _, _, user := newTestExecutor(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	list := append(Builtins(), externalDescriptor(srv.URL, "/forecast"))
	metrics := observability.NewMetrics()
	ts := NewToolset(user, list, e, NewExternalInvoker(staticSigner{}, time.Second), metrics)
	assert.Len(t, ts.Descriptors(), len(list))

	text, err := ts.Execute(ctx, ToolCreateHabit, `{"name":"Stretch"}`)
	require.NoError(t, err)
	assert.True(t, decodeResult(t, text).Success)

	text, err = ts.Execute(ctx, "get_forecast", `{"city":"Oslo"}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ok": true}, decodeResult(t, text).Data)

	text, err = ts.Execute(ctx, "summon_dragon", `{}`)
	require.NoError(t, err)
	r := decodeResult(t, text)
	assert.False(t, r.Success)
	assert.Equal(t, string(errors.ErrCodeNotFound), r.Code)

	// Malformed arguments are treated as an empty object.
	text, err = ts.Execute(ctx, ToolCreateHabit, `{"name":`)
	require.NoError(t, err)
	assert.Equal(t, string(errors.ErrCodeInvalidArgument), decodeResult(t, text).Code)

	snap := metrics.Snapshot()
	calls := map[string]observability.ToolSnapshot{}
	for _, tool := range snap.Tools {
		calls[tool.Name] = tool
	}
	assert.Equal(t, int64(2), calls[ToolCreateHabit].Calls)
	assert.Equal(t, int64(1), calls[ToolCreateHabit].Failures)
	assert.Equal(t, int64(1), calls["summon_dragon"].Failures)
}

type brokenTracker struct {
	tracker.Service
}

func (brokenTracker) SleepStats(context.Context, int32) (*tracker.SleepStats, error) {
	return nil, errors.Store("failed to list sleep records", stderrors.New("database is locked"))
}

func TestToolset_StoreErrorAborts(t *testing.T) {
	user := &store.User{ID: 1}
	ts := NewToolset(user, Builtins(), NewBuiltinExecutor(brokenTracker{}, nil), nil, nil)

	_, err := ts.Execute(context.Background(), ToolGetSleepStats, "")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeStore))
}
