package tools

import (
	"context"
	"log/slog"

	"github.com/hrygo/eidos/internal/errors"
	"github.com/hrygo/eidos/internal/observability"
	"github.com/hrygo/eidos/plugin/ai"
	"github.com/hrygo/eidos/store"
)

// Toolset dispatches the tool calls of one chat turn. It is built from the
// catalog of the turn's user and is not shared between turns.
type Toolset struct {
	user     *store.User
	list     []*Descriptor
	index    map[string]*Descriptor
	builtin  *BuiltinExecutor
	external *ExternalInvoker
	metrics  *observability.Metrics
}

// NewToolset binds a catalog to its executors. metrics may be nil.
func NewToolset(user *store.User, list []*Descriptor, builtin *BuiltinExecutor, external *ExternalInvoker, metrics *observability.Metrics) *Toolset {
	index := make(map[string]*Descriptor, len(list))
	for _, d := range list {
		if _, ok := index[d.Name]; !ok {
			index[d.Name] = d
		}
	}
	return &Toolset{
		user:     user,
		list:     list,
		index:    index,
		builtin:  builtin,
		external: external,
		metrics:  metrics,
	}
}

// Descriptors returns the tool definitions for the LLM request.
func (t *Toolset) Descriptors() []ai.ToolDescriptor {
	return ToolDescriptors(t.list)
}

// Execute runs one tool call and returns the JSON result text. Only failures
// that must end the turn are returned as errors.
func (t *Toolset) Execute(ctx context.Context, name, arguments string) (string, error) {
	result, err := t.execute(ctx, name, ParseArgs(arguments))
	if t.metrics != nil {
		t.metrics.RecordToolCall(name, err == nil && result.Success)
	}
	if err != nil {
		return "", err
	}
	return result.JSON(), nil
}

func (t *Toolset) execute(ctx context.Context, name string, args Args) (*Result, error) {
	d, ok := t.index[name]
	if !ok {
		slog.Warn("model called an unknown tool", slog.String("tool", name))
		return Failed(errors.ErrCodeNotFound, "Unknown tool: "+name), nil
	}
	switch d.Target.Kind {
	case TargetExternal:
		if t.external == nil {
			return Failed(errors.ErrCodeTransport, "Module calls are not configured"), nil
		}
		return t.external.Execute(ctx, d, args, t.user)
	default:
		return t.builtin.Execute(ctx, d.Name, args, t.user.ID)
	}
}
