// Package agent runs the assistant's tool-calling chat loop.
package agent

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/hrygo/eidos/internal/errors"
	"github.com/hrygo/eidos/internal/observability"
	"github.com/hrygo/eidos/plugin/ai"
)

const (
	// MaxIterations bounds the model round-trips of one turn.
	MaxIterations = 3

	// FallbackMessage is returned when the model never produced an answer.
	FallbackMessage = "Sorry, I couldn't complete your request."

	// NoAnswerMessage replaces an empty plain-text answer.
	NoAnswerMessage = "Sorry, I can't answer that."
)

// ToolExecutor runs one tool call and returns the text added to the dialogue.
// Only errors that must end the turn are returned.
type ToolExecutor interface {
	Execute(ctx context.Context, name, arguments string) (string, error)
}

// Agent is a lightweight tool-calling loop over an LLM.
type Agent struct {
	llm     ai.LLMService
	config  AgentConfig
	metrics *observability.Metrics
}

// AgentConfig holds configuration for creating a new Agent.
type AgentConfig struct {
	// MaxIterations is the maximum number of model calls per turn.
	MaxIterations int

	// FallbackMessage is returned when the iteration budget runs out.
	FallbackMessage string

	// NoAnswerMessage is returned when the model answers with empty text.
	NoAnswerMessage string
}

// NewAgent creates a new Agent. metrics may be nil.
func NewAgent(llm ai.LLMService, config AgentConfig, metrics *observability.Metrics) *Agent {
	if config.MaxIterations <= 0 {
		config.MaxIterations = MaxIterations
	}
	if config.FallbackMessage == "" {
		config.FallbackMessage = FallbackMessage
	}
	if config.NoAnswerMessage == "" {
		config.NoAnswerMessage = NoAnswerMessage
	}
	return &Agent{llm: llm, config: config, metrics: metrics}
}

// Run drives one turn. The model answers in plain text, or requests a tool
// whose result is fed back before the next call. Only the first tool call of
// a response is executed. The caller's messages are not modified.
func (a *Agent) Run(ctx context.Context, messages []ai.Message, tools []ai.ToolDescriptor, executor ToolExecutor) (answer string, err error) {
	reqCtx := observability.FromContextOrNew(ctx, 0)
	dialogue := make([]ai.Message, len(messages), len(messages)+2*a.config.MaxIterations)
	copy(dialogue, messages)

	start := time.Now()
	defer func() {
		if a.metrics != nil {
			a.metrics.RecordTurn(time.Since(start), err != nil)
		}
	}()

	for iteration := 1; iteration <= a.config.MaxIterations; iteration++ {
		resp, err := a.llm.ChatWithTools(ctx, dialogue, tools)
		if err != nil {
			reqCtx.Error("LLM call failed", err, slog.Int(observability.LogFieldIteration, iteration))
			return "", errors.LLMUnavailable("LLM call failed", err)
		}

		if len(resp.ToolCalls) == 0 {
			reqCtx.Debug("model answered",
				slog.Int(observability.LogFieldIteration, iteration),
				slog.Int(observability.LogFieldMessageLen, len(resp.Content)))
			if strings.TrimSpace(resp.Content) == "" {
				return a.config.NoAnswerMessage, nil
			}
			return resp.Content, nil
		}

		call := resp.ToolCalls[0]
		if len(resp.ToolCalls) > 1 {
			reqCtx.Debug("model requested several tools, executing the first",
				slog.Int("requested", len(resp.ToolCalls)))
		}
		reqCtx.Info("executing tool",
			slog.Int(observability.LogFieldIteration, iteration),
			slog.String(observability.LogFieldTool, call.Function.Name),
			slog.String("arguments", truncateString(call.Function.Arguments, 200)))

		dialogue = append(dialogue, ai.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: []ai.ToolCall{call},
		})

		result, err := executor.Execute(ctx, call.Function.Name, call.Function.Arguments)
		if err != nil {
			if errors.IsCode(err, errors.ErrCodeStore) {
				reqCtx.Error("tool hit a store failure", err,
					slog.String(observability.LogFieldTool, call.Function.Name))
				return "", err
			}
			result = "Error: " + errors.MessageOf(err)
		}
		dialogue = append(dialogue, ai.ToolMessage(call.ID, result))
	}

	reqCtx.Warn("iteration budget exhausted",
		slog.Int(observability.LogFieldIteration, a.config.MaxIterations))
	if a.metrics != nil {
		a.metrics.RecordFallback()
	}
	return a.config.FallbackMessage, nil
}
