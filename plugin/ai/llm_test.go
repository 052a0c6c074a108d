package ai

import (
	"encoding/json"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/eidos/internal/profile"
)

func TestNewLLMService(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *LLMConfig
		expectError bool
	}{
		{
			name: "DeepSeek config",
			cfg: &LLMConfig{
				Provider:    "deepseek",
				Model:       "deepseek-chat",
				APIKey:      "test-key",
				BaseURL:     "https://api.deepseek.com",
				MaxTokens:   2048,
				Temperature: 0.7,
			},
		},
		{
			name: "OpenAI config",
			cfg: &LLMConfig{
				Provider: "openai",
				Model:    "gpt-4o-mini",
				APIKey:   "test-key",
			},
		},
		{
			name:        "Missing API key",
			cfg:         &LLMConfig{Provider: "deepseek"},
			expectError: true,
		},
		{
			name:        "Unsupported provider",
			cfg:         &LLMConfig{Provider: "unsupported", APIKey: "k"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLLMService(tt.cfg)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConvertMessages(t *testing.T) {
	messages := []Message{
		SystemPrompt("You are a helpful assistant"),
		UserMessage("Log my sleep"),
		{
			Role: "assistant",
			ToolCalls: []ToolCall{{
				ID:       "call_1",
				Type:     "function",
				Function: FunctionCall{Name: "create_sleep_record", Arguments: `{"quality":7}`},
			}},
		},
		ToolMessage("call_1", `{"success":true}`),
	}

	converted := convertMessages(messages)
	require.Len(t, converted, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, converted[0].Role)
	assert.Equal(t, "Log my sleep", converted[1].Content)
	require.Len(t, converted[2].ToolCalls, 1)
	assert.Equal(t, "create_sleep_record", converted[2].ToolCalls[0].Function.Name)
	assert.Equal(t, openai.ToolTypeFunction, converted[2].ToolCalls[0].Type)
	assert.Equal(t, openai.ChatMessageRoleTool, converted[3].Role)
	assert.Equal(t, "call_1", converted[3].ToolCallID)
}

func TestConvertTools(t *testing.T) {
	tools := convertTools([]ToolDescriptor{{
		Name:        "get_habits",
		Description: "List habits",
		Parameters:  `{"type":"object","properties":{}}`,
	}})
	require.Len(t, tools, 1)
	assert.Equal(t, "get_habits", tools[0].Function.Name)

	raw, err := json.Marshal(tools[0].Function.Parameters)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"object","properties":{}}`, string(raw))
}

func TestNewConfigFromProfile(t *testing.T) {
	cfg := NewConfigFromProfile(&profile.Profile{
		AILLMProvider:     "deepseek",
		AILLMModel:        "deepseek-chat",
		AIDeepSeekAPIKey:  "deepseek-key",
		AIDeepSeekBaseURL: "https://api.deepseek.com",
	})
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "deepseek-key", cfg.LLM.APIKey)
	assert.Equal(t, "https://api.deepseek.com", cfg.LLM.BaseURL)
	assert.Equal(t, 2048, cfg.LLM.MaxTokens)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 0.0001)
	assert.NoError(t, cfg.Validate())

	disabled := NewConfigFromProfile(&profile.Profile{AILLMProvider: "openai"})
	assert.False(t, disabled.Enabled)
	assert.NoError(t, disabled.Validate())
}
