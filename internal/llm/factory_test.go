package llm_test

import (
	"testing"

	"github.com/contentforge/contentforge/internal/config"
	"github.com/contentforge/contentforge/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_OpenAI(t *testing.T) {
	cfg := config.LLMConfig{
		Provider: "openai",
		OpenAI:   config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini", TranscribeModel: "whisper-1"},
	}
	p, err := llm.NewProvider(cfg)
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())
}

func TestNewProvider_Mock(t *testing.T) {
	cfg := config.LLMConfig{Provider: "mock"}
	p, err := llm.NewProvider(cfg)
	require.NoError(t, err)
	assert.Equal(t, "mock", p.Name())
}

func TestNewProvider_Unknown(t *testing.T) {
	cfg := config.LLMConfig{Provider: "unknown-provider"}
	_, err := llm.NewProvider(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown LLM provider")
	assert.Contains(t, err.Error(), "unknown-provider")
}
