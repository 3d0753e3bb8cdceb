package llm

import (
	"fmt"

	"github.com/contentforge/contentforge/internal/config"
	"github.com/contentforge/contentforge/internal/llm/mock"
	"github.com/contentforge/contentforge/internal/llm/openai"
	"github.com/contentforge/contentforge/pkg/models"
)

// NewProvider constructs the appropriate LLM provider based on config.
// Called once at server startup.
func NewProvider(cfg config.LLMConfig) (models.LLMProvider, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewProvider(cfg.OpenAI), nil
	case "mock":
		return mock.NewProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q: must be one of openai, mock", cfg.Provider)
	}
}
