package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/contentforge/contentforge/internal/config"
	"github.com/contentforge/contentforge/internal/llm/llmerr"
	"github.com/contentforge/contentforge/pkg/models"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

// Provider implements models.LLMProvider using the OpenAI API.
type Provider struct {
	client          openai.Client
	model           string
	transcribeModel string
}

func NewProvider(cfg config.OpenAIConfig) *Provider {
	return &Provider{
		client:          openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:           cfg.Model,
		transcribeModel: cfg.TranscribeModel,
	}
}

func (p *Provider) Name() string { return "openai" }

// Complete sends a system+user prompt pair and returns the raw text response.
func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.JSONMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{
				Type: "json_object",
			},
		}
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", p.classify(ctx, err, "chat completion")
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: no completion choices returned", llmerr.ErrInvalidResponse)
	}
	return completion.Choices[0].Message.Content, nil
}

// Transcribe converts raw audio bytes into plain text.
func (p *Provider) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	resp, err := p.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: openai.AudioModel(p.transcribeModel),
		File:  openai.File(bytes.NewReader(audio), filename, "application/octet-stream"),
	})
	if err != nil {
		return "", p.classify(ctx, err, "transcription")
	}
	return resp.Text, nil
}

func (p *Provider) classify(ctx context.Context, err error, op string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", llmerr.ErrInferenceTimeout, op, err)
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 500 {
		return fmt.Errorf("%w: %s: %v", llmerr.ErrProviderUnavailable, op, err)
	}
	return fmt.Errorf("openai %s: %w", op, err)
}

var _ models.LLMProvider = (*Provider)(nil)
