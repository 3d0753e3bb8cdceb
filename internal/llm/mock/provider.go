package mock

import (
	"context"
	"strings"

	"github.com/contentforge/contentforge/internal/llm/llmerr"
	"github.com/contentforge/contentforge/pkg/models"
)

// MockProvider satisfies models.LLMProvider for testing.
type MockProvider struct {
	Name_          string
	CompleteFunc   func(ctx context.Context, req models.CompletionRequest) (string, error)
	TranscribeFunc func(ctx context.Context, audio []byte, filename string) (string, error)
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return "", nil
}

func (m *MockProvider) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audio, filename)
	}
	return "", nil
}

// NewProvider returns a MockProvider with canned responses that satisfy
// the generator's JSON schemas, so the full stack can run without an API key.
func NewProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock",
		CompleteFunc: func(_ context.Context, req models.CompletionRequest) (string, error) {
			switch {
			case strings.Contains(req.System, "social media"):
				return `{"twitter_posts":["Mock tweet one.","Mock tweet two."],"linkedin_posts":["Mock LinkedIn post."],"instagram_captions":["Mock caption."]}`, nil
			case strings.Contains(req.System, "long-form"):
				return `{"blog_article":{"title":"Mock Article","content":"Mock article body for testing the pipeline end to end."},"email_newsletter":{"subject":"Mock Newsletter","content":"Mock newsletter body for testing."}}`, nil
			case strings.Contains(req.System, "quotable"):
				return `{"quote_graphics":["A mock quote worth framing."],"tiktok_hooks":["Mock hook!"],"video_script_summary":"A mock summary of the video script."}`, nil
			default:
				return `{"twitter_thread":["1/ Mock thread opener.","2/ Mock thread closer."],"podcast_show_notes":["00:00 Mock intro."]}`, nil
			}
		},
		TranscribeFunc: func(_ context.Context, _ []byte, _ string) (string, error) {
			return "This is a mock transcription of the uploaded audio, long enough to pass downstream validation checks.", nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		CompleteFunc: func(_ context.Context, _ models.CompletionRequest) (string, error) {
			return "", err
		},
		TranscribeFunc: func(_ context.Context, _ []byte, _ string) (string, error) {
			return "", err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-timeout",
		CompleteFunc: func(ctx context.Context, _ models.CompletionRequest) (string, error) {
			<-ctx.Done()
			return "", llmerr.ErrInferenceTimeout
		},
		TranscribeFunc: func(ctx context.Context, _ []byte, _ string) (string, error) {
			<-ctx.Done()
			return "", llmerr.ErrInferenceTimeout
		},
	}
}

// Compile-time check that MockProvider implements LLMProvider.
var _ models.LLMProvider = (*MockProvider)(nil)
