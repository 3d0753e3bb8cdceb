// Package generator fans a transcript out to the LLM provider as four
// parallel prompt groups and assembles the ten-field content bundle.
// Assembly is all-or-nothing: if any group fails after retries, no
// bundle is produced.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/contentforge/contentforge/pkg/models"
)

var (
	ErrGenerationFailed  = errors.New("content generation failed")
	ErrMalformedResponse = errors.New("malformed model response")
	ErrUpstream          = errors.New("upstream model call failed")
)

const (
	defaultMaxAttempts  = 3
	defaultRetryBackoff = 2 * time.Second
)

// Config tunes the per-group model calls.
type Config struct {
	Model       string
	MaxTokens   int
	Temperature float64
	CallTimeout time.Duration
	// MaxAttempts is the per-group attempt ceiling, backoff between
	// attempts grows linearly (attempt * RetryBackoff).
	MaxAttempts  int
	RetryBackoff time.Duration
}

// Generator produces complete content bundles from transcripts.
type Generator struct {
	provider models.LLMProvider
	cfg      Config
}

func New(provider models.LLMProvider, cfg Config) *Generator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = defaultRetryBackoff
	}
	return &Generator{provider: provider, cfg: cfg}
}

// GenerateAll runs the four prompt groups concurrently and merges their
// results. It returns a bundle with all ten fields populated, or an
// error wrapping ErrGenerationFailed naming every group that failed.
func (g *Generator) GenerateAll(ctx context.Context, transcript string) (*models.ContentOutputs, error) {
	results := make([]*groupResult, len(promptGroups))
	groupErrs := make([]error, len(promptGroups))

	var wg sync.WaitGroup
	for i, group := range promptGroups {
		wg.Add(1)
		go func(i int, group promptGroup) {
			defer wg.Done()
			results[i], groupErrs[i] = g.runGroup(ctx, group, transcript)
		}(i, group)
	}
	wg.Wait()

	var failed []string
	var errs []error
	for i, err := range groupErrs {
		if err != nil {
			failed = append(failed, promptGroups[i].name)
			errs = append(errs, err)
		}
	}
	if len(failed) > 0 {
		return nil, fmt.Errorf("%w: groups [%s]: %w",
			ErrGenerationFailed, strings.Join(failed, ", "), errors.Join(errs...))
	}

	out := &models.ContentOutputs{}
	for _, r := range results {
		merge(out, r)
	}

	// Word counts are computed here, never taken from the model.
	out.BlogArticle.WordCount = len(strings.Fields(out.BlogArticle.Content))
	out.EmailNewsletter.WordCount = len(strings.Fields(out.EmailNewsletter.Content))

	if !out.Complete() {
		return nil, fmt.Errorf("%w: merged bundle is incomplete", ErrGenerationFailed)
	}
	return out, nil
}

// runGroup executes one prompt group with linear-backoff retries.
// A malformed response retries the same as a provider error: both are
// transient from the caller's point of view.
func (g *Generator) runGroup(ctx context.Context, group promptGroup, transcript string) (*groupResult, error) {
	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(attempt-1) * g.cfg.RetryBackoff
			slog.Debug("retrying prompt group", "group", group.name, "attempt", attempt, "backoff", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := g.callOnce(ctx, group, transcript)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("group %s failed after %d attempts: %w", group.name, g.cfg.MaxAttempts, lastErr)
}

func (g *Generator) callOnce(ctx context.Context, group promptGroup, transcript string) (*groupResult, error) {
	callCtx := ctx
	if g.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.cfg.CallTimeout)
		defer cancel()
	}

	raw, err := g.provider.Complete(callCtx, models.CompletionRequest{
		System:      group.system,
		Prompt:      group.build(transcript),
		JSONMode:    true,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return parseGroup(group, raw)
}
