package llm

import "github.com/contentforge/contentforge/internal/llm/llmerr"

var (
	ErrProviderUnavailable = llmerr.ErrProviderUnavailable
	ErrInferenceTimeout    = llmerr.ErrInferenceTimeout
	ErrInvalidResponse     = llmerr.ErrInvalidResponse
)
