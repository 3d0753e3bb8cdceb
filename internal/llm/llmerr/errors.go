// Package llmerr holds the LLM sentinel errors in a leaf package so that
// provider implementations imported by the llm factory can reference them
// without an import cycle. The llm package re-exports these values.
package llmerr

import "errors"

var (
	ErrProviderUnavailable = errors.New("llm provider unavailable")
	ErrInferenceTimeout    = errors.New("llm inference timeout")
	ErrInvalidResponse     = errors.New("llm provider returned invalid response")
)
