package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredentials means no generation API key was resolvable from
	// the request, the account settings or the process configuration.
	ErrMissingCredentials = errors.New("no generation credentials configured")

	// ErrMissingKeywordOrLink means neither a keyword nor a promotional link
	// was resolvable for the request.
	ErrMissingKeywordOrLink = errors.New("keyword or promotional link required")

	// ErrPolicyViolation means the hard content filter rejected the composed
	// text. It is never downgraded to soft-filtered output.
	ErrPolicyViolation = errors.New("content rejected by safety filter")
)

// GenerationError wraps a provider failure with diagnostic detail
type GenerationError struct {
	Provider string
	Model    string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (provider: %s, model: %s): %v", e.Provider, e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
