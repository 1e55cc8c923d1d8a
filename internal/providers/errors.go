package providers

import (
	"errors"
	"fmt"
)

var (
	// ErrCredentialMissing matches every *CredentialError via errors.Is.
	ErrCredentialMissing = errors.New("credential missing")
	// ErrEmptyCompletion means the provider answered 2xx without usable text.
	ErrEmptyCompletion = errors.New("empty completion")
)

// CredentialError is returned before any network call when the provider's API key is not configured.
type CredentialError struct {
	Provider string
	EnvVar   string
}

func (e *CredentialError) Error() string {
	if e.EnvVar == "" {
		return fmt.Sprintf("%s API key is not configured", e.Provider)
	}
	return fmt.Sprintf("%s API key is not configured (%s is unset)", e.Provider, e.EnvVar)
}

func (e *CredentialError) Is(target error) bool { return target == ErrCredentialMissing }

// HTTPError is a non-2xx provider response.
type HTTPError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "provider http error"
	}
	if e.Body == "" {
		return fmt.Sprintf("%s API error: %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s API error: %d - %s", e.Provider, e.StatusCode, e.Body)
}

// StatusOf returns the provider status code carried by err, or 0.
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}
