package llm

import (
	"errors"
	"fmt"
)

// FallbackText is returned in place of the generated text when the
// provider answered successfully but without any text part.
const FallbackText = "분석 결과를 받아오지 못했습니다. 다시 시도해 주세요."

var (
	// ErrEncode wraps failures to build the upstream request.
	ErrEncode = errors.New("failed to encode upstream request")
	// ErrTransport wraps network failures, including timeouts.
	ErrTransport = errors.New("upstream transport failure")
	// ErrDecode wraps failures to read or parse the upstream response.
	ErrDecode = errors.New("failed to decode upstream response")
)

// APIError is returned when the provider answers with a non-2xx status.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}
