package llm

import "context"

// Client abstracts the multimodal model the relay forwards to.
// Implementations must be safe for concurrent use.
type Client interface {
	// AnalyzeImage sends the prompt together with a base64-encoded PNG
	// payload and returns the generated text.
	AnalyzeImage(ctx context.Context, prompt, imageBase64 string) (string, error)
	// SourceName returns a short provider label used in logs and metrics.
	SourceName() string
}
