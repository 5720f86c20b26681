// Package llm provides AI-backed transaction categorization with a
// deterministic heuristic fallback. The external service is advisory: any
// transport or parse failure degrades to the fallback path and is never
// surfaced to the caller as an error.
package llm

import "context"

// Client is the transport to an external text-generation service. It
// returns the raw text of the first candidate; all response-shape
// interpretation happens client-side in the Categorizer.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config holds client construction settings.
type Config struct {
	APIKey      string
	Model       string
	Endpoint    string
	Temperature float64
	MaxTokens   int
}
