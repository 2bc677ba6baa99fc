// Package llm defines the generative completion service the fallback path
// talks to. Providers live in sub-packages.
package llm

import (
	"context"

	"github.com/set-night/mesabot/internal/domain"
)

// Request is one completion call: system instructions, the conversation so
// far (oldest first, ending with the user's last message) and sampling limits.
type Request struct {
	SystemPrompt    string
	History         []domain.Message
	MaxOutputTokens int
	Temperature     float32
}

type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}
