package ports

import "context"

// LLMClient is the transport to a hosted chat-completion provider. The
// implementation owns model selection, token limits and temperature; callers
// only supply the prompt.
type LLMClient interface {
	ChatCompletion(ctx context.Context, prompt string) (string, error)
}
