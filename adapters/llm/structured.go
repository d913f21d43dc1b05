package llm

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"godash/domain/core"
	"godash/ports"
)

// StructuredClient layers JSON hygiene over a chat transport. Models are
// asked for bare JSON, but real responses still arrive wrapped in markdown
// fences or preceded by chatter lines, so the content is scrubbed before it
// reaches a decoder.
type StructuredClient struct {
	client ports.LLMClient
}

// NewStructuredClient wraps an LLM transport.
func NewStructuredClient(client ports.LLMClient) *StructuredClient {
	return &StructuredClient{client: client}
}

// GetJSONContent sends the prompt and returns the scrubbed JSON text of the
// response. Transport failures pass through untouched; a response with no
// JSON left after scrubbing is an upstream parse failure.
func (sc *StructuredClient) GetJSONContent(ctx context.Context, prompt string) (string, error) {
	content, err := sc.client.ChatCompletion(ctx, prompt)
	if err != nil {
		return "", err
	}

	cleaned := cleanJSONContent(content)
	if cleaned == "" {
		log.Debug().Int("rawLength", len(content)).Msg("llm response empty after cleaning")
		return "", core.NewUpstreamParseError("response contained no JSON", nil)
	}

	return cleaned, nil
}

// cleanJSONContent removes markdown code fences and chatter lines that
// models emit around JSON payloads.
func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)

	// Markdown code fences, with or without a language tag.
	if strings.HasPrefix(content, "```json") && strings.HasSuffix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	} else if strings.HasPrefix(content, "```") && strings.HasSuffix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	// Drop lines of conversational filler that sometimes precede the payload.
	lines := strings.Split(content, "\n")
	cleanedLines := make([]string, 0, len(lines))
	skipped := 0

	for _, line := range lines {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		if line == "" ||
			strings.HasPrefix(lower, "here is") ||
			strings.HasPrefix(lower, "the json") ||
			strings.HasPrefix(lower, "output:") ||
			strings.HasPrefix(lower, "response:") ||
			strings.HasPrefix(lower, "##") ||
			strings.Contains(lower, "below is") ||
			strings.Contains(lower, "following is") {
			skipped++
			continue
		}
		cleanedLines = append(cleanedLines, line)
	}

	if skipped > 0 {
		log.Debug().Int("lines", skipped).Msg("filtered chatter from llm response")
	}

	content = strings.TrimSpace(strings.Join(cleanedLines, "\n"))

	// Trim leading prose that carries no JSON of its own.
	if strings.Contains(content, "\n{") {
		parts := strings.SplitN(content, "\n{", 2)
		if len(parts) == 2 && !strings.Contains(parts[0], "{") && !strings.Contains(parts[0], "[") {
			content = "{" + parts[1]
		}
	} else if strings.Contains(content, "\n[") {
		parts := strings.SplitN(content, "\n[", 2)
		if len(parts) == 2 && !strings.Contains(parts[0], "{") && !strings.Contains(parts[0], "[") {
			content = "[" + parts[1]
		}
	}

	return content
}
