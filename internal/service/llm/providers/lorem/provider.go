// Package lorem is a mock provider that streams lorem ipsum text. Used
// for development and tests without real API keys.
package lorem

import (
	"context"
	"fmt"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"

	"fieldguide/internal/service/llm"
)

// Provider generates lorem ipsum responses.
type Provider struct {
	generator *loremgen.Lorem
}

// NewProvider creates a new lorem provider.
func NewProvider() *Provider {
	return &Provider{generator: loremgen.New()}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "lorem"
}

// SupportsModel reports whether the model name starts with "lorem-".
// Example models: "lorem-fast", "lorem-slow", "lorem-error".
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "lorem-")
}

// streamDelay returns the per-word delay for the model variant.
func streamDelay(model string) time.Duration {
	switch {
	case strings.Contains(model, "slow"):
		return 500 * time.Millisecond
	case strings.Contains(model, "fast"):
		return 0
	default:
		return 33 * time.Millisecond
	}
}

// StreamResponse streams a lorem ipsum reply word by word. The
// "lorem-error" model fails mid-stream after a few words, for exercising
// error handling.
func (p *Provider) StreamResponse(ctx context.Context, req *llm.GenerateRequest) (<-chan llm.StreamEvent, error) {
	if !p.SupportsModel(req.Model) {
		return nil, fmt.Errorf("model %q is not supported by lorem provider", req.Model)
	}

	delay := streamDelay(req.Model)
	failAfter := -1
	if strings.Contains(req.Model, "error") {
		failAfter = 5
	}

	text := p.generator.Paragraph(2, 4)
	words := strings.Fields(text)

	eventChan := make(chan llm.StreamEvent, 10)

	go func() {
		defer close(eventChan)

		sent := 0
		for _, word := range words {
			if failAfter >= 0 && sent >= failAfter {
				eventChan <- llm.StreamEvent{Err: fmt.Errorf("simulated provider failure")}
				return
			}

			select {
			case <-ctx.Done():
				return
			case eventChan <- llm.StreamEvent{TextDelta: word + " "}:
			}

			sent++
			if delay > 0 {
				time.Sleep(delay)
			}
		}

		inputWords := 0
		for _, m := range req.Messages {
			inputWords += len(strings.Fields(m.Content))
		}

		eventChan <- llm.StreamEvent{
			Metadata: &llm.StreamMetadata{
				Model:        req.Model,
				InputTokens:  inputWords,
				OutputTokens: sent,
				StopReason:   "end_turn",
			},
		}
	}()

	return eventChan, nil
}
