package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"fieldguide/internal/domain"
	"fieldguide/internal/domain/models"
)

const transformIdentity = "You convert raw notes into a structured field guide issue. Respond with a single JSON object only, no prose before or after."

const transformInstructions = `Produce JSON with this shape:
{"title": string, "subtitle": string, "tagline": string, "intro": string,
 "sections": [{"title": string, "entries": [{"pattern": string,
 "description": string, "signals": [string], "protocol": string}]}]}
Group related material into sections. Name each pattern crisply. Signals
are observable cues; the protocol is a short numbered response.`

// TransformChunk is one increment of a transform stream. The final
// chunk has Done set and reports whether the accumulated output parsed
// as issue JSON, along with the raw text either way.
type TransformChunk struct {
	Content string `json:"content,omitempty"`
	Done    bool   `json:"done,omitempty"`
	Valid   bool   `json:"valid,omitempty"`
	Raw     string `json:"raw,omitempty"`
}

// TransformService streams an LLM rewrite of free text into structured
// issue JSON and validates the result.
type TransformService struct {
	registry     *Registry
	defaultModel string
	logger       *slog.Logger
}

// NewTransformService creates a new transform service.
func NewTransformService(registry *Registry, defaultModel string, logger *slog.Logger) *TransformService {
	return &TransformService{
		registry:     registry,
		defaultModel: defaultModel,
		logger:       logger,
	}
}

// TransformRequest carries the raw text to restructure.
type TransformRequest struct {
	RawContent string `json:"rawContent"`
	Model      string `json:"modelId,omitempty"`
}

// transformShape is what the model output must parse into to count as
// valid. Field presence is not enforced, only JSON well-formedness
// against the issue structure.
type transformShape struct {
	Title    string           `json:"title"`
	Subtitle string           `json:"subtitle"`
	Tagline  string           `json:"tagline"`
	Intro    string           `json:"intro"`
	Sections []models.Section `json:"sections"`
}

// Transform streams the rewrite and finishes with a validity report.
func (s *TransformService) Transform(ctx context.Context, req *TransformRequest) (<-chan TransformChunk, error) {
	if strings.TrimSpace(req.RawContent) == "" {
		return nil, domain.Validationf("raw content is required")
	}

	model := req.Model
	if model == "" {
		model = s.defaultModel
	}
	provider, err := s.registry.ForModel(model)
	if err != nil {
		return nil, domain.Validationf("%v", err)
	}

	events, err := provider.StreamResponse(ctx, &GenerateRequest{
		Model:  model,
		System: transformIdentity + "\n\n" + transformInstructions,
		Messages: []Message{
			{Role: models.RoleUser, Content: req.RawContent},
		},
	})
	if err != nil {
		return nil, err
	}

	out := make(chan TransformChunk, 10)
	go func() {
		defer close(out)

		var raw strings.Builder
		for event := range events {
			switch {
			case event.Err != nil:
				s.logger.Warn("transform stream failed", "model", model, "error", event.Err)
				out <- TransformChunk{Done: true, Valid: false, Raw: raw.String()}
				return
			case event.Metadata != nil:
				out <- TransformChunk{Done: true, Valid: parsesAsIssue(raw.String()), Raw: raw.String()}
				return
			case event.TextDelta != "":
				raw.WriteString(event.TextDelta)
				out <- TransformChunk{Content: event.TextDelta}
			}
		}
	}()

	return out, nil
}

// parsesAsIssue reports whether text is a JSON object in the issue
// shape. Code fences around the object are tolerated.
func parsesAsIssue(text string) bool {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var shape transformShape
	if err := json.Unmarshal([]byte(text), &shape); err != nil {
		return false
	}
	return shape.Title != "" || len(shape.Sections) > 0
}
