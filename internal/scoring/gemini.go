package scoring

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// GeminiOracle wraps the Google GenAI client and asks for JSON output
// matching the scoring result shape.
type GeminiOracle struct {
	client    *genai.Client
	modelName string
	config    *genai.GenerateContentConfig
}

func NewGeminiOracle(ctx context.Context, apiKey, model string) (*GeminiOracle, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &GeminiOracle{
		client:    client,
		modelName: model,
		config:    generationConfig(),
	}, nil
}

func generationConfig() *genai.GenerateContentConfig {
	zero, hundred := 0.0, 100.0
	stringList := &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
	temperature := float32(0.2)

	return &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"match_score":         {Type: genai.TypeInteger, Minimum: &zero, Maximum: &hundred},
				"strengths":           stringList,
				"weaknesses":          stringList,
				"suggested_questions": stringList,
			},
			Required: []string{"match_score", "strengths", "weaknesses", "suggested_questions"},
		},
	}
}

// GenerateContent sends the prompt to Gemini and returns the textual response.
func (g *GeminiOracle) GenerateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), g.config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || strings.TrimSpace(part.Text) == "" {
				continue
			}
			builder.WriteString(part.Text)
		}
		// first candidate with content is the answer
		if builder.Len() > 0 {
			break
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}
	return output, nil
}
