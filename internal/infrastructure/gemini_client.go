package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.7)
	return &GeminiClient{client: client, model: model}, nil
}

// GenerateResponse sends the prompt as is. The prompt already carries the
// conversation context, so convo is not sent a second time.
func (g *GeminiClient) GenerateResponse(ctx context.Context, prompt string, _ map[string]interface{}) (string, error) {
	resp, err := g.model.GenerateContent(ctx, promptParts(prompt)...)
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return sb.String(), nil
}

func promptParts(prompt string) []genai.Part {
	return []genai.Part{genai.Text(prompt)}
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}
