package services

import (
	"context"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// geminiGenerator uses the Gemini API with a JSON response MIME type, which
// keeps the model on the itinerary schema far more reliably than prompt
// instructions alone.
type geminiGenerator struct {
	client *genai.Client
	model  string
}

func newGeminiGenerator() (*geminiGenerator, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &geminiGenerator{client: client, model: model}, nil
}

func (g *geminiGenerator) GenerateItinerary(ctx context.Context, req ItineraryRequest) (*GeneratedItinerary, error) {
	model := g.client.GenerativeModel(g.model)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(buildItineraryPrompt(req)))
	if err != nil {
		return nil, fmt.Errorf("gemini generation failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from AI")
	}

	var raw string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			raw += string(text)
		}
	}
	if raw == "" {
		return nil, fmt.Errorf("no text in AI response")
	}

	return decodeItinerary(raw, req)
}
