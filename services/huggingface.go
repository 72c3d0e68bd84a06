package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// huggingFaceGenerator talks to the HuggingFace inference API and asks an
// instruct model to emit the itinerary schema as JSON.
type huggingFaceGenerator struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

func newHuggingFaceGenerator() *huggingFaceGenerator {
	model := os.Getenv("HF_MODEL")
	if model == "" {
		model = "mistralai/Mistral-7B-Instruct-v0.3"
	}
	return &huggingFaceGenerator{
		apiKey: os.Getenv("HUGGINGFACE_API_KEY"),
		model:  model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfResponse []struct {
	GeneratedText string `json:"generated_text"`
}

func (g *huggingFaceGenerator) GenerateItinerary(ctx context.Context, req ItineraryRequest) (*GeneratedItinerary, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("huggingface API key not configured")
	}

	reqBody := hfRequest{
		Inputs: "[INST] " + buildItineraryPrompt(req) + " [/INST]",
		Parameters: hfParameters{
			MaxNewTokens:   1200,
			Temperature:    0.6,
			ReturnFullText: false,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("https://api-inference.huggingface.co/models/%s", g.model)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusServiceUnavailable {
		return nil, fmt.Errorf("AI model is loading, please retry in a few seconds")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("huggingface API error (%d): %s", resp.StatusCode, string(body))
	}

	var hfResp hfResponse
	if err := json.Unmarshal(body, &hfResp); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}
	if len(hfResp) == 0 || hfResp[0].GeneratedText == "" {
		return nil, fmt.Errorf("empty response from AI")
	}

	return decodeItinerary(hfResp[0].GeneratedText, req)
}
