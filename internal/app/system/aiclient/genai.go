package aiclient

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GenAIClient calls Google's Gemini API through the genai SDK.
type GenAIClient struct {
	client *genai.Client
	model  string
}

// NewGenAI creates a Gemini-backed client.
func NewGenAI(ctx context.Context, apiKey, model string) (*GenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAIClient{client: client, model: model}, nil
}

// Invoke asks the model for a JSON response.
func (c *GenAIClient) Invoke(ctx context.Context, req Request) (Response, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if req.SystemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if req.ResponseJSONSchema != nil {
		cfg.ResponseJsonSchema = req.ResponseJSONSchema
	}

	contents := []*genai.Content{
		genai.NewContentFromText(req.Prompt, genai.RoleUser),
	}
	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return Response{}, fmt.Errorf("GenAI generate failed: %w", err)
	}

	data, err := decodeJSON(result.Text())
	if err != nil {
		return Response{}, err
	}
	return Response{Success: true, Data: data}, nil
}
