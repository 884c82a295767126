package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"google.golang.org/genai"
)

const maxEmbeddingInput = 40000

// GeminiService serves gemini-family analysis requests and produces the
// embeddings for the resume index.
type GeminiService interface {
	ModelInvoker
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type geminiService struct {
	client     *genai.Client
	embedModel string
}

func NewGeminiService(ctx context.Context, apiKey, embedModel string) (GeminiService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:     client,
		embedModel: embedModel,
	}, nil
}

// GenerateEmbedding implements GeminiService.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	text = truncateUTF8(text, maxEmbeddingInput)

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// Invoke reads the prompt and generation settings from a gemini-family
// request body and returns the response encoded as JSON.
func (g *geminiService) Invoke(ctx context.Context, modelID string, body []byte) ([]byte, error) {
	prompt, cfg := geminiRequestFromBody(body)
	if prompt == "" {
		return nil, fmt.Errorf("gemini request for %s has no prompt", modelID)
	}

	resp, err := g.client.Models.GenerateContent(ctx, modelID, genai.Text(prompt), cfg)
	if err != nil {
		log.Printf("❌ Gemini API error: %v\n", err)
		return nil, fmt.Errorf("failed to generate text: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("no response generated (nil response)")
	}

	out, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to encode gemini response: %w", err)
	}
	return out, nil
}

func geminiRequestFromBody(body []byte) (string, *genai.GenerateContentConfig) {
	var parts []string
	for _, part := range gjson.GetBytes(body, "contents.#.parts.#.text|@flatten").Array() {
		parts = append(parts, part.String())
	}

	cfg := &genai.GenerateContentConfig{}
	if t := gjson.GetBytes(body, "generationConfig.temperature"); t.Exists() {
		temperature := float32(t.Float())
		cfg.Temperature = &temperature
	}
	if m := gjson.GetBytes(body, "generationConfig.maxOutputTokens"); m.Exists() {
		cfg.MaxOutputTokens = int32(m.Int())
	}

	return strings.Join(parts, "\n"), cfg
}

// truncateUTF8 cuts text to at most max bytes without splitting a rune.
func truncateUTF8(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
