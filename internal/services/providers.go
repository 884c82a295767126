package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Transports a provider family can be served by.
const (
	TransportBedrock = "bedrock"
	TransportGemini  = "gemini"
)

const anthropicBedrockVersion = "bedrock-2023-05-31"

type GenerationOptions struct {
	MaxTokens   int
	Temperature float64
}

// ProviderFamily knows the request and response shapes of one model family.
type ProviderFamily interface {
	Name() string
	Matches(modelID string) bool
	Transport() string
	BuildRequest(prompt string, opts GenerationOptions) ([]byte, error)
	ParseResponse(body []byte) (string, error)
}

type ProviderRegistry struct {
	families []ProviderFamily
	fallback ProviderFamily
}

// NewProviderRegistry checks families in order; the first match wins and
// unmatched identifiers use the generic family.
func NewProviderRegistry(families ...ProviderFamily) *ProviderRegistry {
	return &ProviderRegistry{
		families: families,
		fallback: genericFamily{},
	}
}

func DefaultProviderRegistry() *ProviderRegistry {
	return NewProviderRegistry(
		anthropicFamily{},
		llamaFamily{},
		titanFamily{},
		novaFamily{},
		geminiFamily{},
		mistralFamily{},
		cohereFamily{},
	)
}

func (r *ProviderRegistry) Resolve(modelID string) ProviderFamily {
	id := strings.ToLower(modelID)
	for _, family := range r.families {
		if family.Matches(id) {
			return family
		}
	}
	return r.fallback
}

type anthropicFamily struct{}

func (anthropicFamily) Name() string                { return "anthropic" }
func (anthropicFamily) Matches(modelID string) bool { return strings.Contains(modelID, "anthropic") }
func (anthropicFamily) Transport() string           { return TransportBedrock }

func (anthropicFamily) BuildRequest(prompt string, opts GenerationOptions) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"anthropic_version": anthropicBedrockVersion,
		"max_tokens":        opts.MaxTokens,
		"temperature":       opts.Temperature,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	})
}

func (anthropicFamily) ParseResponse(body []byte) (string, error) {
	return parseWith(body, "content.#.text")
}

type llamaFamily struct{}

func (llamaFamily) Name() string                { return "meta-llama" }
func (llamaFamily) Matches(modelID string) bool { return strings.Contains(modelID, "meta.llama") }
func (llamaFamily) Transport() string           { return TransportBedrock }

func (llamaFamily) BuildRequest(prompt string, opts GenerationOptions) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"prompt":      prompt,
		"max_gen_len": opts.MaxTokens,
		"temperature": opts.Temperature,
	})
}

func (llamaFamily) ParseResponse(body []byte) (string, error) {
	return parseWith(body, "generation")
}

type titanFamily struct{}

func (titanFamily) Name() string                { return "titan" }
func (titanFamily) Matches(modelID string) bool { return strings.Contains(modelID, "amazon.titan-text") }
func (titanFamily) Transport() string           { return TransportBedrock }

func (titanFamily) BuildRequest(prompt string, opts GenerationOptions) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"inputText": prompt,
		"textGenerationConfig": map[string]interface{}{
			"maxTokenCount": opts.MaxTokens,
			"temperature":   opts.Temperature,
		},
	})
}

func (titanFamily) ParseResponse(body []byte) (string, error) {
	return parseWith(body, "results.0.outputText")
}

// novaFamily is recognised only to refuse it: Nova models need provisioned
// throughput and cannot be invoked on demand.
type novaFamily struct{}

func (novaFamily) Name() string                { return "nova" }
func (novaFamily) Matches(modelID string) bool { return strings.Contains(modelID, "amazon.nova") }
func (novaFamily) Transport() string           { return TransportBedrock }

func (novaFamily) BuildRequest(prompt string, opts GenerationOptions) ([]byte, error) {
	return nil, fmt.Errorf("%w: Amazon Nova models cannot run on-demand and require Provisioned Throughput (PTU)", ErrUnsupportedModel)
}

func (novaFamily) ParseResponse(body []byte) (string, error) {
	return "", fmt.Errorf("%w: Amazon Nova", ErrUnsupportedModel)
}

type geminiFamily struct{}

func (geminiFamily) Name() string                { return "gemini" }
func (geminiFamily) Matches(modelID string) bool { return strings.Contains(modelID, "gemini") }
func (geminiFamily) Transport() string           { return TransportGemini }

func (geminiFamily) BuildRequest(prompt string, opts GenerationOptions) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"contents": []map[string]interface{}{
			{"role": "user", "parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]interface{}{
			"temperature":     opts.Temperature,
			"maxOutputTokens": opts.MaxTokens,
		},
	})
}

func (geminiFamily) ParseResponse(body []byte) (string, error) {
	return parseWith(body, "candidates.0.content.parts.#.text")
}

type mistralFamily struct{}

func (mistralFamily) Name() string                { return "mistral" }
func (mistralFamily) Matches(modelID string) bool { return strings.Contains(modelID, "mistral") }
func (mistralFamily) Transport() string           { return TransportBedrock }

func (mistralFamily) BuildRequest(prompt string, opts GenerationOptions) ([]byte, error) {
	return genericFamily{}.BuildRequest(prompt, opts)
}

func (mistralFamily) ParseResponse(body []byte) (string, error) {
	return parseWith(body, "outputs.0.text")
}

type cohereFamily struct{}

func (cohereFamily) Name() string                { return "cohere" }
func (cohereFamily) Matches(modelID string) bool { return strings.Contains(modelID, "cohere") }
func (cohereFamily) Transport() string           { return TransportBedrock }

func (cohereFamily) BuildRequest(prompt string, opts GenerationOptions) ([]byte, error) {
	return genericFamily{}.BuildRequest(prompt, opts)
}

func (cohereFamily) ParseResponse(body []byte) (string, error) {
	return parseWith(body, "generations.0.text", "text")
}

type genericFamily struct{}

func (genericFamily) Name() string                { return "generic" }
func (genericFamily) Matches(modelID string) bool { return true }
func (genericFamily) Transport() string           { return TransportBedrock }

func (genericFamily) BuildRequest(prompt string, opts GenerationOptions) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"prompt":      prompt,
		"max_tokens":  opts.MaxTokens,
		"temperature": opts.Temperature,
	})
}

func (genericFamily) ParseResponse(body []byte) (string, error) {
	return parseWith(body)
}

// sharedResponsePaths covers the response shapes seen across families.
var sharedResponsePaths = []string{
	"content.#.text",
	"generation",
	"results.0.outputText",
	"output_text",
	"outputs.0.text",
	"generations.0.text",
	"candidates.0.content.parts.#.text",
	"completion",
}

// parseWith tries the family's own paths, then the shared ones, and finally
// returns the whole body as text.
func parseWith(body []byte, paths ...string) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("model returned invalid JSON: %.200s", string(body))
	}

	for _, path := range append(paths, sharedResponsePaths...) {
		if text, ok := textAt(body, path); ok {
			return text, nil
		}
	}

	return strings.TrimSpace(string(body)), nil
}

func textAt(body []byte, path string) (string, bool) {
	result := gjson.GetBytes(body, path)
	if !result.Exists() {
		return "", false
	}

	if result.IsArray() {
		var parts []string
		for _, item := range result.Array() {
			if item.Type == gjson.String {
				parts = append(parts, item.String())
			}
		}
		if len(parts) == 0 {
			return "", false
		}
		return strings.Join(parts, ""), true
	}

	if result.Type != gjson.String {
		return "", false
	}
	return result.String(), true
}
