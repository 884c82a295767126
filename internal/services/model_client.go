package services

import (
	"context"
	"fmt"
	"log"
	"time"
)

type ModelClient interface {
	Generate(ctx context.Context, modelID, prompt string) (string, error)
}

type modelClient struct {
	registry   *ProviderRegistry
	transports map[string]ModelInvoker
	opts       GenerationOptions
	timeout    time.Duration
}

// NewModelClient routes each family to its transport. A nil transport
// means the family is not configured in this deployment.
func NewModelClient(registry *ProviderRegistry, transports map[string]ModelInvoker, opts GenerationOptions, timeout time.Duration) ModelClient {
	return &modelClient{
		registry:   registry,
		transports: transports,
		opts:       opts,
		timeout:    timeout,
	}
}

func (c *modelClient) Generate(ctx context.Context, modelID, prompt string) (string, error) {
	family := c.registry.Resolve(modelID)

	body, err := family.BuildRequest(prompt, c.opts)
	if err != nil {
		return "", err
	}

	invoker := c.transports[family.Transport()]
	if invoker == nil {
		return "", fmt.Errorf("%w: no %s transport configured for %s", ErrUnsupportedModel, family.Transport(), modelID)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	log.Printf("🤖 Invoking %s (%s family)\n", modelID, family.Name())
	start := time.Now()

	respBody, err := invoker.Invoke(ctx, modelID, body)
	if err != nil {
		return "", err
	}

	text, err := family.ParseResponse(respBody)
	if err != nil {
		return "", err
	}

	log.Printf("🤖 %s responded in %s\n", modelID, time.Since(start).Round(time.Millisecond))
	return text, nil
}
