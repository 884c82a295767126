package services

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/hareesh182003/Interview-Agent/internal/config"
)

// ModelInvoker sends a provider-specific request body to a model and returns
// the raw response body.
type ModelInvoker interface {
	Invoke(ctx context.Context, modelID string, body []byte) ([]byte, error)
}

// LoadAWSConfig uses static credentials when both keys are configured and
// the default credential chain otherwise.
func LoadAWSConfig(ctx context.Context, cfg config.AWSConfig) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}
	return awsCfg, nil
}

type bedrockInvoker struct {
	client *bedrockruntime.Client
}

func NewBedrockInvoker(awsCfg aws.Config) ModelInvoker {
	return &bedrockInvoker{client: bedrockruntime.NewFromConfig(awsCfg)}
}

func (b *bedrockInvoker) Invoke(ctx context.Context, modelID string, body []byte) ([]byte, error) {
	out, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock invoke %s: %w", modelID, err)
	}
	return out.Body, nil
}
