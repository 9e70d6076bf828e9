// Package mainconfig holds wiring shared by the binaries under cmd/.
package mainconfig

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/wolfman30/medpet-whatsapp-bot/internal/app/bootstrap"
	appconfig "github.com/wolfman30/medpet-whatsapp-bot/internal/config"
)

// UsesAWS reports whether any configured backend talks to AWS (Bedrock or SES).
func UsesAWS(cfg *appconfig.Config) bool {
	return cfg.AssistantProvider == bootstrap.ProviderBedrock ||
		cfg.AssistantFallbackProvider == bootstrap.ProviderBedrock ||
		cfg.EmailProvider == bootstrap.EmailSES
}

// LoadAWSConfig builds the SDK config for Bedrock and SES. Static keys win
// over the default chain, and AWS_ENDPOINT_OVERRIDE points every client at
// LocalStack.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	if strings.TrimSpace(cfg.AWSRegion) == "" {
		return aws.Config{}, fmt.Errorf("mainconfig: AWS_REGION is required")
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if key, secret := strings.TrimSpace(cfg.AWSAccessKeyID), strings.TrimSpace(cfg.AWSSecretAccessKey); key != "" && secret != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("mainconfig: load aws config: %w", err)
	}
	if endpoint := strings.TrimSpace(cfg.AWSEndpointOverride); endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(endpoint)
	}
	return awsCfg, nil
}
