// Package secrets retrieves API credentials from Secrets Manager.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"go.uber.org/zap"
)

// RedditCredentials is the JSON shape of the reddit credential secret.
type RedditCredentials struct {
	ClientID     string `json:"reddit_client_id"`
	ClientSecret string `json:"reddit_client_secret"`
	UserAgent    string `json:"reddit_user_agent"`
}

// Provider fetches and caches one named secret for the process lifetime.
type Provider struct {
	client     *secretsmanager.Client
	secretName string
	logger     *zap.Logger

	mu     sync.Mutex
	cached *RedditCredentials
}

// NewProvider creates a provider for the given secret name.
func NewProvider(client *secretsmanager.Client, secretName string, logger *zap.Logger) *Provider {
	return &Provider{
		client:     client,
		secretName: secretName,
		logger:     logger,
	}
}

// RedditCredentials returns the reddit API credentials, fetching them on
// first use.
func (p *Provider) RedditCredentials(ctx context.Context) (*RedditCredentials, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != nil {
		return p.cached, nil
	}

	out, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(p.secretName),
	})
	if err != nil {
		return nil, fmt.Errorf("get secret %q: %w", p.secretName, err)
	}

	var creds RedditCredentials
	if err := json.Unmarshal([]byte(aws.ToString(out.SecretString)), &creds); err != nil {
		return nil, fmt.Errorf("decode secret %q: %w", p.secretName, err)
	}

	p.logger.Debug("loaded reddit credentials from secrets manager",
		zap.String("secret", p.secretName),
	)
	p.cached = &creds
	return p.cached, nil
}
