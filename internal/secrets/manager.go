package secrets

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/el-feo/content-processing-sub001/config"
	"github.com/el-feo/content-processing-sub001/observability"
)

// ManagerAPI is the slice of the Secrets Manager client the cache uses.
type ManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// ManagerCache fetches the signing secret from AWS Secrets Manager once
// and holds it for the process lifetime, so warm invocations skip the
// round trip. Invalidate drops the cached value (secret rotation).
type ManagerCache struct {
	client     ManagerAPI
	secretName string
	logger     observability.Logger

	mu    sync.RWMutex
	value string
}

// NewManagerCache creates a caching source over a Secrets Manager client.
func NewManagerCache(client ManagerAPI, secretName string, logger observability.Logger) *ManagerCache {
	return &ManagerCache{
		client:     client,
		secretName: secretName,
		logger:     logger,
	}
}

// NewManagerClient builds a Secrets Manager client on the ambient
// credential chain, honoring the endpoint override for local doubles.
func NewManagerClient(ctx context.Context, cfg *config.AWSConfig) (*secretsmanager.Client, error) {
	optFns := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS config: %w", err)
	}

	client := secretsmanager.NewFromConfig(awsCfg, func(o *secretsmanager.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return client, nil
}

// Get returns the signing secret, fetching it on the first call.
func (m *ManagerCache) Get(ctx context.Context) (string, error) {
	m.mu.RLock()
	if m.value != "" {
		value := m.value
		m.mu.RUnlock()
		return value, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring the write lock
	if m.value != "" {
		return m.value, nil
	}

	output, err := m.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(m.secretName),
	})
	if err != nil {
		m.logger.Error(ctx, "failed to fetch signing secret", err, observability.Fields{
			"secret_name": m.secretName,
		})
		return "", fmt.Errorf("fetching signing secret %q: %w", m.secretName, err)
	}
	if output.SecretString == nil || *output.SecretString == "" {
		return "", fmt.Errorf("signing secret %q is empty", m.secretName)
	}

	m.value = *output.SecretString
	m.logger.Info(ctx, "signing secret loaded", observability.Fields{
		"secret_name": m.secretName,
	})

	return m.value, nil
}

// Invalidate drops the cached secret so the next Get refetches it.
func (m *ManagerCache) Invalidate() {
	m.mu.Lock()
	m.value = ""
	m.mu.Unlock()
}
