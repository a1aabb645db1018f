// ABOUTME: Validator backed by an AWS Secrets Manager JSON secret
// ABOUTME: Any retrieval or decoding failure is reported as a failed validation

package credentials

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscredentials "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// DefaultRegion is the region used when none is configured. Lambda@Edge
// replicas run in many regions but the secret lives next to the distribution.
const DefaultRegion = "us-east-1"

// DefaultFetchTimeout bounds one secret lookup.
const DefaultFetchTimeout = 5 * time.Second

// ErrEmptySecret is returned when a secret has no string value.
var ErrEmptySecret = errors.New("secret has no string value")

// SecretsManagerAPI is the subset of the Secrets Manager client used here.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSConfig holds the settings for building a Secrets Manager client.
type AWSConfig struct {
	Region    string
	Endpoint  string // optional, e.g. a localstack URL
	AccessKey string // optional static credentials
	SecretKey string
}

// NewSecretsManagerClient builds a client from the default AWS credential chain,
// or from static credentials when both keys are set.
func NewSecretsManagerClient(ctx context.Context, cfg AWSConfig) (*secretsmanager.Client, error) {
	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			awscredentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	var smOpts []func(*secretsmanager.Options)
	if cfg.Endpoint != "" {
		smOpts = append(smOpts, func(o *secretsmanager.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	return secretsmanager.NewFromConfig(awsCfg, smOpts...), nil
}

// SecretsManager validates against a reference document stored in AWS Secrets Manager.
// The secret is read on every call; there is no caching and no retry.
type SecretsManager struct {
	client   SecretsManagerAPI
	secretID string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewSecretsManager creates a validator reading secretID through client.
// A zero timeout uses DefaultFetchTimeout; a nil logger uses slog.Default().
func NewSecretsManager(client SecretsManagerAPI, secretID string, timeout time.Duration, logger *slog.Logger) *SecretsManager {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SecretsManager{
		client:   client,
		secretID: secretID,
		timeout:  timeout,
		logger:   logger.With("component", "secretsmanager"),
	}
}

// Validate implements Validator.
func (v *SecretsManager) Validate(ctx context.Context, user, password string) bool {
	ref, err := v.fetch(ctx)
	if err != nil {
		v.logger.Warn("reference credentials unavailable", "secret_id", v.secretID, "error", err)
		return false
	}
	return ref.Matches(user, password)
}

// Check implements Checker by fetching and decoding the secret.
func (v *SecretsManager) Check(ctx context.Context) error {
	_, err := v.fetch(ctx)
	return err
}

func (v *SecretsManager) fetch(ctx context.Context) (Reference, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	out, err := v.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(v.secretID),
	})
	if err != nil {
		return Reference{}, fmt.Errorf("getting secret value: %w", err)
	}
	if out == nil || out.SecretString == nil {
		return Reference{}, ErrEmptySecret
	}
	return ParseReference([]byte(*out.SecretString))
}

var (
	_ Validator = (*SecretsManager)(nil)
	_ Checker   = (*SecretsManager)(nil)
)
