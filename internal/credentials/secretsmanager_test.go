// ABOUTME: Tests for the Secrets Manager backed validator using a fake client
// ABOUTME: Verifies that every retrieval failure degrades to a failed validation

package credentials

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecretsManager struct {
	secret   *string
	err      error
	calls    int
	lastID   string
	deadline bool
}

func (f *fakeSecretsManager) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.calls++
	f.lastID = aws.ToString(params.SecretId)
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: f.secret}, nil
}

func TestSecretsManager_Validate(t *testing.T) {
	client := &fakeSecretsManager{secret: aws.String(`{"user":"test_user","password":"test_password"}`)}
	validator := NewSecretsManager(client, "cfauth/basic", time.Second, nil)
	ctx := context.Background()

	assert.True(t, validator.Validate(ctx, "test_user", "test_password"))
	assert.False(t, validator.Validate(ctx, "test_user", "bad password"))
	assert.False(t, validator.Validate(ctx, "someone", "test_password"))

	assert.Equal(t, 3, client.calls, "secret should be fetched once per validation")
	assert.Equal(t, "cfauth/basic", client.lastID)
	assert.True(t, client.deadline, "fetch should carry a deadline")
}

func TestSecretsManager_RetrievalFailures(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeSecretsManager
	}{
		{name: "not found", client: &fakeSecretsManager{err: &types.ResourceNotFoundException{Message: aws.String("no such secret")}}},
		{name: "access denied", client: &fakeSecretsManager{err: errors.New("AccessDeniedException: not authorized")}},
		{name: "transport failure", client: &fakeSecretsManager{err: context.DeadlineExceeded}},
		{name: "binary secret", client: &fakeSecretsManager{secret: nil}},
		{name: "invalid json", client: &fakeSecretsManager{secret: aws.String("user:password")}},
		{name: "missing password field", client: &fakeSecretsManager{secret: aws.String(`{"user":"test_user"}`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := NewSecretsManager(tt.client, "cfauth/basic", 0, nil)

			assert.False(t, validator.Validate(context.Background(), "test_user", "test_password"))
			assert.Error(t, validator.Check(context.Background()))
		})
	}
}

func TestSecretsManager_CheckOK(t *testing.T) {
	client := &fakeSecretsManager{secret: aws.String(`{"user":"u","password":"p"}`)}
	validator := NewSecretsManager(client, "id", 0, nil)

	require.NoError(t, validator.Check(context.Background()))
}

func TestSecretsManager_EmptySecret(t *testing.T) {
	validator := NewSecretsManager(&fakeSecretsManager{}, "id", 0, nil)

	assert.ErrorIs(t, validator.Check(context.Background()), ErrEmptySecret)
}
