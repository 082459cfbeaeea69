package vault

import (
	"context"
	"fmt"

	"github.com/hashicorp/vault/api"
	"go.uber.org/zap"

	"github.com/chargehub/chargehub-api/pkg/config"
)

// Keys read from the KV v2 secret at vault.secret_path.
const (
	KeyDatabaseURL    = "database_url"
	KeyJWTSecret      = "jwt_secret"
	KeySendGridAPIKey = "sendgrid_api_key"
)

type SecretManager struct {
	client *api.Client
	path   string
}

func NewSecretManager(address, token, path string) (*SecretManager, error) {
	cfg := api.DefaultConfig()
	cfg.Address = address

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}

	client.SetToken(token)

	return &SecretManager{client: client, path: path}, nil
}

// Secrets reads the KV v2 secret and returns its string values.
func (sm *SecretManager) Secrets(ctx context.Context) (map[string]string, error) {
	secret, err := sm.client.Logical().ReadWithContext(ctx, sm.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sm.path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("secret %s not found", sm.path)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("secret %s is not a KV v2 secret", sm.path)
	}

	values := make(map[string]string, len(data))
	for k, v := range data {
		if s, ok := v.(string); ok {
			values[k] = s
		}
	}
	return values, nil
}

// Apply overrides the configuration with any secret present in vault.
// Without vault.address the configuration is left untouched.
func Apply(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if cfg.Vault.Address == "" {
		return nil
	}

	sm, err := NewSecretManager(cfg.Vault.Address, cfg.Vault.Token, cfg.Vault.SecretPath)
	if err != nil {
		return err
	}
	secrets, err := sm.Secrets(ctx)
	if err != nil {
		return err
	}

	applied := make([]string, 0, 3)
	for key, target := range map[string]*string{
		KeyDatabaseURL:    &cfg.Database.URL,
		KeyJWTSecret:      &cfg.JWT.Secret,
		KeySendGridAPIKey: &cfg.Email.SendGridAPIKey,
	} {
		if v := secrets[key]; v != "" {
			*target = v
			applied = append(applied, key)
		}
	}

	log.Info("Secrets loaded from vault",
		zap.String("path", cfg.Vault.SecretPath),
		zap.Strings("keys", applied),
	)
	return nil
}
