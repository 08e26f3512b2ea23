package crypto

import (
	"context"
	"fmt"

	vault "github.com/hashicorp/vault/api"

	"github.com/prismstudio/certverify/internal/config"
	"github.com/prismstudio/certverify/pkg/errors"
	"github.com/prismstudio/certverify/pkg/logger"
)

const (
	defaultMountPath = "secret"
	defaultSecretKey = "hmac_key"
)

// VaultKeyLoader reads the verification key from a Vault KV v2 secret.
type VaultKeyLoader struct {
	client    *vault.Client
	mountPath string
	path      string
	field     string
	logger    logger.Logger
}

// NewVaultKeyLoader creates a loader for the configured secret.
func NewVaultKeyLoader(cfg *config.VaultConfig, log logger.Logger) (*VaultKeyLoader, error) {
	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	return NewVaultKeyLoaderFromClient(client, cfg, log), nil
}

// NewVaultKeyLoaderFromClient creates a loader around an existing client.
func NewVaultKeyLoaderFromClient(client *vault.Client, cfg *config.VaultConfig, log logger.Logger) *VaultKeyLoader {
	mount := cfg.MountPath
	if mount == "" {
		mount = defaultMountPath
	}
	field := cfg.SecretKey
	if field == "" {
		field = defaultSecretKey
	}
	return &VaultKeyLoader{
		client:    client,
		mountPath: mount,
		path:      cfg.SecretPath,
		field:     field,
		logger:    log.WithComponent("vault_key_loader"),
	}
}

// Load fetches the key. A missing secret or field is an error.
func (l *VaultKeyLoader) Load(ctx context.Context) ([]byte, error) {
	secret, err := l.client.KVv2(l.mountPath).Get(ctx, l.path)
	if err != nil {
		l.logger.Error(ctx, "Failed to read verification key from vault", err,
			logger.String("mount", l.mountPath),
			logger.String("path", l.path),
		)
		return nil, errors.ErrInvalidConfig("verification key could not be read from vault").WithCause(err)
	}

	raw, ok := secret.Data[l.field].(string)
	if !ok || raw == "" {
		return nil, errors.ErrInvalidConfig(fmt.Sprintf("vault secret %s has no %q field", l.path, l.field))
	}

	version := 0
	if secret.VersionMetadata != nil {
		version = secret.VersionMetadata.Version
	}
	l.logger.Info(ctx, "Verification key loaded from vault",
		logger.String("path", l.path),
		logger.Int("version", version),
	)
	return []byte(raw), nil
}

// LoadVerificationKey returns the key from vault when configured, otherwise from verification.hmac_key.
func LoadVerificationKey(ctx context.Context, cfg *config.Config, log logger.Logger) ([]byte, error) {
	if cfg.Vault.Enabled() {
		loader, err := NewVaultKeyLoader(&cfg.Vault, log)
		if err != nil {
			return nil, err
		}
		return loader.Load(ctx)
	}
	if cfg.Verification.HMACKey == "" {
		return nil, errors.ErrInvalidConfig("verification.hmac_key is empty")
	}
	return []byte(cfg.Verification.HMACKey), nil
}

//Personal.AI order the ending
