package vault

import (
	"context"
	"errors"
	"fmt"

	vault "github.com/hashicorp/vault/api"
	"github.com/hashicorp/vault/api/auth/approle"
	"github.com/spf13/viper"
)

// Secrets is one secret's key/value payload.
type Secrets map[string]any

// String returns the secret value at key as a string, or an empty string when
// absent.
func (s Secrets) String(key string) string {
	v, ok := s[key]
	if !ok {
		return ""
	}
	return fmt.Sprint(v)
}

type Client interface {
	// GetSecrets returns a map of secrets for the given path.
	GetSecrets(path string) (Secrets, error)
}

type client struct {
	v *vault.Client
}

// NewClient connects to vault at the given address and authenticates with the
// AppRole method. The role id comes from VAULT_APPROLE_ID and the secret id
// from VAULT_APPROLE_SECRET_ID.
func NewClient(vaultAddr string) (Client, error) {
	config := vault.DefaultConfig()
	config.Address = vaultAddr

	c, err := vault.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize Vault client: %w", err)
	}

	clientImpl := &client{
		v: c,
	}

	if err := clientImpl.login(); err != nil {
		return nil, fmt.Errorf("unable to login to Vault: %w", err)
	}

	return clientImpl, nil
}

func (c *client) login() error {
	vip := viper.New()
	if err := vip.BindEnv("vault.approle_id", "VAULT_APPROLE_ID"); err != nil {
		return fmt.Errorf("unable to bind environment variable: %w", err)
	}

	approleSecretID := &approle.SecretID{
		FromEnv: "VAULT_APPROLE_SECRET_ID",
	}

	// Authenticate with Vault with the AppRole auth method
	appRoleAuth, err := approle.NewAppRoleAuth(
		vip.GetString("vault.approle_id"),
		approleSecretID,
	)
	if err != nil {
		return fmt.Errorf("unable to create AppRole auth: %w", err)
	}

	authInfo, err := c.v.Auth().Login(context.Background(), appRoleAuth)
	if err != nil {
		return fmt.Errorf("unable to authenticate with Vault: %w", err)
	}
	if authInfo == nil {
		return errors.New("authentication with Vault failed")
	}

	return nil
}

func (c *client) GetSecrets(path string) (Secrets, error) {
	secret, err := c.v.Logical().Read(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read secrets: %w", err)
	}
	if secret == nil {
		return nil, fmt.Errorf("no secret found at %s", path)
	}

	return secret.Data, nil
}
