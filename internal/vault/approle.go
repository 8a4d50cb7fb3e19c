package vault

import (
	"context"
	"fmt"
	"path"
)

const defaultAppRoleMount = "approle"

// AppRoleAuth logs in with AppRole credentials and sets the resulting token
// on the client. mount defaults to "approle" when empty.
func AppRoleAuth(ctx context.Context, client *Client, mount, roleID, secretID string) error {
	if roleID == "" {
		return fmt.Errorf("approle auth: role_id is required")
	}

	if secretID == "" {
		return fmt.Errorf("approle auth: secret_id is required")
	}

	if mount == "" {
		mount = defaultAppRoleMount
	}

	data := map[string]interface{}{
		"role_id":   roleID,
		"secret_id": secretID,
	}

	secret, err := client.inner.Logical().WriteWithContext(ctx, path.Join("auth", mount, "login"), data)
	if err != nil {
		return fmt.Errorf("approle auth: %w", err)
	}

	if secret == nil || secret.Auth == nil {
		return fmt.Errorf("approle auth: empty auth response")
	}

	client.SetToken(secret.Auth.ClientToken)

	return nil
}
