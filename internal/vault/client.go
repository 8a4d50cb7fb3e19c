package vault

import (
	"context"
	"fmt"
	"time"

	vaultapi "github.com/hashicorp/vault/api"
)

// Client wraps the HashiCorp Vault API client with the KV v2 mount that
// holds shared settings documents.
type Client struct {
	inner    *vaultapi.Client
	basePath string
}

// ClientOption adjusts the Vault API configuration before the client is
// built.
type ClientOption func(*vaultapi.Config)

// WithTimeout sets the HTTP timeout for every request. Zero keeps the Vault
// default.
func WithTimeout(d time.Duration) ClientOption {
	return func(cfg *vaultapi.Config) {
		if d > 0 {
			cfg.Timeout = d
		}
	}
}

// WithMaxRetries sets how many times the API client retries 5xx responses.
func WithMaxRetries(n int) ClientOption {
	return func(cfg *vaultapi.Config) {
		cfg.MaxRetries = n
	}
}

// NewClient creates a Vault API client for address. The basePath is the KV
// v2 mount point (e.g. "secret").
func NewClient(address string, basePath string, opts ...ClientOption) (*Client, error) {
	if address == "" {
		return nil, fmt.Errorf("vault address is required")
	}

	cfg := vaultapi.DefaultConfig()
	cfg.Address = address

	for _, opt := range opts {
		opt(cfg)
	}

	inner, err := vaultapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating vault client: %w", err)
	}

	return &Client{
		inner:    inner,
		basePath: basePath,
	}, nil
}

// NewClientWithToken creates a Vault API client that authenticates with token.
func NewClientWithToken(address string, basePath string, token string, opts ...ClientOption) (*Client, error) {
	client, err := NewClient(address, basePath, opts...)
	if err != nil {
		return nil, err
	}

	client.inner.SetToken(token)

	return client, nil
}

// Address returns the Vault server address.
func (c *Client) Address() string {
	return c.inner.Address()
}

// Token returns the current authentication token.
func (c *Client) Token() string {
	return c.inner.Token()
}

// SetToken sets the authentication token.
func (c *Client) SetToken(token string) {
	c.inner.SetToken(token)
}

// TokenTTL looks up the current token and returns its remaining TTL.
func (c *Client) TokenTTL(ctx context.Context) (time.Duration, error) {
	secret, err := c.inner.Auth().Token().LookupSelfWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("looking up token TTL: %w", err)
	}

	if secret == nil || secret.Data == nil {
		return 0, fmt.Errorf("looking up token TTL: empty response")
	}

	ttl, err := secret.TokenTTL()
	if err != nil {
		return 0, fmt.Errorf("parsing token TTL: %w", err)
	}

	return ttl, nil
}

// IsAuthenticated reports whether the client holds a token that has not
// expired. Lookup failures count as unauthenticated.
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	if c.inner.Token() == "" {
		return false
	}

	ttl, err := c.TokenTTL(ctx)
	if err != nil {
		return false
	}

	return ttl > 0
}
