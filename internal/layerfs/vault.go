package layerfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

const (
	defaultVaultRetries  = 3
	defaultVaultInterval = 200 * time.Millisecond
)

// DocumentReader reads a text document stored at a KV path. A missing
// document is reported with an error wrapping fs.ErrNotExist.
type DocumentReader interface {
	ReadDocument(ctx context.Context, kvPath string) (string, error)
}

// VaultOption configures a Vault adapter.
type VaultOption func(*Vault)

// WithCache shares a document cache between reads. Nil values are ignored.
func WithCache(c *Cache) VaultOption {
	return func(v *Vault) {
		if c != nil {
			v.cache = c
		}
	}
}

// WithRetries sets how many times a failed read is retried.
func WithRetries(n uint64) VaultOption {
	return func(v *Vault) {
		v.retries = n
	}
}

// WithRetryInterval sets the first backoff interval between retries. Values
// less than or equal to zero are ignored.
func WithRetryInterval(d time.Duration) VaultOption {
	return func(v *Vault) {
		if d > 0 {
			v.interval = d
		}
	}
}

// Vault serves read-only documents from Vault. A file path such as
// "/vault/team/base.json" under mount "/vault" maps to the KV path
// "team/base.json".
type Vault struct {
	reader   DocumentReader
	mount    string
	cache    *Cache
	retries  uint64
	interval time.Duration
}

// NewVault creates a Vault adapter serving paths under mount.
func NewVault(reader DocumentReader, mount string, opts ...VaultOption) *Vault {
	v := &Vault{
		reader:   reader,
		mount:    path.Clean("/" + mount),
		cache:    NewCache(0),
		retries:  defaultVaultRetries,
		interval: defaultVaultInterval,
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

func (v *Vault) ReadFile(ctx context.Context, p string) ([]byte, error) {
	kvPath, ok := v.kvPath(p)
	if !ok {
		return nil, fmt.Errorf("reading %s: outside %s: %w", p, v.mount, fs.ErrNotExist)
	}

	if data, ok := v.cache.Get(kvPath); ok {
		return data, nil
	}

	var doc string
	op := func() error {
		var err error
		doc, err = v.reader.ReadDocument(ctx, kvPath)
		if errors.Is(err, fs.ErrNotExist) {
			return backoff.Permanent(err)
		}
		if err != nil {
			log.Debug().Err(err).Str("path", kvPath).Msg("vault read failed, retrying")
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = v.interval

	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, v.retries), ctx)); err != nil {
		return nil, fmt.Errorf("reading %s from vault: %w", p, err)
	}

	data := []byte(doc)
	v.cache.Set(kvPath, data)

	return data, nil
}

func (v *Vault) Exists(ctx context.Context, p string) bool {
	_, err := v.ReadFile(ctx, p)
	return err == nil
}

func (v *Vault) Resolve(baseDir, p string) string {
	if !path.IsAbs(p) {
		p = path.Join(baseDir, p)
	}
	return path.Clean(p)
}

func (v *Vault) Dir(p string) string {
	return path.Dir(p)
}

func (v *Vault) Base(p string) string {
	return path.Base(p)
}

func (v *Vault) IsAbs(p string) bool {
	return path.IsAbs(p)
}

// kvPath strips the mount prefix. The second result is false for paths
// outside the mount.
func (v *Vault) kvPath(p string) (string, bool) {
	p = path.Clean(p)
	rest, ok := strings.CutPrefix(p, v.mount+"/")
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}
