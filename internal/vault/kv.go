package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path"

	vaultapi "github.com/hashicorp/vault/api"
)

// DocumentField is the KV field that holds a settings document.
const DocumentField = "content"

// ErrNotFound is returned when a KV path or its document field is missing.
// It matches fs.ErrNotExist so file adapters can treat it as a missing file.
var ErrNotFound = fmt.Errorf("vault document not found: %w", fs.ErrNotExist)

// ReadKV reads the string fields stored at a KV v2 path relative to the
// client's mount. With basePath "secret" and kvPath "team/base.json" the API
// path is "secret/data/team/base.json". Non-string fields are skipped.
func (c *Client) ReadKV(ctx context.Context, kvPath string) (map[string]string, error) {
	data, err := c.readKV2(ctx, kvPath)
	if err != nil {
		return nil, err
	}

	result := make(map[string]string, len(data))
	for key, val := range data {
		if s, ok := val.(string); ok {
			result[key] = s
		}
	}

	return result, nil
}

// ReadDocument returns the DocumentField of the secret at kvPath.
func (c *Client) ReadDocument(ctx context.Context, kvPath string) (string, error) {
	data, err := c.readKV2(ctx, kvPath)
	if err != nil {
		return "", err
	}

	raw, ok := data[DocumentField]
	if !ok {
		return "", fmt.Errorf("reading document %q: no %q field: %w", kvPath, DocumentField, ErrNotFound)
	}

	doc, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("reading document %q: field %q is %T, want string", kvPath, DocumentField, raw)
	}

	return doc, nil
}

// readKV2 returns the inner data map of a KV v2 secret, or ErrNotFound.
func (c *Client) readKV2(ctx context.Context, kvPath string) (map[string]interface{}, error) {
	fullPath := buildKV2Path(c.basePath, kvPath)

	secret, err := c.inner.Logical().ReadWithContext(ctx, fullPath)
	if err != nil {
		if isPermissionDenied(err) {
			return nil, fmt.Errorf("reading KV path %q: permission denied: %w", kvPath, err)
		}
		return nil, fmt.Errorf("reading KV path %q: %w", kvPath, err)
	}

	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("reading KV path %q: %w", kvPath, ErrNotFound)
	}

	return extractKV2Data(secret.Data, kvPath)
}

// buildKV2Path inserts "data" between the mount point and the secret path.
func buildKV2Path(basePath string, kvPath string) string {
	return path.Join(basePath, "data", kvPath)
}

// extractKV2Data unwraps the nested response.Data["data"] map of a KV v2
// read. A deleted or destroyed version has a nil data map.
func extractKV2Data(responseData map[string]interface{}, kvPath string) (map[string]interface{}, error) {
	dataRaw, ok := responseData["data"]
	if !ok || dataRaw == nil {
		return nil, fmt.Errorf("reading KV path %q: %w", kvPath, ErrNotFound)
	}

	dataMap, ok := dataRaw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("reading KV path %q: unexpected data format", kvPath)
	}

	return dataMap, nil
}

// isPermissionDenied checks whether a Vault API error is a 403.
func isPermissionDenied(err error) bool {
	var respErr *vaultapi.ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode == http.StatusForbidden
	}
	return false
}
