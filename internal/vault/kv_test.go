package vault

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBuildKV2Path(t *testing.T) {
	tests := []struct {
		name     string
		basePath string
		kvPath   string
		want     string
	}{
		{
			name:     "document path",
			basePath: "secret",
			kvPath:   "team/base.json",
			want:     "secret/data/team/base.json",
		},
		{
			name:     "custom mount",
			basePath: "kv",
			kvPath:   "settings/editor.json",
			want:     "kv/data/settings/editor.json",
		},
		{
			name:     "empty mount",
			basePath: "",
			kvPath:   "base.json",
			want:     "data/base.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildKV2Path(tt.basePath, tt.kvPath)
			if got != tt.want {
				t.Errorf("buildKV2Path(%q, %q) = %q, want %q", tt.basePath, tt.kvPath, got, tt.want)
			}
		})
	}
}

func TestExtractKV2Data(t *testing.T) {
	tests := []struct {
		name         string
		responseData map[string]interface{}
		wantLen      int
		wantNotFound bool
		wantErr      bool
	}{
		{
			name: "valid data",
			responseData: map[string]interface{}{
				"data":     map[string]interface{}{"content": "{}", "owner": "platform"},
				"metadata": map[string]interface{}{"version": 1},
			},
			wantLen: 2,
		},
		{
			name:         "missing data key",
			responseData: map[string]interface{}{},
			wantNotFound: true,
		},
		{
			name:         "deleted version",
			responseData: map[string]interface{}{"data": nil},
			wantNotFound: true,
		},
		{
			name:         "invalid data type",
			responseData: map[string]interface{}{"data": "not-a-map"},
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractKV2Data(tt.responseData, "test/path")

			if tt.wantNotFound {
				if !errors.Is(err, fs.ErrNotExist) {
					t.Fatalf("extractKV2Data() error = %v, want not found", err)
				}
				return
			}

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(got) != tt.wantLen {
				t.Errorf("got %d keys, want %d", len(got), tt.wantLen)
			}
		})
	}
}

// newKVServer serves KV v2 reads for the given paths ("secret/data/...").
func newKVServer(t *testing.T, secrets map[string]map[string]interface{}) *Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := secrets[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[]}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{"data": data},
		})
	}))
	t.Cleanup(srv.Close)

	client, err := NewClientWithToken(srv.URL, "secret", "test-token", WithMaxRetries(0))
	if err != nil {
		t.Fatalf("NewClientWithToken() error = %v", err)
	}

	return client
}

func TestReadDocument(t *testing.T) {
	client := newKVServer(t, map[string]map[string]interface{}{
		"/v1/secret/data/team/base.json": {"content": `{"settings": {"a": 1}}`, "owner": "platform"},
		"/v1/secret/data/team/empty":     {"owner": "platform"},
		"/v1/secret/data/team/wrongtype": {"content": 42},
	})
	ctx := context.Background()

	doc, err := client.ReadDocument(ctx, "team/base.json")
	if err != nil {
		t.Fatalf("ReadDocument() error = %v", err)
	}
	if doc != `{"settings": {"a": 1}}` {
		t.Errorf("ReadDocument() = %q", doc)
	}

	if _, err := client.ReadDocument(ctx, "team/missing.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ReadDocument(missing) error = %v, want ErrNotFound", err)
	}

	if _, err := client.ReadDocument(ctx, "team/empty"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadDocument(no content) error = %v, want fs.ErrNotExist", err)
	}

	_, err = client.ReadDocument(ctx, "team/wrongtype")
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadDocument(wrong type) error = %v, want type error", err)
	}
}

func TestReadKV(t *testing.T) {
	client := newKVServer(t, map[string]map[string]interface{}{
		"/v1/secret/data/team/meta": {"owner": "platform", "version": 3},
	})

	got, err := client.ReadKV(context.Background(), "team/meta")
	if err != nil {
		t.Fatalf("ReadKV() error = %v", err)
	}

	if len(got) != 1 || got["owner"] != "platform" {
		t.Errorf("ReadKV() = %v, want only owner", got)
	}
}

func TestReadDocument_PermissionDenied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"errors":["permission denied"]}`))
	}))
	defer srv.Close()

	client, err := NewClientWithToken(srv.URL, "secret", "bad", WithMaxRetries(0))
	if err != nil {
		t.Fatalf("NewClientWithToken() error = %v", err)
	}

	_, err = client.ReadDocument(context.Background(), "team/base.json")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if errors.Is(err, fs.ErrNotExist) {
		t.Errorf("permission denied must not look like a missing file: %v", err)
	}
}
