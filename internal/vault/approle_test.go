package vault

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAppRoleAuth_MissingCredentials(t *testing.T) {
	client, err := NewClient("http://127.0.0.1:8200", "secret")
	if err != nil {
		t.Fatalf("unexpected error creating client: %v", err)
	}

	if err := AppRoleAuth(context.Background(), client, "", "", "some-secret-id"); err == nil {
		t.Error("expected error for empty role_id, got nil")
	}

	if err := AppRoleAuth(context.Background(), client, "", "some-role-id", ""); err == nil {
		t.Error("expected error for empty secret_id, got nil")
	}
}

func TestAppRoleAuth_NoServer(t *testing.T) {
	client, err := NewClient("http://127.0.0.1:1", "secret", WithMaxRetries(0))
	if err != nil {
		t.Fatalf("unexpected error creating client: %v", err)
	}

	if err := AppRoleAuth(context.Background(), client, "", "role-id", "secret-id"); err == nil {
		t.Fatal("expected error for non-reachable server, got nil")
	}
}

func TestAppRoleAuth_SetsToken(t *testing.T) {
	var gotPath string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"auth": {"client_token": "s.fresh", "lease_duration": 3600}}`))
	}))
	defer srv.Close()

	t.Setenv("VAULT_TOKEN", "")
	client, err := NewClient(srv.URL, "secret")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if err := AppRoleAuth(context.Background(), client, "ci", "role", "secret"); err != nil {
		t.Fatalf("AppRoleAuth() error = %v", err)
	}

	if gotPath != "/v1/auth/ci/login" {
		t.Errorf("login path = %q, want %q", gotPath, "/v1/auth/ci/login")
	}
	if gotBody["role_id"] != "role" || gotBody["secret_id"] != "secret" {
		t.Errorf("login body = %v", gotBody)
	}
	if got := client.Token(); got != "s.fresh" {
		t.Errorf("Token() = %q, want %q", got, "s.fresh")
	}
}
