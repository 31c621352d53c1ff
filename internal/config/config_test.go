// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, defaults, and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "0.0.0.0:8080"

database:
  path: "./test.db"

agent:
  base_url: "https://agent.example.com/v1/engines/42"
  bootstrap_token: "seed-token"
  session_secret: "cipher-secret"
  request_timeout: "30s"

auth:
  jwt_secret: "super-secret"
  token_ttl: "12h"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.HTTPAddr != "0.0.0.0:8080" {
		t.Errorf("unexpected http_addr: %s", cfg.Server.HTTPAddr)
	}
	if cfg.Database.Path != "./test.db" {
		t.Errorf("unexpected database path: %s", cfg.Database.Path)
	}
	if cfg.Agent.BaseURL != "https://agent.example.com/v1/engines/42" {
		t.Errorf("unexpected agent base_url: %s", cfg.Agent.BaseURL)
	}
	if cfg.Agent.RequestTimeout != 30*time.Second {
		t.Errorf("unexpected request_timeout: %s", cfg.Agent.RequestTimeout)
	}
	if cfg.Auth.TokenTTL != 12*time.Hour {
		t.Errorf("unexpected token_ttl: %s", cfg.Auth.TokenTTL)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_JWT_SECRET", "expanded-secret")

	configPath := writeConfig(t, `
server:
  http_addr: "localhost:8080"

database:
  path: "./test.db"

agent:
  base_url: "https://agent.example.com"

auth:
  jwt_secret: "${TEST_JWT_SECRET}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Auth.JWTSecret != "expanded-secret" {
		t.Errorf("expected env var expansion, got %q", cfg.Auth.JWTSecret)
	}
}

func TestLoad_Defaults(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "localhost:8080"

database:
  path: "./test.db"

agent:
  base_url: "https://agent.example.com"

auth:
  jwt_secret: "the-jwt-secret"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Session secret falls back to the JWT secret
	if cfg.Agent.SessionSecret != "the-jwt-secret" {
		t.Errorf("expected session secret fallback, got %q", cfg.Agent.SessionSecret)
	}
	if cfg.Agent.RequestTimeout != 60*time.Second {
		t.Errorf("unexpected default request_timeout: %s", cfg.Agent.RequestTimeout)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("unexpected default token_ttl: %s", cfg.Auth.TokenTTL)
	}
}

func TestLoad_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing http_addr",
			content: `
database:
  path: "./test.db"
agent:
  base_url: "https://agent.example.com"
auth:
  jwt_secret: "s"
`,
			wantErr: "server.http_addr",
		},
		{
			name: "missing database path",
			content: `
server:
  http_addr: "localhost:8080"
agent:
  base_url: "https://agent.example.com"
auth:
  jwt_secret: "s"
`,
			wantErr: "database.path",
		},
		{
			name: "missing agent base_url",
			content: `
server:
  http_addr: "localhost:8080"
database:
  path: "./test.db"
auth:
  jwt_secret: "s"
`,
			wantErr: "agent.base_url",
		},
		{
			name: "missing jwt_secret",
			content: `
server:
  http_addr: "localhost:8080"
database:
  path: "./test.db"
agent:
  base_url: "https://agent.example.com"
`,
			wantErr: "auth.jwt_secret",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeConfig(t, tt.content)
			_, err := Load(configPath)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "localhost:8080"
database:
  path: "./test.db"
agent:
  base_url: "https://agent.example.com"
  request_timeout: "not-a-duration"
auth:
  jwt_secret: "s"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("expected duration parse error, got nil")
	}
	if !strings.Contains(err.Error(), "request_timeout") {
		t.Errorf("error %q does not mention request_timeout", err)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}
