package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.Addr)
	}
	if cfg.Production() {
		t.Fatal("default environment must not be production")
	}
	if cfg.SessionTTL != 5*24*time.Hour {
		t.Fatalf("unexpected session ttl: %v", cfg.SessionTTL)
	}
	if cfg.ServiceAccount != nil {
		t.Fatal("service account should be absent by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CHATDESK_ENV", "production")
	t.Setenv("CHATDESK_SESSION_TTL", "1h")
	t.Setenv("CHATDESK_SERVICE_ACCOUNT_KEY", `{"project_id":"p","client_email":"e@x","private_key":"k"}`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Production() {
		t.Fatal("expected production environment")
	}
	if cfg.SessionTTL != time.Hour {
		t.Fatalf("unexpected session ttl: %v", cfg.SessionTTL)
	}
	if cfg.ServiceAccount == nil || cfg.ServiceAccount.ProjectID != "p" {
		t.Fatalf("service account not decoded: %+v", cfg.ServiceAccount)
	}
}

func TestLoadRejectsBrokenCredential(t *testing.T) {
	t.Setenv("CHATDESK_SERVICE_ACCOUNT_KEY", "definitely not json")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for broken credential")
	}
}

func TestSessionTTLSecondsForm(t *testing.T) {
	t.Setenv("CHATDESK_SESSION_TTL", "3600")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SessionTTL != time.Hour {
		t.Fatalf("unexpected session ttl: %v", cfg.SessionTTL)
	}
}
