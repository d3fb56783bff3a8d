package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:4000" {
		t.Fatalf("unexpected API base URL: %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Fatalf("expected 30s timeout, got %v", cfg.API.Timeout)
	}
	if cfg.Storage.Path != "doublet-storage.json" {
		t.Fatalf("unexpected storage path: %q", cfg.Storage.Path)
	}
	if cfg.Payments.GatewayEnabled() {
		t.Fatal("gateway should be disabled without a public key")
	}
	if cfg.Email.Configured() {
		t.Fatal("email should be unconfigured without identifiers")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvAPIBaseURL, "https://api.doublet.example")
	t.Setenv("DOUBLET_FLUTTERWAVE_PUBLIC_KEY", "FLWPUBK-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if !cfg.App.IsProd() {
		t.Fatalf("expected production env, got %q", cfg.App.Env)
	}
	if cfg.API.BaseURL != "https://api.doublet.example" {
		t.Fatalf("unexpected API base URL: %q", cfg.API.BaseURL)
	}
	if !cfg.Payments.GatewayEnabled() {
		t.Fatal("flutterwave key present, gateway should be enabled")
	}
}

func TestPaymentsConfig_GatewaySelection(t *testing.T) {
	p := PaymentsConfig{Gateway: "paystack", PaystackPublicKey: "pk_test"}
	if !p.GatewayEnabled() {
		t.Fatal("paystack key present, gateway should be enabled")
	}
	p.Gateway = "unknown"
	if p.GatewayEnabled() {
		t.Fatal("unknown gateway should never report enabled")
	}
}
