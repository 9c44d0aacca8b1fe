package config

import "testing"

func TestValidateDevNeedsNothing(t *testing.T) {
	cfg := &Config{Env: "development"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateProductionRequiresAuth(t *testing.T) {
	cfg := &Config{Env: "production"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when no auth configuration is set")
	}

	cfg.JWTSigningKey = "secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateIssuerNeedsJWKS(t *testing.T) {
	cfg := &Config{Env: "production", AuthIssuer: "https://auth.example.com"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when issuer is set without JWKS URL or signing key")
	}

	cfg.AuthJWKSURL = "https://auth.example.com/jwks"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/caseflow")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8000" {
		t.Errorf("port = %q", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Error("default env should be development")
	}
	if cfg.DBMaxConns != 20 || cfg.DBMinConns != 5 {
		t.Errorf("pool sizes = %d/%d", cfg.DBMaxConns, cfg.DBMinConns)
	}
	if cfg.DefaultSchema != "public" {
		t.Errorf("schema = %q", cfg.DefaultSchema)
	}
}
