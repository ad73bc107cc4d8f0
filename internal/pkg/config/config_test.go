package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "secret",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("expected default token ttl 24h, got %s", cfg.TokenTTL)
	}
	if cfg.Mongo.Database != "inventory_system" {
		t.Errorf("unexpected mongo database %q", cfg.Mongo.Database)
	}
	if cfg.ActivityWorkers != 4 {
		t.Errorf("expected 4 activity workers, got %d", cfg.ActivityWorkers)
	}
	if cfg.IsProduction() {
		t.Errorf("default env should not be production")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":   "secret",
		"ENV":          "production",
		"TOKEN_TTL":    "90m",
		"CORS_ORIGINS": "https://a.example,https://b.example",
		"REDIS_DB":     "3",
		"ADMIN_EMAIL":  "root@example.com",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.IsProduction() {
		t.Errorf("expected production env")
	}
	if cfg.TokenTTL != 90*time.Minute {
		t.Errorf("expected 90m ttl, got %s", cfg.TokenTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("unexpected cors origins %v", cfg.CORSOrigins)
	}
	if cfg.Redis.DB != 3 {
		t.Errorf("expected redis db 3, got %d", cfg.Redis.DB)
	}
	if cfg.Admin.Email != "root@example.com" {
		t.Errorf("unexpected admin email %q", cfg.Admin.Email)
	}
}

func TestLoad_RequiresSecret(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected missing JWT_SECRET error, got %v", err)
	}
}

func TestLoad_RejectsNonPositiveTTL(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "secret",
		"TOKEN_TTL":  "0s",
	}))
	if err == nil || !strings.Contains(err.Error(), "TOKEN_TTL") {
		t.Fatalf("expected TOKEN_TTL error, got %v", err)
	}
}
