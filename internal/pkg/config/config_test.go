package config

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected server defaults: %+v", cfg)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Fatalf("expected 24h token TTL, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.LoginMaxAttempts != 5 || cfg.Auth.LoginWindow != 15*time.Minute {
		t.Fatalf("unexpected limiter defaults: %+v", cfg.Auth)
	}
	if cfg.Mongo.Database != "secure_api" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected store defaults: %+v %+v", cfg.Mongo, cfg.Redis)
	}
	if cfg.Audit.Workers != 4 {
		t.Fatalf("expected 4 audit workers, got %d", cfg.Audit.Workers)
	}
}

func TestLoad_Overrides(t *testing.T) {
	env := map[string]string{
		"PORT":          "9000",
		"TOKEN_TTL":     "30m",
		"BCRYPT_COST":   "12",
		"REDIS_DB":      "3",
		"AUDIT_WORKERS": "8",
		"JWT_SECRET":    strings.Repeat("k", 40),
	}
	cfg, err := load(context.Background(), envconfig.MapLookuper(env))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9000" || cfg.Auth.TokenTTL != 30*time.Minute || cfg.Auth.BcryptCost != 12 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Redis.DB != 3 || cfg.Audit.Workers != 8 {
		t.Fatalf("overrides not applied: %+v %+v", cfg.Redis, cfg.Audit)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"short secret": {"JWT_SECRET": "short"},
		"zero ttl":     {"TOKEN_TTL": "0s"},
		"no attempts":  {"LOGIN_MAX_ATTEMPTS": "0"},
		"no workers":   {"AUDIT_WORKERS": "0"},
		"bad duration": {"LOGIN_WINDOW": "soon"},
		"bad int":      {"REDIS_DB": "one"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := load(context.Background(), envconfig.MapLookuper(env)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestSigningKey(t *testing.T) {
	cfg := &Config{JWTSecret: strings.Repeat("s", 32)}
	key, generated, err := cfg.SigningKey()
	if err != nil || generated || string(key) != cfg.JWTSecret {
		t.Fatalf("configured key not used: %q %v %v", key, generated, err)
	}

	empty := &Config{}
	k1, generated, err := empty.SigningKey()
	if err != nil || !generated || len(k1) != minSecretLen {
		t.Fatalf("expected generated key, got %d bytes %v %v", len(k1), generated, err)
	}
	k2, _, _ := empty.SigningKey()
	if bytes.Equal(k1, k2) {
		t.Fatalf("generated keys must differ")
	}
}
