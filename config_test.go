package goRevoke

import (
	"testing"
	"time"
)

func TestNormalizeConfigFillsDefaults(t *testing.T) {
	cfg := Config{}
	if err := normalizeConfig(&cfg); err != nil {
		t.Fatalf("normalize empty config: %v", err)
	}

	def := defaultConfig()
	if cfg.JWT.AccessTTL != def.JWT.AccessTTL {
		t.Fatalf("access ttl = %v, want default %v", cfg.JWT.AccessTTL, def.JWT.AccessTTL)
	}
	if cfg.JWT.SigningMethod != "hs256" {
		t.Fatalf("signing method = %q, want hs256", cfg.JWT.SigningMethod)
	}
	if cfg.Revocation.RedisPrefix != def.Revocation.RedisPrefix {
		t.Fatalf("redis prefix = %q, want default %q", cfg.Revocation.RedisPrefix, def.Revocation.RedisPrefix)
	}
	if cfg.Password.Memory != def.Password.Memory {
		t.Fatalf("password memory = %d, want default %d", cfg.Password.Memory, def.Password.Memory)
	}
}

func TestNormalizeConfigKeepsExplicitPasswordFields(t *testing.T) {
	cfg := Config{}
	cfg.Password.Time = 5
	cfg.Password.Parallelism = 4

	if err := normalizeConfig(&cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}

	// Unset fields pick up defaults; explicitly set fields survive.
	def := defaultConfig()
	if cfg.Password.Time != 5 {
		t.Fatalf("time cost = %d, want explicit 5", cfg.Password.Time)
	}
	if cfg.Password.Parallelism != 4 {
		t.Fatalf("parallelism = %d, want explicit 4", cfg.Password.Parallelism)
	}
	if cfg.Password.Memory != def.Password.Memory {
		t.Fatalf("memory = %d, want default %d", cfg.Password.Memory, def.Password.Memory)
	}
	if cfg.Password.SaltLength != def.Password.SaltLength {
		t.Fatalf("salt length = %d, want default %d", cfg.Password.SaltLength, def.Password.SaltLength)
	}
	if cfg.Password.KeyLength != def.Password.KeyLength {
		t.Fatalf("key length = %d, want default %d", cfg.Password.KeyLength, def.Password.KeyLength)
	}
}

func TestNormalizeConfigRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name: "refresh ttl not beyond access ttl",
			mutate: func(c *Config) {
				c.JWT.AccessTTL = time.Hour
				c.JWT.RefreshTTL = time.Hour
			},
		},
		{
			name:   "negative leeway",
			mutate: func(c *Config) { c.JWT.Leeway = -time.Second },
		},
		{
			name:   "whitespace in redis prefix",
			mutate: func(c *Config) { c.Revocation.RedisPrefix = "rv tokens" },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(&cfg)
			if err := normalizeConfig(&cfg); err == nil {
				t.Fatal("expected configuration error")
			}
		})
	}
}

func TestSigningMethodIsCaseInsensitive(t *testing.T) {
	cfg := defaultConfig()
	cfg.JWT.SigningMethod = "  HS256 "
	if err := normalizeConfig(&cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.JWT.SigningMethod != "hs256" {
		t.Fatalf("signing method = %q, want hs256", cfg.JWT.SigningMethod)
	}
}
