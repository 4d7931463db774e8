package goRevoke

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by goRevoke APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	JWT        JWTConfig
	Revocation RevocationConfig
	Password   PasswordConfig
	Metrics    MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig defines a public type used by goRevoke APIs.
//
// JWTConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type JWTConfig struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod string // "hs256" (default), "ed25519" optional
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

/*
====================================
REVOCATION CONFIG
====================================
*/

// RevocationConfig defines a public type used by goRevoke APIs.
//
// RevocationConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RevocationConfig struct {
	RedisPrefix string
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by goRevoke APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by goRevoke APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:     10 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
			SigningMethod: "hs256",
			Leeway:        30 * time.Second,
		},
		Revocation: RevocationConfig{
			RedisPrefix: "rv",
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.PrivateKey = append([]byte(nil), cfg.JWT.PrivateKey...)
	out.JWT.PublicKey = append([]byte(nil), cfg.JWT.PublicKey...)
	return out
}

func normalizeConfig(cfg *Config) error {
	def := defaultConfig()

	if cfg.JWT.AccessTTL <= 0 {
		cfg.JWT.AccessTTL = def.JWT.AccessTTL
	}
	if cfg.JWT.RefreshTTL <= 0 {
		cfg.JWT.RefreshTTL = def.JWT.RefreshTTL
	}
	if cfg.JWT.RefreshTTL <= cfg.JWT.AccessTTL {
		return errors.New("refresh TTL must exceed access TTL")
	}
	cfg.JWT.SigningMethod = strings.ToLower(strings.TrimSpace(cfg.JWT.SigningMethod))
	if cfg.JWT.SigningMethod == "" {
		cfg.JWT.SigningMethod = def.JWT.SigningMethod
	}
	if cfg.JWT.Leeway < 0 {
		return errors.New("jwt leeway must not be negative")
	}

	cfg.Revocation.RedisPrefix = strings.TrimSpace(cfg.Revocation.RedisPrefix)
	if cfg.Revocation.RedisPrefix == "" {
		cfg.Revocation.RedisPrefix = def.Revocation.RedisPrefix
	}
	if strings.ContainsAny(cfg.Revocation.RedisPrefix, " \t\r\n") {
		return errors.New("redis prefix must not contain whitespace")
	}

	if cfg.Password.Memory == 0 {
		cfg.Password.Memory = def.Password.Memory
	}
	if cfg.Password.Time == 0 {
		cfg.Password.Time = def.Password.Time
	}
	if cfg.Password.Parallelism == 0 {
		cfg.Password.Parallelism = def.Password.Parallelism
	}
	if cfg.Password.SaltLength == 0 {
		cfg.Password.SaltLength = def.Password.SaltLength
	}
	if cfg.Password.KeyLength == 0 {
		cfg.Password.KeyLength = def.Password.KeyLength
	}

	return nil
}
