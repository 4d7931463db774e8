package goRevoke

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MrEthical07/goRevoke/internal/flows"
	"github.com/MrEthical07/goRevoke/jwt"
	"github.com/MrEthical07/goRevoke/password"
	"github.com/MrEthical07/goRevoke/revocation"
)

// Builder defines a public type used by goRevoke APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	directory UserDirectory
	verifier  PasswordVerifier
	logger    *zap.Logger

	built bool
}

// New creates a [Builder] seeded with default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder configuration wholesale.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the shared Redis client backing the revocation store.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserDirectory sets the credential and role source.
func (b *Builder) WithUserDirectory(dir UserDirectory) *Builder {
	b.directory = dir
	return b
}

// WithPasswordVerifier overrides the default argon2id verifier.
func (b *Builder) WithPasswordVerifier(v PasswordVerifier) *Builder {
	b.verifier = v
	return b
}

// WithLogger sets the engine logger. Without one the engine stays silent.
func (b *Builder) WithLogger(log *zap.Logger) *Builder {
	b.logger = log
	return b
}

// WithMetricsEnabled toggles the engine counter set.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates configuration and dependencies and assembles the [Engine].
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.redis == nil {
		return nil, errors.New("redis client is required")
	}
	if b.directory == nil {
		return nil, errors.New("user directory is required")
	}

	cfg := cloneConfig(b.config)
	if err := normalizeConfig(&cfg); err != nil {
		return nil, err
	}

	jwtManager, err := jwt.NewManager(jwt.Config{
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
		PrivateKey:    cfg.JWT.PrivateKey,
		PublicKey:     cfg.JWT.PublicKey,
		Issuer:        cfg.JWT.Issuer,
		Leeway:        cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	verifier := b.verifier
	if verifier == nil {
		verifier, err = password.NewArgon2(password.Config{
			Memory:      cfg.Password.Memory,
			Time:        cfg.Password.Time,
			Parallelism: cfg.Password.Parallelism,
			SaltLength:  cfg.Password.SaltLength,
			KeyLength:   cfg.Password.KeyLength,
		})
		if err != nil {
			return nil, err
		}
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	store := revocation.NewStore(b.redis, cfg.Revocation.RedisPrefix)

	engine := &Engine{
		config:     cfg,
		jwtManager: jwtManager,
		store:      store,
		directory:  b.directory,
		verifier:   verifier,
		metrics:    NewMetrics(cfg.Metrics),
		log:        logger,
	}
	engine.deps = buildFlowDeps(engine)

	b.built = true
	return engine, nil
}

func buildFlowDeps(e *Engine) flows.Deps {
	mintAccess := func(subject string, roles []string) (string, error) {
		signed, _, err := e.jwtManager.MintAccess(subject, roles)
		return signed, err
	}
	mintRefresh := func(subject string) (string, error) {
		signed, _, err := e.jwtManager.MintRefresh(subject)
		return signed, err
	}
	lookupByUsername := func(ctx context.Context, username string) (*flows.Account, error) {
		user, err := e.directory.LookupByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		return accountFrom(user), nil
	}
	lookupByID := func(ctx context.Context, id string) (*flows.Account, error) {
		user, err := e.directory.LookupByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return accountFrom(user), nil
	}

	return flows.Deps{
		Login: flows.LoginDeps{
			LookupByUsername: lookupByUsername,
			NotFound:         ErrUserNotFound,
			VerifyPassword:   e.verifier.Verify,
			MintAccess:       mintAccess,
			MintRefresh:      mintRefresh,
		},
		Logout: flows.LogoutDeps{
			ParseRefresh: e.jwtManager.ParseRefresh,
			Now:          time.Now,
			Store:        e.store,
			// The codec accepts tokens up to the leeway past expiry, so the
			// denylist write must cover at least that window.
			DenylistFloor: e.config.JWT.Leeway,
		},
		Refresh: flows.RefreshDeps{
			ParseRefresh:  e.jwtManager.ParseRefresh,
			LookupByID:    lookupByID,
			NotFound:      ErrUserNotFound,
			MintAccess:    mintAccess,
			MintRefresh:   mintRefresh,
			Now:           time.Now,
			Store:         e.store,
			DenylistFloor: e.config.JWT.Leeway,
		},
		Revoke: flows.RevokeDeps{
			AdminRole: RoleAdmin,
			// A cutoff must outlive every token it covers; the refresh TTL is
			// the maximum token lifetime in the system.
			CutoffTTL: e.config.JWT.RefreshTTL,
			Now:       time.Now,
			Store:     e.store,
		},
		Authenticate: flows.AuthenticateDeps{
			ParseAccess: e.jwtManager.ParseAccess,
			Store:       e.store,
		},
	}
}

func accountFrom(user *User) *flows.Account {
	if user == nil {
		return nil
	}
	return &flows.Account{
		ID:           user.ID,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		Active:       user.Active,
		Roles:        append([]string(nil), user.Roles...),
	}
}
