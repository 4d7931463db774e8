package goRevoke

import (
	"context"

	"go.uber.org/zap"

	"github.com/MrEthical07/goRevoke/internal/flows"
	"github.com/MrEthical07/goRevoke/jwt"
	"github.com/MrEthical07/goRevoke/revocation"
)

// Engine defines a public type used by goRevoke APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config     Config
	jwtManager *jwt.Manager
	store      *revocation.Store
	directory  UserDirectory
	verifier   PasswordVerifier
	metrics    *Metrics
	log        *zap.Logger
	deps       flows.Deps
}

// MetricsSnapshot returns a copy of all engine counters for exporters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Login authenticates a username/password pair against the user directory and
// mints a fresh access/refresh token pair. Every credential failure — unknown
// user, inactive account, wrong password — surfaces as the same
// [ErrInvalidCredentials] so callers cannot probe which part was wrong.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	res := flows.RunLogin(ctx, username, password, e.deps.Login)
	switch res.Failure {
	case flows.LoginFailureNone:
		e.metricInc(MetricLoginSuccess)
		e.log.Debug("login accepted", zap.String("user_id", res.Account.ID))
		return &TokenPair{
			AccessToken:  res.AccessToken,
			RefreshToken: res.RefreshToken,
			TokenType:    TokenType,
		}, nil
	case flows.LoginFailureUserNotFound, flows.LoginFailureInactive, flows.LoginFailureBadPassword:
		e.metricInc(MetricLoginFailure)
		e.log.Debug("login rejected", zap.String("username", username))
		return nil, ErrInvalidCredentials
	case flows.LoginFailureTokenCreation:
		e.metricInc(MetricLoginFailure)
		e.log.Error("token creation failed during login", zap.Error(res.Err))
		return nil, ErrTokenCreation
	default:
		e.metricInc(MetricLoginFailure)
		e.log.Warn("directory lookup failed during login", zap.Error(res.Err))
		return nil, res.Err
	}
}

// Issue mints an access/refresh pair for an already-authenticated user. It is
// the issuance primitive behind Login and Refresh: it requires an active user,
// generates fresh token ids and issued-at timestamps, and performs no store
// writes. A signing failure is a fatal configuration error, never retried.
func (e *Engine) Issue(_ context.Context, user *User) (*TokenPair, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.Active {
		return nil, ErrInactiveUser
	}

	access, _, err := e.jwtManager.MintAccess(user.ID, user.Roles)
	if err != nil {
		e.log.Error("token creation failed", zap.Error(err))
		return nil, ErrTokenCreation
	}
	refresh, _, err := e.jwtManager.MintRefresh(user.ID)
	if err != nil {
		e.log.Error("token creation failed", zap.Error(err))
		return nil, ErrTokenCreation
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    TokenType,
	}, nil
}

// Authenticate is the per-request guard: codec verification followed by the
// denylist, user cutoff, and global cutoff checks, in that order. On any
// failure the externally observable error is [ErrUnauthorized] — revocation
// reasons are never distinguished to the caller — except store outages, which
// surface as [ErrStoreUnavailable] so transports can answer with a server
// error while still rejecting the request (fail closed, never "not revoked").
func (e *Engine) Authenticate(ctx context.Context, tokenStr string) (*AuthResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	res := flows.RunAuthenticate(ctx, tokenStr, e.deps.Authenticate)
	switch res.Failure {
	case flows.AuthenticateFailureNone:
		e.metricInc(MetricAuthAccept)
		return &AuthResult{
			UserID: res.Claims.Subject,
			Roles:  append([]string(nil), res.Claims.Roles...),
		}, nil
	case flows.AuthenticateFailureStore:
		e.metricInc(MetricAuthReject)
		e.metricInc(MetricStoreFailure)
		e.log.Warn("revocation check unavailable", zap.Error(res.Err))
		return nil, res.Err
	default:
		// Internal classification stays in logs only; callers see one signal.
		e.metricInc(MetricAuthReject)
		e.log.Debug("request rejected",
			zap.Int("reason", int(res.Failure)),
			zap.Error(res.Err),
		)
		return nil, ErrUnauthorized
	}
}

// AuthenticateRole runs [Engine.Authenticate] and additionally requires the
// verified claims to carry the given role, returning [ErrForbidden] otherwise.
func (e *Engine) AuthenticateRole(ctx context.Context, tokenStr, role string) (*AuthResult, error) {
	res, err := e.Authenticate(ctx, tokenStr)
	if err != nil {
		return nil, err
	}
	if !res.HasRole(role) {
		e.metricInc(MetricForbidden)
		return nil, ErrForbidden
	}
	return res, nil
}

// Refresh rotates a refresh token: the presented token is re-validated against
// the full revocation state, the user record is re-read from the directory,
// the old token id is denylisted, and a brand-new pair is minted. Each refresh
// token is therefore usable exactly once.
//
// Refresh may return an error when input validation, dependency calls, or security checks fail.
// Refresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	res := flows.RunRefresh(ctx, refreshToken, e.deps.Refresh)
	switch res.Failure {
	case flows.RefreshFailureNone:
		e.metricInc(MetricRefreshSuccess)
		e.log.Debug("refresh rotated",
			zap.String("user_id", res.UserID),
			zap.String("old_token_id", res.TokenID),
		)
		return &TokenPair{
			AccessToken:  res.AccessToken,
			RefreshToken: res.RefreshToken,
			TokenType:    TokenType,
		}, nil
	case flows.RefreshFailureParse:
		e.metricInc(MetricRefreshFailure)
		return nil, ErrRefreshInvalid
	case flows.RefreshFailureRevoked:
		e.metricInc(MetricRefreshFailure)
		e.metricInc(MetricRefreshRevokedReplay)
		e.log.Warn("revoked refresh token presented",
			zap.String("user_id", res.UserID),
			zap.String("token_id", res.TokenID),
		)
		return nil, ErrTokenRevoked
	case flows.RefreshFailureUserNotFound:
		e.metricInc(MetricRefreshFailure)
		return nil, ErrTokenInvalid
	case flows.RefreshFailureInactive:
		e.metricInc(MetricRefreshFailure)
		return nil, ErrInactiveUser
	case flows.RefreshFailureTokenCreation:
		e.metricInc(MetricRefreshFailure)
		e.log.Error("token creation failed during refresh", zap.Error(res.Err))
		return nil, ErrTokenCreation
	case flows.RefreshFailureStore:
		e.metricInc(MetricRefreshFailure)
		e.metricInc(MetricStoreFailure)
		e.log.Warn("revocation store failed during refresh", zap.Error(res.Err))
		return nil, res.Err
	default:
		e.metricInc(MetricRefreshFailure)
		e.log.Warn("directory lookup failed during refresh", zap.Error(res.Err))
		return nil, res.Err
	}
}

// Logout denylists the presented refresh token id for its remaining lifetime.
// Calling it twice with the same token succeeds both times; the second call
// rewrites the identical fact and changes nothing observable.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Logout(ctx context.Context, refreshToken string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	res := flows.RunLogout(ctx, refreshToken, e.deps.Logout)
	switch res.Failure {
	case flows.LogoutFailureNone:
		e.metricInc(MetricLogout)
		e.log.Debug("logout", zap.String("user_id", res.UserID), zap.String("token_id", res.TokenID))
		return nil
	case flows.LogoutFailureParse:
		return ErrRefreshInvalid
	default:
		// A failed denylist write must not look like a successful logout.
		e.metricInc(MetricStoreFailure)
		e.log.Warn("logout denylist write failed", zap.Error(res.Err))
		return res.Err
	}
}

// RevokeUser raises the target user's issuance cutoff to now. Permitted for
// the subject themselves or for holders of [RoleAdmin]; the authorization
// check runs against the caller's verified claims before any store mutation.
func (e *Engine) RevokeUser(ctx context.Context, caller *AuthResult, targetUserID string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	res := flows.RunRevokeUser(ctx, actorFrom(caller), targetUserID, e.deps.Revoke)
	switch res.Failure {
	case flows.RevokeFailureNone:
		e.metricInc(MetricRevokeUser)
		e.log.Info("user tokens revoked", zap.String("target_user_id", targetUserID))
		return nil
	case flows.RevokeFailureForbidden:
		e.metricInc(MetricForbidden)
		return ErrForbidden
	default:
		e.metricInc(MetricStoreFailure)
		e.log.Warn("user cutoff write failed", zap.Error(res.Err))
		return res.Err
	}
}

// RevokeGlobal raises the system-wide issuance cutoff to now, invalidating
// every outstanding token issued at or before this instant. Admin only.
func (e *Engine) RevokeGlobal(ctx context.Context, caller *AuthResult) error {
	if e == nil {
		return ErrEngineNotReady
	}

	res := flows.RunRevokeGlobal(ctx, actorFrom(caller), e.deps.Revoke)
	switch res.Failure {
	case flows.RevokeFailureNone:
		e.metricInc(MetricRevokeGlobal)
		e.log.Info("global revocation issued")
		return nil
	case flows.RevokeFailureForbidden:
		e.metricInc(MetricForbidden)
		return ErrForbidden
	default:
		e.metricInc(MetricStoreFailure)
		e.log.Warn("global cutoff write failed", zap.Error(res.Err))
		return res.Err
	}
}

// Cleanup triggers the store's advisory compaction and reports how many stale
// revocation facts were purged. Admin only; never required for correctness
// since TTLs already bound store growth.
func (e *Engine) Cleanup(ctx context.Context, caller *AuthResult) (int, error) {
	if e == nil {
		return 0, ErrEngineNotReady
	}

	res := flows.RunCleanup(ctx, actorFrom(caller), e.deps.Revoke)
	switch res.Failure {
	case flows.RevokeFailureNone:
		e.metrics.Add(MetricCleanupRemoved, uint64(res.Removed))
		e.log.Info("revocation store compacted", zap.Int("removed", res.Removed))
		return res.Removed, nil
	case flows.RevokeFailureForbidden:
		e.metricInc(MetricForbidden)
		return 0, ErrForbidden
	default:
		e.metricInc(MetricStoreFailure)
		e.log.Warn("cleanup failed", zap.Error(res.Err))
		return res.Removed, res.Err
	}
}

func actorFrom(caller *AuthResult) flows.Actor {
	if caller == nil {
		return flows.Actor{}
	}
	return flows.Actor{
		UserID: caller.UserID,
		Roles:  caller.Roles,
	}
}
