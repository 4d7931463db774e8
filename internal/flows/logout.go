package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/goRevoke/jwt"
)

// LogoutFailureKind classifies logout failures for root-level mapping.
type LogoutFailureKind int

const (
	LogoutFailureNone LogoutFailureKind = iota
	LogoutFailureParse
	LogoutFailureStore
)

// LogoutResult reports the denylisted token and subject on success.
type LogoutResult struct {
	Failure LogoutFailureKind
	Err     error
	TokenID string
	UserID  string
}

// RevocationWriter is the write side of the revocation store used by logout and
// refresh rotation.
type RevocationWriter interface {
	MarkTokenRevoked(ctx context.Context, tokenID string, ttl time.Duration) error
}

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	ParseRefresh func(string) (*jwt.RefreshClaims, error)
	Now          func() time.Time
	Store        RevocationWriter
	// DenylistFloor bounds the denylist TTL from below. The codec accepts
	// tokens up to the leeway past expiry, where the naive remaining lifetime
	// is non-positive; without the floor such a token would never be written
	// and could be replayed for the rest of the leeway window.
	DenylistFloor time.Duration
}

// RunLogout denylists the presented refresh token id for its remaining
// lifetime. The store write is an overwrite of the same fact, so a second
// logout with the same token succeeds without additional state change.
//
// The paired access token is not revoked here: access tokens self-expire
// within minutes and are not individually tracked unless explicitly
// denylisted. That exposure window is bounded by the access-token lifetime.
func RunLogout(ctx context.Context, refreshToken string, deps LogoutDeps) LogoutResult {
	claims, err := deps.ParseRefresh(refreshToken)
	if err != nil {
		return LogoutResult{Failure: LogoutFailureParse, Err: err}
	}

	remaining := denylistTTL(claims.ExpiresAt, deps.Now(), deps.DenylistFloor)
	if err := deps.Store.MarkTokenRevoked(ctx, claims.ID, remaining); err != nil {
		return LogoutResult{
			Failure: LogoutFailureStore,
			Err:     err,
			TokenID: claims.ID,
			UserID:  claims.Subject,
		}
	}

	return LogoutResult{
		TokenID: claims.ID,
		UserID:  claims.Subject,
	}
}

func remainingLifetime(expiry *jwt.NumericDate, now time.Time) time.Duration {
	if expiry == nil {
		return 0
	}
	return expiry.Time.Sub(now)
}

// denylistTTL is the remaining token lifetime, never less than floor, so a
// token verified inside the leeway window is still denylisted long enough to
// cover that window.
func denylistTTL(expiry *jwt.NumericDate, now time.Time, floor time.Duration) time.Duration {
	ttl := remainingLifetime(expiry, now)
	if ttl < floor {
		return floor
	}
	return ttl
}
