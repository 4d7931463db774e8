package flows

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goRevoke/jwt"
)

// RefreshFailureKind classifies refresh flow failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureParse
	RefreshFailureRevoked
	RefreshFailureStore
	RefreshFailureUserNotFound
	RefreshFailureInactive
	RefreshFailureDirectory
	RefreshFailureTokenCreation
)

// RefreshResult carries either the rotated token pair or failure metadata.
type RefreshResult struct {
	Failure      RefreshFailureKind
	Err          error
	TokenID      string
	UserID       string
	Account      *Account
	AccessToken  string
	RefreshToken string
}

// RefreshRevocationStore combines the read checks with the denylist write that
// rotation performs.
type RefreshRevocationStore interface {
	RevocationChecker
	RevocationWriter
}

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	ParseRefresh func(string) (*jwt.RefreshClaims, error)
	LookupByID   func(ctx context.Context, id string) (*Account, error)
	NotFound     error
	MintAccess   func(subject string, roles []string) (string, error)
	MintRefresh  func(subject string) (string, error)
	Now          func() time.Time
	Store        RefreshRevocationStore
	// DenylistFloor bounds the rotation denylist TTL from below; see
	// [LogoutDeps.DenylistFloor].
	DenylistFloor time.Duration
}

// RunRefresh executes refresh-token rotation. The presented token is
// re-validated against the full revocation state even though a guard may
// already have checked it — refresh is itself a protected operation. On
// success the old token id is denylisted before the new pair is minted, so
// each refresh token is usable exactly once.
//
// Two concurrent calls presenting the same token can both pass validation
// before either denylist write lands; that narrow reuse window is accepted
// rather than guaranteed away (see the engine's concurrency notes).
func RunRefresh(ctx context.Context, refreshToken string, deps RefreshDeps) RefreshResult {
	claims, err := deps.ParseRefresh(refreshToken)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureParse, Err: err}
	}

	failure, err := checkRevocation(ctx, claims.ID, claims.Subject, issuedAt(claims.IssuedAt), deps.Store)
	switch failure {
	case AuthenticateFailureNone:
	case AuthenticateFailureStore:
		return RefreshResult{
			Failure: RefreshFailureStore,
			Err:     err,
			TokenID: claims.ID,
			UserID:  claims.Subject,
		}
	default:
		return RefreshResult{
			Failure: RefreshFailureRevoked,
			TokenID: claims.ID,
			UserID:  claims.Subject,
		}
	}

	// Roles and the active flag are re-resolved here so directory changes take
	// effect on rotation rather than waiting out the refresh lifetime.
	account, err := deps.LookupByID(ctx, claims.Subject)
	if err != nil {
		if deps.NotFound != nil && errors.Is(err, deps.NotFound) {
			return RefreshResult{
				Failure: RefreshFailureUserNotFound,
				Err:     err,
				TokenID: claims.ID,
				UserID:  claims.Subject,
			}
		}
		return RefreshResult{
			Failure: RefreshFailureDirectory,
			Err:     err,
			TokenID: claims.ID,
			UserID:  claims.Subject,
		}
	}
	if account == nil {
		return RefreshResult{
			Failure: RefreshFailureUserNotFound,
			TokenID: claims.ID,
			UserID:  claims.Subject,
		}
	}
	if !account.Active {
		return RefreshResult{
			Failure: RefreshFailureInactive,
			TokenID: claims.ID,
			UserID:  claims.Subject,
			Account: account,
		}
	}

	// Rotation: deny the presented token id before minting replacements, so a
	// replayed stale token is rejected from this point on.
	remaining := denylistTTL(claims.ExpiresAt, deps.Now(), deps.DenylistFloor)
	if err := deps.Store.MarkTokenRevoked(ctx, claims.ID, remaining); err != nil {
		return RefreshResult{
			Failure: RefreshFailureStore,
			Err:     err,
			TokenID: claims.ID,
			UserID:  claims.Subject,
			Account: account,
		}
	}

	access, err := deps.MintAccess(account.ID, account.Roles)
	if err != nil {
		return RefreshResult{
			Failure: RefreshFailureTokenCreation,
			Err:     err,
			TokenID: claims.ID,
			UserID:  claims.Subject,
			Account: account,
		}
	}

	refresh, err := deps.MintRefresh(account.ID)
	if err != nil {
		return RefreshResult{
			Failure: RefreshFailureTokenCreation,
			Err:     err,
			TokenID: claims.ID,
			UserID:  claims.Subject,
			Account: account,
		}
	}

	return RefreshResult{
		TokenID:      claims.ID,
		UserID:       account.ID,
		Account:      account,
		AccessToken:  access,
		RefreshToken: refresh,
	}
}
