package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/goRevoke/jwt"
)

// AuthenticateFailureKind classifies guard failures for root-level mapping.
// Externally every kind collapses to one unauthorized signal; the distinction
// exists only for logs and metrics.
type AuthenticateFailureKind int

const (
	AuthenticateFailureNone AuthenticateFailureKind = iota
	AuthenticateFailureParse
	AuthenticateFailureDenylisted
	AuthenticateFailureUserCutoff
	AuthenticateFailureGlobalCutoff
	AuthenticateFailureStore
)

// AuthenticateResult carries either verified claims or failure metadata.
type AuthenticateResult struct {
	Failure AuthenticateFailureKind
	Err     error
	Claims  *jwt.AccessClaims
}

// RevocationChecker is the read side of the revocation store consulted by the
// guard and by refresh re-validation.
type RevocationChecker interface {
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
	GetUserCutoff(ctx context.Context, userID string) (time.Time, bool, error)
	GetGlobalCutoff(ctx context.Context) (time.Time, bool, error)
}

// AuthenticateDeps captures guard dependencies.
type AuthenticateDeps struct {
	ParseAccess func(string) (*jwt.AccessClaims, error)
	Store       RevocationChecker
}

// RunAuthenticate verifies signature and expiry via the codec, then checks the
// token-id denylist, the user cutoff, and the global cutoff in that order
// (cheapest and most specific first), short-circuiting on the first hit.
// Store failures are never treated as "not revoked".
func RunAuthenticate(ctx context.Context, tokenStr string, deps AuthenticateDeps) AuthenticateResult {
	claims, err := deps.ParseAccess(tokenStr)
	if err != nil {
		return AuthenticateResult{Failure: AuthenticateFailureParse, Err: err}
	}

	failure, err := checkRevocation(ctx, claims.ID, claims.Subject, issuedAt(claims.IssuedAt), deps.Store)
	if failure != AuthenticateFailureNone {
		return AuthenticateResult{Failure: failure, Err: err}
	}

	return AuthenticateResult{Claims: claims}
}

// checkRevocation applies the three revocation facts to a codec-valid token.
// Shared by the guard and the refresh flow, which re-validates refresh tokens
// as a protected operation in its own right.
func checkRevocation(
	ctx context.Context,
	tokenID, subject string,
	issued time.Time,
	store RevocationChecker,
) (AuthenticateFailureKind, error) {
	denied, err := store.IsTokenRevoked(ctx, tokenID)
	if err != nil {
		return AuthenticateFailureStore, err
	}
	if denied {
		return AuthenticateFailureDenylisted, nil
	}

	if cutoff, ok, err := store.GetUserCutoff(ctx, subject); err != nil {
		return AuthenticateFailureStore, err
	} else if ok && !issued.After(cutoff) {
		return AuthenticateFailureUserCutoff, nil
	}

	if cutoff, ok, err := store.GetGlobalCutoff(ctx); err != nil {
		return AuthenticateFailureStore, err
	} else if ok && !issued.After(cutoff) {
		return AuthenticateFailureGlobalCutoff, nil
	}

	return AuthenticateFailureNone, nil
}

func issuedAt(date *jwt.NumericDate) time.Time {
	if date == nil {
		// No issued-at claim means cutoffs cannot be evaluated; treat the token
		// as issued at the epoch so any cutoff covers it.
		return time.Unix(0, 0)
	}
	return date.Time
}
