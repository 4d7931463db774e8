package flows

import (
	"context"
	"time"
)

// RevokeFailureKind classifies revoke and cleanup failures for root-level mapping.
type RevokeFailureKind int

const (
	RevokeFailureNone RevokeFailureKind = iota
	RevokeFailureForbidden
	RevokeFailureStore
)

// RevokeResult reports the outcome of a revoke or cleanup flow. Removed is
// meaningful only for cleanup.
type RevokeResult struct {
	Failure RevokeFailureKind
	Err     error
	Removed int
}

// CutoffStore is the store surface used by the revoke family.
type CutoffStore interface {
	SetUserCutoff(ctx context.Context, userID string, cutoff time.Time, ttl time.Duration) (bool, error)
	SetGlobalCutoff(ctx context.Context, cutoff time.Time, ttl time.Duration) (bool, error)
	Cleanup(ctx context.Context) (int, error)
}

// RevokeDeps captures revoke/cleanup flow dependencies.
type RevokeDeps struct {
	AdminRole string
	// CutoffTTL bounds how long a cutoff fact must outlive the tokens it
	// covers: the maximum token lifetime.
	CutoffTTL time.Duration
	Now       func() time.Time
	Store     CutoffStore
}

// RunRevokeUser raises the target user's cutoff to now. The caller must be the
// subject of the action or hold the administrative role; the check runs before
// any store mutation. Cutoffs only move forward, so duplicate or late retries
// never regress the stored value.
func RunRevokeUser(ctx context.Context, actor Actor, targetUserID string, deps RevokeDeps) RevokeResult {
	if actor.UserID != targetUserID && !actor.HasRole(deps.AdminRole) {
		return RevokeResult{Failure: RevokeFailureForbidden}
	}

	if _, err := deps.Store.SetUserCutoff(ctx, targetUserID, deps.Now(), deps.CutoffTTL); err != nil {
		return RevokeResult{Failure: RevokeFailureStore, Err: err}
	}
	return RevokeResult{}
}

// RunRevokeGlobal raises the system-wide cutoff to now, invalidating every
// token of every user issued at or before this instant. Tokens minted after
// the call remain valid. Administrative role required.
func RunRevokeGlobal(ctx context.Context, actor Actor, deps RevokeDeps) RevokeResult {
	if !actor.HasRole(deps.AdminRole) {
		return RevokeResult{Failure: RevokeFailureForbidden}
	}

	if _, err := deps.Store.SetGlobalCutoff(ctx, deps.Now(), deps.CutoffTTL); err != nil {
		return RevokeResult{Failure: RevokeFailureStore, Err: err}
	}
	return RevokeResult{}
}

// RunCleanup invokes the store's advisory compaction and reports how many
// stale revocation facts were purged. Administrative role required. TTLs
// already bound store growth, so this is maintenance and observability only.
func RunCleanup(ctx context.Context, actor Actor, deps RevokeDeps) RevokeResult {
	if !actor.HasRole(deps.AdminRole) {
		return RevokeResult{Failure: RevokeFailureForbidden}
	}

	removed, err := deps.Store.Cleanup(ctx)
	if err != nil {
		return RevokeResult{Failure: RevokeFailureStore, Err: err, Removed: removed}
	}
	return RevokeResult{Removed: removed}
}
