// Package revocation provides the Redis-backed store of revocation facts: token
// denylist entries, per-user issuance cutoffs, and the global issuance cutoff.
//
// # Store model
//
// Every fact carries a TTL equal to the remaining validity window of what it
// revokes, so the store self-prunes and never grows beyond roughly max token
// lifetime × active sessions. Cutoffs are raise-only: writes go through a Lua
// compare-and-set that keeps the maximum, which makes concurrent revocations
// from multiple service instances commutative without any coordination.
//
// # Architecture boundaries
//
// This package owns the Redis key layout and the CAS scripts. It does NOT parse
// tokens, evaluate roles, or decide what gets revoked — those responsibilities
// belong to the engine.
//
// # What this package must NOT do
//
//   - Import goRevoke or jwt (no upward imports).
//   - Return "not revoked" on a Redis failure. Errors are wrapped in
//     [ErrStoreUnavailable] and the caller fails closed.
//   - Cache revocation facts in process memory.
package revocation
