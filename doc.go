// Package goRevoke provides short-lived signed JWT credentials with centrally
// coordinated revocation: per-token denylisting, per-user issuance cutoffs, and a
// global issuance cutoff, all backed by a shared Redis store with TTL-bounded
// growth.
//
// The package is designed for concurrent server workloads: Engine methods are safe
// to call from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// goRevoke is the public surface. It exposes [Engine], [Builder], [Config], the
// sentinel errors, and value types ([TokenPair], [User], MetricsSnapshot). Flow
// orchestration lives under internal/ and is never exported. Token encoding is
// owned by the jwt sub-package; revocation facts are owned by the revocation
// sub-package.
//
// # What this package must NOT do
//
//   - Expose Redis clients, store key layouts, or signing keys in its public API.
//   - Cache revocation state in process memory — every Authenticate and Refresh
//     consults the shared store so an admin revocation takes effect fleet-wide on
//     the very next request.
//   - Treat a store timeout as "not revoked". Store failures fail closed.
//
// # Performance contract
//
// Authenticate is the hot path: one signature verification plus at most three
// store reads, short-circuiting on the first revocation hit. Login, Refresh,
// Logout, and the revoke operations are allowed one store round-trip per written
// fact.
package goRevoke
