// Package flows contains the orchestration logic behind the engine's public
// operations: login, logout, refresh rotation, the revoke family, cleanup, and
// the per-request authentication guard.
//
// Each flow is a pure function over an explicit dependency struct. Flows return
// classified failure kinds instead of engine sentinel errors so the root package
// owns the externally observable error shape (and its collapse to a single
// unauthorized signal) in exactly one place.
//
// # What this package must NOT do
//
//   - Import the root package (deps are closures and small local interfaces).
//   - Log or count metrics — the engine does both from the returned failure kind.
//   - Leak which revocation check rejected a token beyond the failure kind.
package flows
