// Package middleware exposes HTTP adapters for the engine's per-request guard:
// bearer-token extraction, authentication, and optional role enforcement.
//
// # Guards
//
//   - [Guard] — verifies the bearer token and consults revocation state.
//   - [RequireRole] — Guard plus a required role from the verified claims.
//   - [RequireAdmin] — RequireRole bound to the administrative role.
//
// Each guard reads the Authorization header, calls Engine.Authenticate (or
// AuthenticateRole), and injects the result into the request context. Every
// failure answers 401 with an identical generic body so unauthenticated probing
// cannot distinguish a revoked token from an expired or malformed one.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to the
// engine, keeping the guard testable without a running server.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Leak revocation reasons, role requirements, or store health in responses.
package middleware
