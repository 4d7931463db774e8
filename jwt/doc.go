// Package jwt owns the two claim shapes (access, refresh) and the signed compact
// token codec built on github.com/golang-jwt/jwt/v5.
//
// # Verification contract
//
// ParseAccess and ParseRefresh check signature integrity and expiry only, and
// classify failures into three typed errors: [ErrMalformed], [ErrBadSignature],
// and [ErrExpired]. Revocation state is deliberately NOT consulted here — that
// layering belongs to the engine's guard, which runs after the codec accepts a
// token.
//
// # Architecture boundaries
//
// This package owns signing-key handling and claim (de)serialization. The signing
// method (HS256 or Ed25519) is selected at construction; callers never see the
// key material or the underlying library types beyond the claim structs.
//
// # What this package must NOT do
//
//   - Import goRevoke or revocation (no upward imports).
//   - Read or write Redis.
//   - Distinguish revoked from valid tokens — a codec-valid token may still be
//     rejected by the engine.
package jwt
