// Package httpapi is the HTTP boundary of the revocation engine: request
// parsing, bearer extraction via the middleware guards, and response
// serialization for the six auth endpoints (login, logout, refresh,
// revoke-all, revoke-user, cleanup).
//
// # Status mapping
//
//   - Credential and token failures, of any internal cause, answer 401 with an
//     identical generic body.
//   - Authenticated callers lacking role or ownership answer 403.
//   - Revocation-store outages during a mutation answer 500 — a failed
//     denylist or cutoff write must never look like success.
//
// # What this package must NOT do
//
//   - Contain revocation policy (what gets denylisted, which TTL, who may
//     revoke) — that lives in the engine and its flows.
//   - Expose internal error detail in response bodies.
package httpapi
