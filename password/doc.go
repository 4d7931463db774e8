// Package password implements the password-verification collaborator: argon2id
// hashing in PHC string format with constant-time comparison.
//
// The engine consumes only Verify; Hash exists so deployments seeding their user
// directory produce hashes this verifier accepts.
package password
