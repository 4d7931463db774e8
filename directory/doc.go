// Package directory provides ready-made implementations of the engine's
// read-only user directory: a Postgres-backed lookup for deployments and an
// in-memory map for tests and examples.
//
// The engine only ever reads from a directory — user CRUD, password hashing
// policy, and role administration stay with the owning service.
package directory
