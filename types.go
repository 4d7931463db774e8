package goRevoke

import "context"

// RoleAdmin is the role name that grants privileged operations
// (RevokeGlobal, RevokeUser on other subjects, Cleanup).
const RoleAdmin = "admin"

// TokenType is the bearer token type reported alongside issued pairs.
const TokenType = "Bearer"

// User is the read-only account record consumed from the user directory.
// goRevoke never mutates or persists users; it only reads credentials,
// the active flag, and the role set at login and refresh time.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Active       bool
	Roles        []string
}

// HasRole reports whether the user carries the given role name.
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// UserDirectory is the credential and role source that callers must implement
// to integrate goRevoke with their user database. Lookups return
// [ErrUserNotFound] when no matching record exists.
//
// Role changes and deactivation made in the directory take effect on the
// user's next refresh, since access claims are immutable once minted.
type UserDirectory interface {
	LookupByUsername(ctx context.Context, username string) (*User, error)
	LookupByID(ctx context.Context, id string) (*User, error)
}

// PasswordVerifier checks a candidate password against a stored hash.
// The default implementation is [password.Argon2]; any constant-time
// verifier can be substituted through [Builder.WithPasswordVerifier].
type PasswordVerifier interface {
	Verify(hash, candidate string) (bool, error)
}

// TokenPair is the access/refresh pair returned by [Engine.Login],
// [Engine.Issue], and [Engine.Refresh].
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
}

// AuthResult is returned by [Engine.Authenticate] and carried through
// HTTP middleware. It exposes only what business handlers need: the
// authenticated subject and the roles captured at issuance time.
type AuthResult struct {
	UserID string
	Roles  []string
}

// HasRole reports whether the authenticated caller carries the given role.
func (r *AuthResult) HasRole(role string) bool {
	if r == nil {
		return false
	}
	for _, have := range r.Roles {
		if have == role {
			return true
		}
	}
	return false
}
