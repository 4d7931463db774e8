package flows

import (
	"context"
	"errors"
)

// LoginFailureKind classifies login failures for root-level mapping. The engine
// collapses every kind except TokenCreation into one generic credentials error
// so callers cannot distinguish a wrong password from an unknown or inactive
// account.
type LoginFailureKind int

const (
	LoginFailureNone LoginFailureKind = iota
	LoginFailureUserNotFound
	LoginFailureInactive
	LoginFailureBadPassword
	LoginFailureDirectory
	LoginFailureTokenCreation
)

// LoginResult carries either the issued token pair or failure metadata.
type LoginResult struct {
	Failure      LoginFailureKind
	Err          error
	Account      *Account
	AccessToken  string
	RefreshToken string
}

// LoginDeps captures login flow dependencies.
type LoginDeps struct {
	LookupByUsername func(ctx context.Context, username string) (*Account, error)
	NotFound         error
	VerifyPassword   func(hash, candidate string) (bool, error)
	MintAccess       func(subject string, roles []string) (string, error)
	MintRefresh      func(subject string) (string, error)
}

// RunLogin authenticates a username/password pair against the directory and
// mints a fresh token pair. Issuance has no store side effects: revocation
// facts are only ever written by logout, refresh rotation, and the revoke
// operations.
func RunLogin(ctx context.Context, username, password string, deps LoginDeps) LoginResult {
	account, err := deps.LookupByUsername(ctx, username)
	if err != nil {
		if deps.NotFound != nil && errors.Is(err, deps.NotFound) {
			return LoginResult{Failure: LoginFailureUserNotFound, Err: err}
		}
		return LoginResult{Failure: LoginFailureDirectory, Err: err}
	}

	if account == nil {
		return LoginResult{Failure: LoginFailureUserNotFound}
	}

	if !account.Active {
		return LoginResult{Failure: LoginFailureInactive, Account: account}
	}

	ok, err := deps.VerifyPassword(account.PasswordHash, password)
	if err != nil || !ok {
		return LoginResult{Failure: LoginFailureBadPassword, Err: err, Account: account}
	}

	access, err := deps.MintAccess(account.ID, account.Roles)
	if err != nil {
		return LoginResult{Failure: LoginFailureTokenCreation, Err: err, Account: account}
	}

	refresh, err := deps.MintRefresh(account.ID)
	if err != nil {
		return LoginResult{Failure: LoginFailureTokenCreation, Err: err, Account: account}
	}

	return LoginResult{
		Account:      account,
		AccessToken:  access,
		RefreshToken: refresh,
	}
}
