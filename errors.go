package goRevoke

import (
	"errors"

	"github.com/MrEthical07/goRevoke/revocation"
)

var (
	// ErrUnauthorized is an exported constant or variable used by the revocation engine.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is an exported constant or variable used by the revocation engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is an exported constant or variable used by the revocation engine.
	ErrUserNotFound = errors.New("user not found")
	// ErrInactiveUser is an exported constant or variable used by the revocation engine.
	ErrInactiveUser = errors.New("inactive user")
	// ErrForbidden is an exported constant or variable used by the revocation engine.
	ErrForbidden = errors.New("forbidden")
	// ErrTokenInvalid is an exported constant or variable used by the revocation engine.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenRevoked is an exported constant or variable used by the revocation engine.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrTokenCreation is an exported constant or variable used by the revocation engine.
	ErrTokenCreation = errors.New("token creation failed")
	// ErrRefreshInvalid is an exported constant or variable used by the revocation engine.
	ErrRefreshInvalid = errors.New("invalid refresh token")
	// ErrStoreUnavailable is the revocation package sentinel re-exported at the
	// engine surface so callers match one error regardless of which layer failed.
	ErrStoreUnavailable = revocation.ErrStoreUnavailable
	// ErrEngineNotReady is an exported constant or variable used by the revocation engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
