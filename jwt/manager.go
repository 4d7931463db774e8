package jwt

import (
	"crypto/ed25519"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SigningMethod defines a public type used by goRevoke APIs.
//
// SigningMethod instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SigningMethod string

const (
	// MethodHS256 is an exported constant or variable used by the revocation engine.
	MethodHS256 SigningMethod = "hs256"
	// MethodEd25519 is an exported constant or variable used by the revocation engine.
	MethodEd25519 SigningMethod = "ed25519"
)

// The typ claim separates the two token kinds. Both are signed with the same
// key, so without it either parser would accept the other kind: an access
// token could be rotated into a fresh pair and a refresh token could pass the
// guard.
const (
	claimTypeAccess  = "access"
	claimTypeRefresh = "refresh"
)

var (
	// ErrMalformed is returned when a token cannot be parsed at all.
	ErrMalformed = errors.New("malformed token")
	// ErrBadSignature is returned when a token parses but its signature does not verify.
	ErrBadSignature = errors.New("bad token signature")
	// ErrExpired is returned when a token's signature verifies but its expiry has passed.
	ErrExpired = errors.New("expired token")
)

// Config defines a public type used by goRevoke APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

// Manager mints and verifies the access and refresh claim shapes. The signing
// method is fixed at construction so the signature check can be swapped
// (HS256 shared secret vs Ed25519 key pair) without touching any caller.
type Manager struct {
	config Config
}

// AccessClaims is the immutable claim set of a short-lived access token:
// subject, role names captured at issuance, issued-at, expiry, and a unique
// random token id (RegisteredClaims.ID).
type AccessClaims struct {
	Roles []string `json:"roles,omitempty"`
	Kind  string   `json:"typ"`
	jwt.RegisteredClaims
}

// NumericDate aliases the library timestamp type so callers can inspect
// issued-at and expiry claims without importing the signing library.
type NumericDate = jwt.NumericDate

// NewNumericDate wraps a time in the claim timestamp type.
func NewNumericDate(t time.Time) *NumericDate {
	return jwt.NewNumericDate(t)
}

// RefreshClaims is the claim set of a long-lived refresh token. It carries no
// roles: roles are re-resolved from the user directory at refresh time so role
// changes and deactivation take effect on the next rotation.
type RefreshClaims struct {
	Kind string `json:"typ"`
	jwt.RegisteredClaims
}

// NewManager validates the codec configuration and returns a ready [Manager].
//
// NewManager may return an error when input validation, dependency calls, or security checks fail.
// NewManager does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.RefreshTTL <= cfg.AccessTTL {
		return nil, errors.New("refresh TTL must exceed access TTL")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 {
			return nil, errors.New("hs256 requires private key")
		}
	case MethodEd25519:
		if len(cfg.PrivateKey) > 0 {
			if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
				return nil, err
			}
		}
		if len(cfg.PublicKey) == 0 {
			return nil, errors.New("ed25519 requires public key")
		}
		if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported signing method")
	}
	cfg.Issuer = strings.TrimSpace(cfg.Issuer)

	return &Manager{config: cfg}, nil
}

// MintAccess signs a new access token for the subject with the role set
// captured at this instant. Each call produces a fresh random token id.
//
// MintAccess may return an error when input validation, dependency calls, or security checks fail.
// MintAccess does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (j *Manager) MintAccess(subject string, roles []string) (string, *AccessClaims, error) {
	now := time.Now()
	claims := &AccessClaims{
		Roles: append([]string(nil), roles...),
		Kind:  claimTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.config.AccessTTL)),
			Issuer:    j.config.Issuer,
		},
	}

	signed, err := j.sign(claims)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// MintRefresh signs a new refresh token for the subject. Refresh claims carry
// no roles and live for the configured refresh TTL.
//
// MintRefresh may return an error when input validation, dependency calls, or security checks fail.
// MintRefresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (j *Manager) MintRefresh(subject string) (string, *RefreshClaims, error) {
	now := time.Now()
	claims := &RefreshClaims{
		Kind: claimTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.config.RefreshTTL)),
			Issuer:    j.config.Issuer,
		},
	}

	signed, err := j.sign(claims)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// ParseAccess verifies signature, expiry, and token kind of an access token
// and returns its claims. Failures are classified as [ErrMalformed],
// [ErrBadSignature], or [ErrExpired]; revocation state is never consulted
// here, and a refresh token presented as an access token is rejected.
func (j *Manager) ParseAccess(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := j.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.Kind != claimTypeAccess {
		// A signed token of the wrong kind stays indistinguishable from any
		// other unusable input.
		return nil, ErrMalformed
	}
	return claims, nil
}

// ParseRefresh verifies signature, expiry, and token kind of a refresh token
// and returns its claims, with the same error classification as
// [Manager.ParseAccess]. An access token presented here is rejected.
func (j *Manager) ParseRefresh(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := j.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.Kind != claimTypeRefresh {
		return nil, ErrMalformed
	}
	return claims, nil
}

func (j *Manager) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(j.getMethod(), claims)

	signKey, err := j.getSignKey()
	if err != nil {
		return "", err
	}

	return token.SignedString(signKey)
}

func (j *Manager) parse(tokenStr string, claims jwt.Claims) error {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{j.getMethod().Alg()}),
	}
	if j.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(j.config.Leeway))
	}
	if j.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(j.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return j.getVerifyKey()
	})
	if err != nil {
		return classifyParseError(err)
	}
	if !token.Valid {
		return ErrBadSignature
	}

	return nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrBadSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		// Unknown verification failures are treated as malformed input so the
		// external error surface stays closed.
		return ErrMalformed
	}
}

func (j *Manager) getMethod() jwt.SigningMethod {
	switch j.config.SigningMethod {
	case MethodEd25519:
		return jwt.SigningMethodEdDSA
	default:
		return jwt.SigningMethodHS256
	}
}

func (j *Manager) getSignKey() (interface{}, error) {
	switch j.config.SigningMethod {
	case MethodEd25519:
		return parseEdPrivateKey(j.config.PrivateKey)
	default:
		return j.config.PrivateKey, nil
	}
}

func (j *Manager) getVerifyKey() (interface{}, error) {
	switch j.config.SigningMethod {
	case MethodEd25519:
		return parseEdPublicKey(j.config.PublicKey)
	default:
		return j.config.PrivateKey, nil
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
