// Package jwtx issues and verifies the signed identity tokens used by the
// auth service.
//
// A SigningContext scopes one token kind: the access and refresh contexts
// carry independent secrets so a leaked access secret cannot mint refresh
// tokens. Verification is all-or-nothing, a token either yields its full
// claims or a typed error.
package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrAudience    = errors.New("jwtx: audience mismatch")

	errBadContext = errors.New("jwtx: signing context requires secret and positive ttl")
)

// Claims are the identity claims embedded in every token. The registered
// subject claim carries the user ID.
type Claims struct {
	jwt.RegisteredClaims

	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}

// UserID returns the subject claim under its domain name.
func (c Claims) UserID() string { return c.Subject }

// SigningContext is the (secret, TTL, issuer, audience) tuple scoping one
// token kind. Values are set once at startup and treated as immutable.
type SigningContext struct {
	Secret   []byte
	TTL      time.Duration
	Issuer   string
	Audience string
}

// Validate reports whether the context is usable for issuing tokens.
func (sc SigningContext) Validate() error {
	if len(sc.Secret) == 0 || sc.TTL <= 0 {
		return errBadContext
	}
	return nil
}

// Issue signs an HS256 token for the given identity, expiring at now + TTL.
// The signature covers every claim, tampering with any byte fails Verify.
func (sc SigningContext) Issue(userID, username, role string, now time.Time) (string, error) {
	if err := sc.Validate(); err != nil {
		return "", err
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sc.Issuer,
			Subject:   userID,
			Audience:  jwt.ClaimStrings{sc.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sc.TTL)),
		},
		Username: username,
		Role:     role,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(sc.Secret)
}

// Verify parses and validates token against this context. On success the full
// claims are returned; any failure maps to exactly one of the package errors.
func (sc SigningContext) Verify(token string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sc.Issuer),
		jwt.WithAudience(sc.Audience),
		jwt.WithExpirationRequired(),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return sc.Secret, nil
	})
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	return claims, nil
}

// mapParseError collapses golang-jwt's joined errors into the package
// taxonomy. Order matters: expiry is checked before signature so an expired
// token reports Expired even when other validations also failed.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrAudience
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		return ErrMalformed
	}
}
