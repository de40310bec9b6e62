// Package token reads claims out of the opaque access token the server hands
// us. The client never verifies signatures - the token is only inspected for
// its expiry so we can skip a doomed profile fetch at startup. Anything that
// cannot be decoded is treated as expired.
package token

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

var DecodeErr = errors.New("token decode failure")

// Claims is the subset of registered claims the client cares about.
type Claims struct {
	Subject   string
	ExpiresAt *time.Time
}

// Decode extracts claims without verifying the signature.
func Decode(raw string) (*Claims, error) {
	parser := jwtlib.NewParser()
	mapClaims := jwtlib.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, mapClaims); err != nil {
		return nil, errors.Wrap(DecodeErr, err.Error())
	}

	claims := &Claims{}

	if sub, err := mapClaims.GetSubject(); err == nil {
		claims.Subject = sub
	}

	exp, err := mapClaims.GetExpirationTime()
	if err != nil {
		return nil, errors.Wrap(DecodeErr, "malformed exp claim")
	}
	if exp != nil {
		expTime := exp.Time
		claims.ExpiresAt = &expTime
	}

	return claims, nil
}

// Expired reports whether the claims are past their expiry. A missing exp
// claim counts as expired.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return true
	}
	return c.ExpiresAt.Before(now)
}

// IsExpired is the one-call form used on raw tokens. Undecodable tokens are
// expired by definition.
func IsExpired(raw string, now time.Time) bool {
	claims, err := Decode(raw)
	if err != nil {
		return true
	}
	return claims.Expired(now)
}
