// Package auth persists bearer tokens and inspects access-token expiry.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tokens is the persisted credential pair. The JSON keys match the two
// client-side storage keys the backend's web client uses.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Empty reports whether no access token is held.
func (t Tokens) Empty() bool {
	return t.AccessToken == ""
}

// ExpiresAt returns the exp claim of a JWT without verifying its signature.
// The signing key is held by the backend; the client only needs the claim to
// schedule a refresh. ok is false for opaque or malformed tokens.
func ExpiresAt(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Expired reports whether token expires within skew of now. Tokens without
// a readable exp claim are never considered expired; the server's 401 is the
// fallback signal for those.
func Expired(token string, now time.Time, skew time.Duration) bool {
	exp, ok := ExpiresAt(token)
	if !ok {
		return false
	}
	return !now.Add(skew).Before(exp)
}
