package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultLifetime is how long a credential lasts when its token carries no
// expiry.
const DefaultLifetime = 24 * time.Hour

// User is the identity shown in the sidebar. It lives and expires with the
// credential.
type User struct {
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	RoleName     string `json:"roleName,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// Credential is a bearer token, its expiry and the user it was issued to.
type Credential struct {
	Token     string    `json:"token"`
	Subject   string    `json:"subject,omitempty"`
	User      User      `json:"user"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewCredential wraps token, taking expiry and subject from its claims when
// it is a JWT.
func NewCredential(token string, user User, now time.Time) Credential {
	c := Credential{
		Token:     token,
		User:      user,
		IssuedAt:  now,
		ExpiresAt: now.Add(DefaultLifetime),
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return c
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	if sub, err := claims.GetSubject(); err == nil {
		c.Subject = sub
	}
	return c
}

// Expired reports whether c is no longer usable at now.
func (c Credential) Expired(now time.Time) bool {
	return c.Token == "" || !now.Before(c.ExpiresAt)
}
