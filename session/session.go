package session

import (
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/imvestor-client/internal/errors"
	"golang.org/x/oauth2"
)

// Role is the kind of account a session belongs to
type Role string

const (
	RoleEntrepreneur Role = "ENTREPRENEUR"
	RoleInvestor     Role = "INVESTOR"
)

// ParseRole accepts the role names returned by the login endpoint, case-insensitively.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleEntrepreneur:
		return RoleEntrepreneur, nil
	case RoleInvestor:
		return RoleInvestor, nil
	}
	return "", fmt.Errorf("%w: %q", errors.ErrInvalidRole, s)
}

func (r Role) Valid() bool {
	return r == RoleEntrepreneur || r == RoleInvestor
}

// ProfilePath returns the profile resource owned by the role
func (r Role) ProfilePath() string {
	if r == RoleEntrepreneur {
		return "/entrepreneur"
	}
	return "/investor"
}

// Session holds the credentials of the signed-in user. It is created at login,
// has its access token replaced on refresh and is discarded on sign-out or
// when a refresh fails.
type Session struct {
	AccessToken  string // Short-lived bearer credential
	RefreshToken string // Exchanged at the refresh endpoint for a new access token
	Role         Role
	Email        string
}

// Authenticated reports whether an access token is held
func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}

// Token exposes the session credentials as an oauth2 bearer token. The expiry
// is read from the access token's exp claim when it is a JWT; opaque tokens
// get a zero expiry.
func (s Session) Token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    "Bearer",
	}
	if exp, err := AccessTokenExpiry(s.AccessToken); err == nil {
		tok.Expiry = exp
	}
	return tok
}

// AccessTokenExpiry decodes the exp claim of a JWT without verifying its signature.
// The client never holds the signing key; the server remains the authority.
func AccessTokenExpiry(token string) (time.Time, error) {
	if token == "" {
		return time.Time{}, errors.ErrInvalidToken
	}
	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, errors.Wrapf(errors.ErrInvalidToken, "parse access token: %v", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, errors.Wrapf(errors.ErrInvalidToken, "no exp claim")
	}
	return exp.Time, nil
}
