package fakeapi

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/imvestor-client/internal/config"
	"github.com/jrsteele09/imvestor-client/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

const issuer = "imvestor-fakeapi"

// accessClaims are the claims carried by an access token
type accessClaims struct {
	Email      string `json:"email"`
	Role       string `json:"role"`
	Generation int    `json:"gen"` // Tokens from an older generation are rejected
	jwtlib.RegisteredClaims
}

// tokenManager issues HS256 access tokens and opaque refresh tokens
type tokenManager struct {
	secret []byte
	ttl    time.Duration
	length int

	mu            sync.RWMutex
	generation    int
	refreshTokens map[string]string // refresh token -> account email
}

func newTokenManager(cfg config.FakeAPIConfig) *tokenManager {
	length := cfg.GetRefreshTokenLength()
	if length <= 0 {
		length = 32
	}
	return &tokenManager{
		secret:        []byte(cfg.GetTokenSecret()),
		ttl:           cfg.GetAccessTokenTTL(),
		length:        length,
		refreshTokens: make(map[string]string),
	}
}

// CreateAccessToken signs a short-lived access token for the account
func (m *tokenManager) CreateAccessToken(email, role string) (string, error) {
	m.mu.RLock()
	gen := m.generation
	m.mu.RUnlock()

	now := NowTimeFunc()
	claims := accessClaims{
		Email:      email,
		Role:       role,
		Generation: gen,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    issuer,
			Subject:   email,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// ParseAccessToken verifies signature, issuer, expiry and generation
func (m *tokenManager) ParseAccessToken(token string) (*accessClaims, error) {
	claims := &accessClaims{}
	_, err := jwtlib.ParseWithClaims(token, claims, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwtlib.WithIssuer(issuer),
		jwtlib.WithTimeFunc(NowTimeFunc),
		jwtlib.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "%v", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if claims.Generation < m.generation {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "token revoked")
	}
	return claims, nil
}

// CreateRefreshToken generates and remembers a new opaque refresh token
func (m *tokenManager) CreateRefreshToken(email string) (string, error) {
	tokenBytes := make([]byte, m.length)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	tokenStr := hex.EncodeToString(tokenBytes)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshTokens[tokenStr] = email
	return tokenStr, nil
}

// LookupRefreshToken returns the account a refresh token was issued to
func (m *tokenManager) LookupRefreshToken(token string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	email, ok := m.refreshTokens[token]
	if !ok {
		return "", errors.Wrapf(errors.ErrInvalidToken, "unknown refresh token")
	}
	return email, nil
}

// expireAccessTokens invalidates every access token issued so far
func (m *tokenManager) expireAccessTokens() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation++
}

func (m *tokenManager) revokeRefreshTokens() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshTokens = make(map[string]string)
}
