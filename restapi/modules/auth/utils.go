// Package auth provides token-based authentication and role checks for the REST API.
//
//revive:disable-next-line:var-naming
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Premkambaliya/Hack-The-Winter/model"
)

// CookieName is the cookie that carries the session token.
const CookieName = "auth_token"

// DefaultTokenTTL is the lifetime of an issued token.
const DefaultTokenTTL = 24 * time.Hour

const issuer = "bloodbank-admin"

// ============================================================================
// JWT TOKEN MANAGEMENT
// ============================================================================

// Claims represents JWT claims
type Claims struct {
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// User returns the principal described by the claims.
func (c *Claims) User() *model.User {
	username := c.Username
	if username == "" {
		username = c.Subject
	}
	return &model.User{ID: c.UserID, Username: username, Email: c.Email, Role: c.Role}
}

// Authenticator issues and validates HMAC-signed tokens.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthenticator returns an Authenticator for secret. The secret must not be empty.
func NewAuthenticator(secret string) (*Authenticator, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret cannot be empty")
	}
	return &Authenticator{secret: []byte(secret), ttl: DefaultTokenTTL, now: time.Now}, nil
}

// GenerateJWT generates a token for user
func (a *Authenticator) GenerateJWT(user model.User) (string, error) {
	now := a.now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   user.Username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ValidateJWT validates a token and returns its claims
func (a *Authenticator) ValidateJWT(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// RefreshJWT issues a fresh token for the principal of a still-valid token
func (a *Authenticator) RefreshJWT(oldTokenString string) (string, error) {
	claims, err := a.ValidateJWT(oldTokenString)
	if err != nil {
		return "", fmt.Errorf("cannot refresh invalid token: %w", err)
	}
	return a.GenerateJWT(*claims.User())
}
