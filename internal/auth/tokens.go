package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidAccessToken indicates the presented access token failed
// signature or claim validation.
var ErrInvalidAccessToken = errors.New("invalid access token")

const tokenIssuer = "cliptube"

// TokenSigner issues and verifies the signed access tokens carried in
// Authorization headers. Refresh tokens are opaque and handled by Manager.
type TokenSigner struct {
	secret []byte
}

// NewTokenSigner constructs a signer using the provided HMAC secret.
func NewTokenSigner(secret string) *TokenSigner {
	if strings.TrimSpace(secret) == "" {
		panic("auth: signing secret must not be empty")
	}
	return &TokenSigner{secret: []byte(secret)}
}

// Sign produces an access token identifying the user, valid until expiresAt.
func (s *TokenSigner) Sign(userID string, expiresAt time.Time) (string, error) {
	if userID == "" {
		return "", errors.New("user id must be provided")
	}

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
		ExpiresAt: jwt.NewNumericDate(expiresAt.UTC()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}

	return signed, nil
}

// Verify validates an access token and returns the user identifier it names.
func (s *TokenSigner) Verify(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAccessToken, err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidAccessToken
	}

	return claims.Subject, nil
}
