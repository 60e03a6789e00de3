package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/phc-health/phc-engine/pkg/models"
)

// Service signs and verifies first-party HS256 tokens.
type Service struct {
	signingKey []byte
	tokenTTL   time.Duration
}

// NewService creates a token service with the given signing key and
// token lifetime.
func NewService(signingKey string, tokenTTL time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		tokenTTL:   tokenTTL,
	}
}

// IssueToken signs a token for the given user.
func (s *Service) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		Email: user.Email,
		Role:  user.Role,
	}
	if user.TenantID != nil {
		claims.TenantID = user.TenantID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a token string and returns its claims.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
