package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidToken is returned for any token that does not parse, verify or carry a subject
var ErrInvalidToken = errors.New("invalid token")

// Claims represents the JWT claims. The subject is the profile id.
type Claims struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// ProfileID returns the subject as an ObjectID
func (c *Claims) ProfileID() (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.Subject)
}

// TokenService mints and verifies HS256 access tokens
type TokenService struct {
	secret []byte
	expire time.Duration
	now    func() time.Time
}

// NewTokenService returns a token service signing with secret. Tokens expire after expire.
func NewTokenService(secret string, expire time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		expire: expire,
		now:    time.Now,
	}
}

// Expiry is the lifetime of the tokens minted by the service
func (s *TokenService) Expiry() time.Duration {
	return s.expire
}

// GenerateToken creates a new JWT for a profile with a unique JTI
func (s *TokenService) GenerateToken(profileID primitive.ObjectID, email string, isAdmin bool) (string, error) {
	now := s.now()
	claims := Claims{
		Email:   email,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   profileID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expire)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims
func (s *TokenService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	if _, err := claims.ProfileID(); err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return claims, nil
}
