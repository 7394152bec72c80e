package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/carewire/hospital-api/pkg/errors"
)

var ErrMissingSecret = errors.New("jwt signing secret is not configured")

// Claims is the payload embedded in every session token. The subject is a
// lookup key only; the authoritative identity is re-fetched from storage on
// each request.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService issues and verifies HS256 session tokens.
type JWTService interface {
	GenerateToken(subjectID, email, role string) (string, error)
	ValidateToken(token string) (*Claims, error)
}

type jwtService struct {
	secret []byte
	expiry time.Duration
}

// NewJWTService returns a token service backed by the given signing secret.
// The process must not come up without one.
func NewJWTService(secret string, expiry time.Duration) (JWTService, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &jwtService{secret: []byte(secret), expiry: expiry}, nil
}

func (s *jwtService) GenerateToken(subjectID, email, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *jwtService) ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.TokenExpired()
		}
		return nil, apperrors.InvalidToken(err)
	}
	if !token.Valid {
		return nil, apperrors.InvalidToken(nil)
	}
	return claims, nil
}
