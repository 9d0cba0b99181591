package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// AuthService issues and validates viewer session tokens. Account
// management lives outside this service; only the bearer token survives to
// the layout API.
type AuthService interface {
	GenerateToken(viewerID string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type Claims struct {
	ViewerID string `json:"viewer_id"`
	jwt.RegisteredClaims
}

type authService struct {
	jwtSecret  []byte
	sessionTTL time.Duration
}

func NewAuthService(jwtSecret string, sessionTTL time.Duration) AuthService {
	return &authService{
		jwtSecret:  []byte(jwtSecret),
		sessionTTL: sessionTTL,
	}
}

func (s *authService) GenerateToken(viewerID string) (string, error) {
	claims := &Claims{
		ViewerID: viewerID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
