package service

import (
	"fmt"
	"time"

	"github.com/boddenberg/controletok-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "controletok-api"

// JWTClaims represents the custom claims in access tokens.
// Sub is the normalised e-mail of the session owner.
type JWTClaims struct {
	Sub  string `json:"sub"`
	Name string `json:"name,omitempty"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// TokenService signs and validates HS256 session tokens.
type TokenService struct {
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
}

func NewTokenService(secret string, accessTTL time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), accessTTL: accessTTL, now: time.Now}
}

// Issue builds the login response for user with a fresh access token.
func (s *TokenService) Issue(user *domain.User) (*domain.LoginResponse, error) {
	token, err := s.sign(user)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	return &domain.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int(s.accessTTL.Seconds()),
		User:        user,
	}, nil
}

// Validate parses tokenString and checks signature, expiry and type.
func (s *TokenService) Validate(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido ou expirado"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido"}
	}
	if claims.Type != "access" || claims.Sub == "" {
		return nil, &domain.ErrUnauthorized{Message: "Tipo de token inválido"}
	}
	return claims, nil
}

func (s *TokenService) sign(user *domain.User) (string, error) {
	now := s.now()
	claims := JWTClaims{
		Sub:  domain.NormalizeEmail(user.Email),
		Name: user.Name,
		Type: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			Issuer:    tokenIssuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
