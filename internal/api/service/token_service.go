package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid room token")

// RoomClaims are carried by a room token. Room is the id of the only room the token may act on.
type RoomClaims struct {
	Room string `json:"room"`
	jwt.RegisteredClaims
}

// TokenService issues and checks room tokens.
type TokenService interface {
	Issue(roomID string) (string, error)
	Verify(token string) (string, error)
}

type tokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates an HS256 TokenService. Tokens expire after ttl.
func NewTokenService(secret string, ttl time.Duration) TokenService {
	return &tokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for roomID.
func (s *tokenService) Issue(roomID string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, RoomClaims{
		Room: roomID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   roomID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign room token: %w", err)
	}
	return tokenString, nil
}

// Verify checks the signature and expiry and returns the room id the token was issued for.
func (s *tokenService) Verify(tokenString string) (string, error) {
	claims := &RoomClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Room == "" {
		return "", fmt.Errorf("%w: missing room claim", ErrInvalidToken)
	}
	return claims.Room, nil
}
