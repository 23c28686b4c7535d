package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrTokenConfig is returned when a secret or TTL needed to sign a token is missing.
var ErrTokenConfig = errors.New("token signing is not configured")

// JWTManager handles generation and validation of JWT tokens
type JWTManager struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

func NewJWTManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{
		AccessSecret:  []byte(accessSecret),
		RefreshSecret: []byte(refreshSecret),
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
	}
}

// AccessIdentity is the identity embedded in an access token.
type AccessIdentity struct {
	UserID   string
	UserName string
	Email    string
	FullName string
}

type AccessClaims struct {
	UserID   string `json:"_id"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	UserID string `json:"_id"`
	jwt.RegisteredClaims
}

// registered builds the standard claims; the random jti keeps two tokens
// minted within the same second distinct.
func registered(now, exp time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

func (m *JWTManager) GenerateAccessToken(id AccessIdentity) (string, time.Time, error) {
	if m == nil || len(m.AccessSecret) == 0 || m.AccessTTL <= 0 {
		return "", time.Time{}, ErrTokenConfig
	}
	now := time.Now()
	exp := now.Add(m.AccessTTL)
	claims := &AccessClaims{
		UserID:           id.UserID,
		UserName:         id.UserName,
		Email:            id.Email,
		FullName:         id.FullName,
		RegisteredClaims: registered(now, exp),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.AccessSecret)
	return s, exp, err
}

func (m *JWTManager) GenerateRefreshToken(userID string) (string, time.Time, error) {
	if m == nil || len(m.RefreshSecret) == 0 || m.RefreshTTL <= 0 {
		return "", time.Time{}, ErrTokenConfig
	}
	now := time.Now()
	exp := now.Add(m.RefreshTTL)
	claims := &RefreshClaims{
		UserID:           userID,
		RegisteredClaims: registered(now, exp),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.RefreshSecret)
	return s, exp, err
}

func (m *JWTManager) ParseAccessToken(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := parseToken(tokenStr, m.AccessSecret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (m *JWTManager) ParseRefreshToken(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := parseToken(tokenStr, m.RefreshSecret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func parseToken(tokenStr string, secret []byte, claims jwt.Claims) error {
	if len(secret) == 0 {
		return ErrTokenConfig
	}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return err
	}
	if !tkn.Valid {
		return errors.New("invalid token")
	}
	return nil
}
