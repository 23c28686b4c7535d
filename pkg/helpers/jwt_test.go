package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func testJWT() *JWTManager {
	return NewJWTManager("access-secret", "refresh-secret", time.Minute, time.Hour)
}

func TestJWTManager_AccessRoundTrip(t *testing.T) {
	m := testJWT()
	tok, exp, err := m.GenerateAccessToken(AccessIdentity{UserID: "u1", UserName: "alice", Email: "a@x.io", FullName: "Alice A"})
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Minute), exp, 2*time.Second)

	claims, err := m.ParseAccessToken(tok)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.UserID)
	require.Equal(t, "alice", claims.UserName)
	require.Equal(t, "a@x.io", claims.Email)
	require.Equal(t, "Alice A", claims.FullName)
}

func TestJWTManager_RefreshRoundTrip(t *testing.T) {
	m := testJWT()
	tok, _, err := m.GenerateRefreshToken("u1")
	require.NoError(t, err)

	claims, err := m.ParseRefreshToken(tok)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.UserID)
}

func TestJWTManager_SecretsAreNotInterchangeable(t *testing.T) {
	m := testJWT()
	access, _, err := m.GenerateAccessToken(AccessIdentity{UserID: "u1"})
	require.NoError(t, err)
	refresh, _, err := m.GenerateRefreshToken("u1")
	require.NoError(t, err)

	_, err = m.ParseRefreshToken(access)
	require.Error(t, err)
	_, err = m.ParseAccessToken(refresh)
	require.Error(t, err)
}

func TestJWTManager_RejectsExpired(t *testing.T) {
	m := testJWT()
	claims := &AccessClaims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.AccessSecret)
	require.NoError(t, err)

	_, err = m.ParseAccessToken(tok)
	require.Error(t, err)
}

func TestJWTManager_RejectsGarbageAndOtherAlg(t *testing.T) {
	m := testJWT()
	_, err := m.ParseAccessToken("not-a-token")
	require.Error(t, err)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"_id": "u1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.ParseAccessToken(tok)
	require.Error(t, err)
}

func TestJWTManager_MissingConfig(t *testing.T) {
	cases := map[string]*JWTManager{
		"no access secret":  NewJWTManager("", "r", time.Minute, time.Hour),
		"no access ttl":     NewJWTManager("a", "r", 0, time.Hour),
		"no refresh secret": NewJWTManager("a", "", time.Minute, time.Hour),
		"no refresh ttl":    NewJWTManager("a", "r", time.Minute, 0),
	}
	for name, m := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, aErr := m.GenerateAccessToken(AccessIdentity{UserID: "u1"})
			_, _, rErr := m.GenerateRefreshToken("u1")
			require.True(t, aErr == ErrTokenConfig || rErr == ErrTokenConfig)
		})
	}
}

func TestJWTManager_TokensDifferAcrossCalls(t *testing.T) {
	m := testJWT()
	a, _, err := m.GenerateRefreshToken("u1")
	require.NoError(t, err)
	b, _, err := m.GenerateRefreshToken("u1")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
