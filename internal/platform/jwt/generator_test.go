package jwtmw

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGenerator_GenerateToken は生成されたJWTトークンが有効で正しいクレームを含むことを検証します。
func TestGenerator_GenerateToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		userID     uint
		email      string
		expiration time.Duration
	}{
		{"basic user", 1, "user@example.com", time.Hour},
		{"user with special email", 42, "user+tag@example.com", time.Hour},
		{"large user id", 999999, "test@test.com", 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fixed := time.Now().Truncate(time.Second)
			gen := &generator{secret: []byte("test-secret"), expiration: tt.expiration, now: func() time.Time { return fixed }}

			tokenStr, err := gen.GenerateToken(tt.userID, tt.email)
			require.NoError(t, err)
			require.NotEmpty(t, tokenStr)

			token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
				return []byte("test-secret"), nil
			})
			require.NoError(t, err)
			require.True(t, token.Valid)

			claims, ok := token.Claims.(jwt.MapClaims)
			require.True(t, ok)
			assert.Equal(t, float64(tt.userID), claims["sub"])
			assert.Equal(t, tt.email, claims["email"])
			assert.Equal(t, float64(fixed.Add(tt.expiration).Unix()), claims["exp"])
			assert.Equal(t, float64(fixed.Unix()), claims["iat"])
		})
	}
}

func TestGenerator_WrongSecretFailsVerification(t *testing.T) {
	t.Parallel()

	tokenStr, err := NewGenerator("right", time.Hour).GenerateToken(1, "a@b.c")
	require.NoError(t, err)

	_, err = jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte("wrong"), nil
	})
	assert.ErrorIs(t, err, jwt.ErrSignatureInvalid)
}
