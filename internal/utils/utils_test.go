package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-zettelkasten/internal/config"
)

func TestGenerateToken(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Expiration = "1h"

	tokenString, err := GenerateToken(42, cfg)
	require.NoError(t, err)

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWT.Secret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(42), claims["user_id"])
	assert.NotZero(t, claims["exp"])
}

func TestGenerateToken_badExpirationFallsBack(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Expiration = "not-a-duration"

	tokenString, err := GenerateToken(1, cfg)
	require.NoError(t, err)
	assert.NotEmpty(t, tokenString)
}

func TestParseIntOption(t *testing.T) {
	assert.Equal(t, 0, ParseIntOption(""))
	assert.Equal(t, 0, ParseIntOption("abc"))
	assert.Equal(t, 12, ParseIntOption("12"))
	assert.Equal(t, -3, ParseIntOption("-3"))
}
