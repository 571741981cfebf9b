package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/gomarket/internal/config"
)

func TestTokenRoundTrip(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "test-secret", TokenTTLMinutes: 60}

	token, err := GenerateToken(cfg, 42, "vendedor")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ParseToken(cfg, token)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "vendedor", claims.Role)
}

func TestParseTokenWrongSecret(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "test-secret", TokenTTLMinutes: 60}
	token, err := GenerateToken(cfg, 42, "user")
	assert.NoError(t, err)

	_, err = ParseToken(&config.JWTConfig{Secret: "other-secret"}, token)
	assert.Error(t, err)
}

func TestParseTokenGarbage(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "test-secret", TokenTTLMinutes: 60}
	_, err := ParseToken(cfg, "not-a-token")
	assert.Error(t, err)
}
