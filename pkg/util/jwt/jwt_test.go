package jwt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	Init("unit-test-secret-unit-test-secret", 5)

	token, err := GenerateAccessToken("U1")
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "U1", claims.UserID)
	require.True(t, claims.IsAccessToken())
}

func TestParseRejectsForeignSecret(t *testing.T) {
	Init("first-secret-first-secret-first!!", 5)
	token, err := GenerateAccessToken("U1")
	require.NoError(t, err)

	Init("second-secret-second-secret-second", 5)
	_, err = ParseToken(token)
	require.Error(t, err)
}
