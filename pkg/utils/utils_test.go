package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(testKey, "7", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(testKey, token)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.UserID)
	assert.Equal(t, "postflow", claims.Issuer)
}

func TestValidateTokenRejectsWrongKeyAndExpiry(t *testing.T) {
	token, err := GenerateToken(testKey, "7", time.Hour)
	require.NoError(t, err)
	_, err = ValidateToken("another-secret-key-of-32-bytes!!", token)
	assert.Error(t, err)

	expired, err := GenerateToken(testKey, "7", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken(testKey, expired)
	assert.Error(t, err)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	sealed, err := Encrypt([]byte("bot-token"), []byte(testKey))
	require.NoError(t, err)
	assert.NotContains(t, sealed, "bot-token")

	plaintext, err := Decrypt(sealed, []byte(testKey))
	require.NoError(t, err)
	assert.Equal(t, "bot-token", plaintext)
}

func TestDecryptRejectsTamperedData(t *testing.T) {
	_, err := Decrypt("not base64!!", []byte(testKey))
	assert.Error(t, err)

	_, err = Decrypt("c2hvcnQ=", []byte(testKey))
	assert.Error(t, err)
}
