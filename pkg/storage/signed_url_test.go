package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", time.Hour)

	token, expiresAt, err := signer.Generate("export-1", "certificates/ATB-2025-000123.pdf")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	exportID, relPath, _, err := signer.Parse(token, false)
	require.NoError(t, err)
	assert.Equal(t, "export-1", exportID)
	assert.Equal(t, "certificates/ATB-2025-000123.pdf", relPath)
}

func TestSignedURLRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", time.Hour)

	token, _, err := signer.Generate("export-1", "certificates/a.pdf")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token+"x", false)
	assert.Error(t, err)

	other := NewSignedURLSigner("other-secret", time.Hour)
	_, _, _, err = other.Parse(token, false)
	assert.Error(t, err)
}

// signToken builds a token with an arbitrary expiry using the same
// payload scheme Generate uses.
func signToken(secret, exportID, relPath string, expiresAt time.Time) string {
	encodedPath := base64.RawURLEncoding.EncodeToString([]byte(relPath))
	payload := fmt.Sprintf("%s|%d|%s", exportID, expiresAt.Unix(), encodedPath)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return fmt.Sprintf("%s.%d.%s.%s", exportID, expiresAt.Unix(), encodedPath, hex.EncodeToString(mac.Sum(nil)))
}

func TestSignedURLExpiry(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", time.Hour)
	token := signToken("test-secret", "export-1", "certificates/a.pdf", time.Now().Add(-time.Minute))

	_, _, _, err := signer.Parse(token, false)
	assert.Error(t, err)

	exportID, relPath, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	assert.Equal(t, "export-1", exportID)
	assert.Equal(t, "certificates/a.pdf", relPath)
}

func TestSignedURLDefaultTTL(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", -time.Minute)
	assert.Equal(t, 24*time.Hour, signer.ttl)

	_, expiresAt, err := signer.Generate("export-1", "certificates/a.pdf")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now().Add(23*time.Hour)))
}
