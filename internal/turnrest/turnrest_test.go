package turnrest

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeneratorValidation(t *testing.T) {
	_, err := NewGenerator("", time.Hour)
	assert.Error(t, err)

	_, err = NewGenerator("secret", 0)
	assert.Error(t, err)

	_, err = NewGenerator("secret", time.Hour)
	assert.NoError(t, err)
}

func TestCredentialsDeterministic(t *testing.T) {
	gen, err := NewGenerator("north-remembers", time.Hour)
	require.NoError(t, err)

	fixed := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	gen.now = func() time.Time { return fixed }

	creds, err := gen.Credentials("sess-1")
	require.NoError(t, err)

	wantExpiry := fixed.Add(time.Hour)
	assert.Equal(t, wantExpiry, creds.ExpiresAt)
	assert.Equal(t, "1773482400:sess-1", creds.Username)

	mac := hmac.New(sha1.New, []byte("north-remembers"))
	mac.Write([]byte(creds.Username))
	assert.Equal(t, base64.StdEncoding.EncodeToString(mac.Sum(nil)), creds.Credential)
}

func TestCredentialsRequireSession(t *testing.T) {
	gen, err := NewGenerator("secret", time.Hour)
	require.NoError(t, err)

	_, err = gen.Credentials("")
	assert.Error(t, err)
}
