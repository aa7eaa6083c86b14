package secure

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCipher(t *testing.T) *Cipher {
	t.Helper()
	c, err := NewCipher(bytes.Repeat([]byte{7}, 32))
	require.NoError(t, err)
	return c
}

func TestEncryptDecrypt(t *testing.T) {
	c := newTestCipher(t)

	token, err := c.Encrypt("ABC 1234")
	require.NoError(t, err)
	assert.NotContains(t, token, "ABC")

	plain, err := c.Decrypt(token)
	require.NoError(t, err)
	assert.Equal(t, "ABC 1234", plain)
}

func TestRevealCorruptedYieldsNil(t *testing.T) {
	c := newTestCipher(t)

	token, err := c.Encrypt("09171234567")
	require.NoError(t, err)
	tampered := token[:len(token)-4] + "AAAA"

	assert.Nil(t, c.Reveal(&tampered))

	garbage := "not base64 at all!"
	assert.Nil(t, c.Reveal(&garbage))
	assert.Nil(t, c.Reveal(nil))

	revealed := c.Reveal(&token)
	require.NotNil(t, revealed)
	assert.Equal(t, "09171234567", *revealed)
}

func TestRevealWithWrongKey(t *testing.T) {
	sealed, err := newTestCipher(t).Seal("D01-23-456789")
	require.NoError(t, err)

	other, err := NewCipher(bytes.Repeat([]byte{9}, 32))
	require.NoError(t, err)
	assert.Nil(t, other.Reveal(sealed))
}

func TestNewCipherRejectsShortKey(t *testing.T) {
	_, err := NewCipher([]byte("short"))
	assert.Error(t, err)
}
