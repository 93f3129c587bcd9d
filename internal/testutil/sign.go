package testutil

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

// GenerateSigningKeys returns a keypair in place of the platform's
// application key.
func GenerateSigningKeys(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return public, private
}

// SignInteraction produces the hex signature of `timestamp || body` the way
// the platform does.
func SignInteraction(private ed25519.PrivateKey, timestamp string, body []byte) string {
	signed := append([]byte(timestamp), body...)
	return hex.EncodeToString(ed25519.Sign(private, signed))
}
