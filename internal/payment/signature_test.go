package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignatureVerifier(t *testing.T) {
	body := []byte(`{"data":{"id":"kk_abc123","reference":"ord_001","status":"SUCCESS"},"event_type":"transaction.success"}`)
	secret := []byte("whsec")
	good := Sign(secret, body)

	v := NewSignatureVerifier("whsec")
	assert.NoError(t, v.Verify(body, good))
	assert.NoError(t, v.Verify(body, "  "+string(upper(good))+" "), "hex case and padding are ignored")
	assert.ErrorIs(t, v.Verify(body, ""), ErrMissingSignature)
	assert.ErrorIs(t, v.Verify(append(body, ' '), good), ErrSignatureMismatch)
	assert.ErrorIs(t, v.Verify(body, Sign([]byte("other"), body)), ErrSignatureMismatch)

	assert.ErrorIs(t, NewSignatureVerifier("").Verify(body, good), ErrSecretNotConfigured)
}

func upper(s string) []byte {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'f' {
			b[i] = c - 'a' + 'A'
		}
	}
	return b
}
