package token

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSigner_Validation(t *testing.T) {
	_, err := NewSigner(nil, nil)
	assert.ErrorIs(t, err, ErrEmptySecret)

	_, err = NewSigner([]byte{}, nil)
	assert.ErrorIs(t, err, ErrEmptySecret)

	// blake2b caps keys at 64 bytes
	_, err = NewSigner(bytes.Repeat([]byte("k"), 65), nil)
	assert.Error(t, err)

	_, err = NewSigner([]byte("current"), bytes.Repeat([]byte("p"), 65))
	assert.Error(t, err)

	signer, err := NewSigner([]byte("current"), nil)
	require.NoError(t, err)
	assert.NotNil(t, signer)
}

func TestSigner_SignVerify(t *testing.T) {
	signer, err := NewSigner([]byte("gate-secret"), nil)
	require.NoError(t, err)

	payload := []byte(`{"ticket_id":"tkt","event_id":"evt","issued_at":1,"nonce":"n"}`)
	signature := signer.Sign(payload)

	assert.Len(t, signature, SignatureSize)
	assert.True(t, signer.Verify(payload, signature))

	// deterministic: same payload, same MAC
	assert.Equal(t, signature, signer.Sign(payload))
}

func TestSigner_Verify_Mismatches(t *testing.T) {
	signer, err := NewSigner([]byte("gate-secret"), nil)
	require.NoError(t, err)

	payload := []byte("payload bytes")
	signature := signer.Sign(payload)

	t.Run("flipped payload bit", func(t *testing.T) {
		tampered := append([]byte(nil), payload...)
		tampered[0] ^= 0x01
		assert.False(t, signer.Verify(tampered, signature))
	})

	t.Run("flipped signature bit", func(t *testing.T) {
		tampered := append([]byte(nil), signature...)
		tampered[len(tampered)-1] ^= 0x80
		assert.False(t, signer.Verify(payload, tampered))
	})

	t.Run("truncated signature", func(t *testing.T) {
		assert.False(t, signer.Verify(payload, signature[:len(signature)-1]))
	})

	t.Run("empty signature", func(t *testing.T) {
		assert.False(t, signer.Verify(payload, nil))
	})

	t.Run("wrong key", func(t *testing.T) {
		other, err := NewSigner([]byte("another-secret"), nil)
		require.NoError(t, err)
		assert.False(t, other.Verify(payload, signature))
	})
}

func TestSigner_RotationWindow(t *testing.T) {
	oldSigner, err := NewSigner([]byte("old-secret"), nil)
	require.NoError(t, err)

	payload := []byte("minted under the old secret")
	oldSignature := oldSigner.Sign(payload)

	rotated, err := NewSigner([]byte("new-secret"), []byte("old-secret"))
	require.NoError(t, err)

	// still verifies during the rotation window
	assert.True(t, rotated.Verify(payload, oldSignature))

	// new signatures come from the current secret only
	newSignature := rotated.Sign(payload)
	assert.NotEqual(t, oldSignature, newSignature)
	assert.True(t, rotated.Verify(payload, newSignature))
	assert.False(t, oldSigner.Verify(payload, newSignature))

	// once the window closes, old signatures stop verifying
	closed, err := NewSigner([]byte("new-secret"), nil)
	require.NoError(t, err)
	assert.False(t, closed.Verify(payload, oldSignature))
}
