package token

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/blake2b"
)

// SignatureSize is the MAC length in bytes.
const SignatureSize = blake2b.Size256

var ErrEmptySecret = errors.New("signer: secret must not be empty")

// Signer computes and checks the keyed MAC binding a payload to its
// signature. It holds the current secret plus, during a rotation window,
// the previous one. Keys are read-only after construction; the Signer is
// safe for concurrent use.
type Signer struct {
	keys [][]byte // current first
}

// NewSigner builds a Signer from the current secret and an optional
// previous secret (empty slice or nil to disable). blake2b caps keys at
// 64 bytes, so oversized secrets are rejected here rather than at sign
// time.
func NewSigner(current, previous []byte) (*Signer, error) {
	if len(current) == 0 {
		return nil, ErrEmptySecret
	}
	keys := [][]byte{current}
	if len(previous) > 0 {
		keys = append(keys, previous)
	}
	for _, key := range keys {
		if _, err := blake2b.New256(key); err != nil {
			return nil, err
		}
	}
	return &Signer{keys: keys}, nil
}

func mac(key, payload []byte) []byte {
	h, _ := blake2b.New256(key) // key validated in NewSigner
	h.Write(payload)
	return h.Sum(nil)
}

// Sign computes the MAC over the canonical payload bytes with the current
// secret.
func (s *Signer) Sign(payloadBytes []byte) []byte {
	return mac(s.keys[0], payloadBytes)
}

// Verify recomputes the MAC and compares in constant time, trying the
// current secret first and then the rotation predecessor if configured.
// It returns false on any mismatch, including wrong-length signatures,
// and never panics on adversarial input.
func (s *Signer) Verify(payloadBytes, signature []byte) bool {
	for _, key := range s.keys {
		if subtle.ConstantTimeCompare(mac(key, payloadBytes), signature) == 1 {
			return true
		}
	}
	return false
}
