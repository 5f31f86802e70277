package token

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// Payload holds the signed claims embedded in a scannable ticket string.
// Field order is fixed: the canonical serialization must be stable so the
// same payload always produces the same MAC input.
type Payload struct {
	TicketID string `json:"ticket_id"`
	EventID  string `json:"event_id"`
	IssuedAt int64  `json:"issued_at"` // epoch seconds
	Nonce    string `json:"nonce"`
}

// CanonicalBytes returns the byte serialization the MAC is computed over.
func (p Payload) CanonicalBytes() ([]byte, error) {
	return json.Marshal(p)
}

// Token is a decoded transport string. PayloadBytes are the raw bytes as
// transmitted; signature verification runs over these, not over a
// re-serialization.
type Token struct {
	Payload      Payload
	PayloadBytes []byte
	Signature    []byte
}

// ParseError reports an unparseable transport string. Callers classify it
// as a bad-format rejection; it never reaches the store layer.
type ParseError struct {
	Cause string
}

func (e *ParseError) Error() string {
	return "token parse: " + e.Cause
}

var b64 = base64.RawURLEncoding

// Encode renders a transport string of the form
// base64url(payloadBytes).base64url(signature).
func Encode(payloadBytes, signature []byte) string {
	return b64.EncodeToString(payloadBytes) + "." + b64.EncodeToString(signature)
}

// Decode parses a scanned or typed transport string. It performs no
// network or store access and returns *ParseError on any malformed input,
// including truncated strings and padding characters.
func Decode(raw string) (*Token, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 2 {
		return nil, &ParseError{Cause: "expected exactly one separator"}
	}
	if parts[0] == "" || parts[1] == "" {
		return nil, &ParseError{Cause: "empty segment"}
	}

	payloadBytes, err := b64.DecodeString(parts[0])
	if err != nil {
		return nil, &ParseError{Cause: "payload segment is not base64url"}
	}

	signature, err := b64.DecodeString(parts[1])
	if err != nil {
		return nil, &ParseError{Cause: "signature segment is not base64url"}
	}

	var payload Payload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		return nil, &ParseError{Cause: "payload is not a valid claim set"}
	}

	if payload.TicketID == "" || payload.EventID == "" {
		return nil, &ParseError{Cause: "missing ticket or event claim"}
	}
	if payload.IssuedAt <= 0 {
		return nil, &ParseError{Cause: "missing issued-at claim"}
	}
	if payload.Nonce == "" {
		return nil, &ParseError{Cause: "missing nonce claim"}
	}

	return &Token{
		Payload:      payload,
		PayloadBytes: payloadBytes,
		Signature:    signature,
	}, nil
}
