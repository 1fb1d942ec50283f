package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	domain "github.com/Matheuscfs/tgt-contratto-mvp/internal/entity"
)

// Signer authenticates payloads with a shared secret. One instance
// guards the provider webhook (raw body vs X-Signature header), a second
// one signs session metadata before it round-trips through the provider.
type Signer interface {
	Sign(payload []byte) string
	Verify(payload []byte, signature string) error
}

type hmacSigner struct {
	key []byte
}

func NewHMACSigner(key []byte) (Signer, error) {
	if len(key) < 16 {
		return nil, fmt.Errorf("hmac key must be at least 16 bytes, got %d", len(key))
	}
	return &hmacSigner{key: key}, nil
}

// Sign returns the hex-encoded HMAC-SHA256 of payload.
func (s *hmacSigner) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a hex-encoded HMAC-SHA256 signature in constant time.
func (s *hmacSigner) Verify(payload []byte, signature string) error {
	got, err := hex.DecodeString(signature)
	if err != nil {
		return domain.ErrInvalidSignature
	}
	mac := hmac.New(sha256.New, s.key)
	mac.Write(payload)
	if !hmac.Equal(mac.Sum(nil), got) {
		return domain.ErrInvalidSignature
	}
	return nil
}

var ErrMissingSecret = errors.New("missing shared secret")
