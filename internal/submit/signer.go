package submit

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"
)

// Signer authenticates outbound submissions with HMAC-SHA256.
// It stores keys as []byte so they can be wiped after the run.
type Signer struct {
	wallet    []byte
	secretKey []byte
}

// NewSigner creates a new signer.
// It converts string inputs to []byte for internal safety.
func NewSigner(wallet, secretKey string) *Signer {
	return &Signer{
		wallet:    []byte(wallet),
		secretKey: []byte(secretKey),
	}
}

// Wipe clears the keys from memory.
func (s *Signer) Wipe() {
	if s == nil {
		return
	}
	s.wipeSlice(s.wallet)
	s.wipeSlice(s.secretKey)
}

func (s *Signer) wipeSlice(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// GenerateHeaders creates the authentication headers for one request.
// The signed payload is timestamp + method + path + body.
func (s *Signer) GenerateHeaders(method, path, body string) map[string]string {
	timestamp := fmt.Sprintf("%d", time.Now().UnixMilli())

	payload := timestamp + method + path + body
	signature := s.computeHmacSha256(payload)

	return map[string]string{
		"X-TXBOT-WALLET":    string(s.wallet),
		"X-TXBOT-SIGN":      signature,
		"X-TXBOT-TIMESTAMP": timestamp,
		"Content-Type":      "application/json",
	}
}

func (s *Signer) computeHmacSha256(payload string) string {
	mac := hmac.New(sha256.New, s.secretKey)
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
