// Package tokencodec mints and shape-checks the opaque upload capability
// strings embedded in guest links. The wire format is fixed:
// 64 lowercase hex characters, a dot, 16 lowercase hex characters.
//
// The 16-char suffix is an HMAC-SHA256 over the minting payload, so tokens
// cannot be fabricated by concatenating random hex. Admission does not
// re-derive the signature: the payload is not recoverable from the token
// alone, so the effective trust boundary is the shape check plus an
// exact-match lookup of the literal string in the metadata store.
package tokencodec

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	idLen  = 64
	sigLen = 16
)

// Payload is the signed minting descriptor.
type Payload struct {
	UserID   uuid.UUID
	Name     string
	IssuedAt time.Time
}

type signedPayload struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Timestamp int64  `json:"timestamp"`
	Name      string `json:"name"`
}

// Mint produces a fresh token string for the payload. The identifier part
// is 32 cryptographically random bytes, hex encoded.
func Mint(secret []byte, p Payload) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	id := hex.EncodeToString(raw)

	canonical, err := json.Marshal(signedPayload{
		ID:        id,
		UserID:    p.UserID.String(),
		Timestamp: p.IssuedAt.Unix(),
		Name:      p.Name,
	})
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(canonical)
	sig := hex.EncodeToString(mac.Sum(nil))[:sigLen]

	return id + "." + sig, nil
}

// VerifyShape performs the structural check only: two dot-separated hex
// segments of lengths 64 and 16. It deliberately does not verify the
// signature; callers must follow up with a store lookup of the literal
// string.
func VerifyShape(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return false
	}
	return isHex(parts[0], idLen) && isHex(parts[1], sigLen)
}

func isHex(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
