package tokencodec

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func mintTestToken(t *testing.T) string {
	t.Helper()
	tok, err := Mint(testSecret, Payload{
		UserID:   uuid.New(),
		Name:     "wedding",
		IssuedAt: time.Now(),
	})
	require.NoError(t, err)
	return tok
}

func TestMint_Format(t *testing.T) {
	tok := mintTestToken(t)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 2)
	assert.Len(t, parts[0], 64)
	assert.Len(t, parts[1], 16)
	assert.Equal(t, strings.ToLower(tok), tok)
}

func TestMint_Unique(t *testing.T) {
	a := mintTestToken(t)
	b := mintTestToken(t)
	assert.NotEqual(t, a, b)
}

func TestVerifyShape_RoundTrip(t *testing.T) {
	tok := mintTestToken(t)
	assert.True(t, VerifyShape(tok))
}

// A single-character mutation that preserves segment lengths still passes
// the shape check. That is the documented limitation of shape-only
// validation: forgery defense comes from the exact-match store lookup, not
// from this function.
func TestVerifyShape_MutationStillPasses(t *testing.T) {
	tok := mintTestToken(t)

	mutate := func(s string, i int) string {
		b := []byte(s)
		if b[i] == 'a' {
			b[i] = 'b'
		} else {
			b[i] = 'a'
		}
		return string(b)
	}

	assert.True(t, VerifyShape(mutate(tok, 0)), "mutated id segment")
	assert.True(t, VerifyShape(mutate(tok, 70)), "mutated signature segment")
}

func TestVerifyShape_Rejects(t *testing.T) {
	tok := mintTestToken(t)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no separator", strings.ReplaceAll(tok, ".", "")},
		{"extra separator", tok + ".ff"},
		{"short id", tok[1:]},
		{"short signature", tok[:len(tok)-1]},
		{"non-hex id", "Z" + tok[1:]},
		{"uppercase hex", strings.ToUpper(tok)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, VerifyShape(tt.token))
		})
	}
}
