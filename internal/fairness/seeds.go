package fairness

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateServerSeed returns the secret seed committed at round creation,
// before any participant is known. That ordering is the fairness anchor.
func GenerateServerSeed() (string, error) {
	return randomHex(32)
}

// GenerateClientSeed returns the seed fixed at resolution time.
func GenerateClientSeed() (string, error) {
	return randomHex(16)
}

// RoundNonce derives the per-round nonce from the round identity, so the
// nonce is reproducible by anyone holding the public round id.
func RoundNonce(roundID string) string {
	sum := sha256.Sum256([]byte("round:" + roundID))
	return hex.EncodeToString(sum[:8])
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read entropy: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
