// Package sha256 computes the digests used as export ETags.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/JakeFAU/dinodash/internal/dataset"
)

var _ dataset.Hasher = (*Hasher)(nil)

// Hasher implements dataset.Hasher using SHA-256.
type Hasher struct{}

// New returns a SHA-256 hasher.
func New() *Hasher {
	return &Hasher{}
}

// Hash hashes the input and returns a hex digest.
func (h *Hasher) Hash(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// ETag returns a strong entity tag for data.
func (h *Hasher) ETag(data []byte) string {
	digest, _ := h.Hash(data)
	return `"` + digest + `"`
}
