// Package uuid generates export run ids and request ids.
package uuid

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/JakeFAU/dinodash/internal/dataset"
)

var _ dataset.IDGenerator = Generator{}

// Generator creates UUID strings.
type Generator struct{}

// New creates a new Generator.
func New() Generator {
	return Generator{}
}

// NewID returns a UUIDv7 string. Run ids sort by creation time, so export
// prefixes list in run order.
func (Generator) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid7: %w", err)
	}
	return id.String(), nil
}

// RequestID returns a random UUIDv4 string for tagging HTTP requests.
func (Generator) RequestID() string {
	return uuid.NewString()
}
