package utils

import (
	"fmt"

	"github.com/jaevor/go-nanoid"
)

const idLength = 15

// IDGenerator produces prefixed random identifiers such as "DSP-V1StGXR8_Z5jdHi".
type IDGenerator struct {
	prefix string
	next   func() string
}

// NewIDGenerator returns a generator whose ids start with prefix followed by a dash.
func NewIDGenerator(prefix string) (*IDGenerator, error) {
	next, err := nanoid.Standard(idLength)
	if err != nil {
		return nil, fmt.Errorf("failed to create id generator: %w", err)
	}
	return &IDGenerator{prefix: prefix, next: next}, nil
}

func (g *IDGenerator) New() string {
	return g.prefix + "-" + g.next()
}
