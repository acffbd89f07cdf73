package shortener

import (
	"fmt"

	"github.com/jaevor/go-nanoid"
)

// Base62 is the alphabet short codes are drawn from.
const Base62 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// DefaultCodeLength is the length of generated codes when none is configured.
const DefaultCodeLength = 6

// NewCodeGenerator returns a generator of random base62 codes of the given length.
func NewCodeGenerator(length int) (CodeGenerator, error) {
	if length <= 0 {
		length = DefaultCodeLength
	}

	gen, err := nanoid.CustomASCII(Base62, length)
	if err != nil {
		return nil, fmt.Errorf("code generator: %w", err)
	}

	return CodeGenerator(gen), nil
}
