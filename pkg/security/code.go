package security

import (
	"errors"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// CodeAlphabet leaves out characters that are easy to confuse when a code is
// read from an SMS (0/O, 1/I).
const CodeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

const defaultCodeLength = 8

var ErrCodeLength = errors.New("code length must be between 4 and 32")

type CodeGenerator struct {
	Alphabet string
	Length   int
}

func NewCodeGenerator(length int) (*CodeGenerator, error) {
	if length == 0 {
		length = defaultCodeLength
	}

	if length < 4 || length > 32 {
		return nil, ErrCodeLength
	}

	return &CodeGenerator{
		Alphabet: CodeAlphabet,
		Length:   length,
	}, nil
}

// Generate returns a new code drawn from crypto/rand.
func (g *CodeGenerator) Generate() (string, error) {
	return gonanoid.Generate(g.Alphabet, g.Length)
}
