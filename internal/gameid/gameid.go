// Package gameid generates sortable hand identifiers.
package gameid

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Generator creates hand ids. A nil reader uses crypto randomness.
type Generator struct {
	rand io.Reader
}

// NewGenerator creates a generator drawing random bits from r. Tests pass a
// seeded reader to get reproducible ids within a millisecond.
func NewGenerator(r io.Reader) *Generator {
	return &Generator{rand: r}
}

// Generate creates a new hand ID using UUIDv7 encoded as 26-character base32 string
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new hand ID from the generator's random source.
func (g *Generator) Generate() string {
	var (
		id  uuid.UUID
		err error
	)
	if g.rand != nil {
		id, err = uuid.NewV7FromReader(g.rand)
	} else {
		id, err = uuid.NewV7()
	}
	if err != nil {
		panic("failed to generate uuid: " + err.Error())
	}
	return encodeBase32(id)
}

// encodeBase32 encodes the 128 uuid bits, prefixed with two zero bits, as 26
// base32 characters. The prefix keeps the first character within 0-7.
func encodeBase32(id uuid.UUID) string {
	bit := func(i int) byte {
		if i < 2 {
			return 0
		}
		i -= 2
		return (id[i/8] >> (7 - i%8)) & 1
	}

	out := make([]byte, 26)
	for c := range out {
		var v byte
		for b := range 5 {
			v = v<<1 | bit(c*5+b)
		}
		out[c] = alphabet[v]
	}
	return string(out)
}

// Validate checks if a hand ID is valid (26 characters, valid base32)
func Validate(id string) error {
	if len(id) != 26 {
		return fmt.Errorf("hand ID must be exactly 26 characters, got %d", len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("hand ID first character must be 0-7, got %c", id[0])
	}
	for i, char := range id {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}
	return nil
}
