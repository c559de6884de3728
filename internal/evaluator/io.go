package evaluator

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/lox/pokertables/internal/fileutil"
	"github.com/lox/pokertables/poker"
)

const writeChunk = 4096

// WriteTo writes the table as little-endian uint32 values.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, 4*writeChunk)
	var total int64
	for i := 0; i < len(t.ranks); i += writeChunk {
		chunk := t.ranks[i:min(i+writeChunk, len(t.ranks))]
		b := buf[:4*len(chunk)]
		for j, v := range chunk {
			binary.LittleEndian.PutUint32(b[4*j:], v)
		}
		n, err := w.Write(b)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Save writes the table to path atomically.
func (t *Table) Save(path string) error {
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		_, err := t.WriteTo(w)
		return err
	})
}

// Read decodes and verifies a table written by WriteTo.
func Read(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read hand rank table: %w", err)
	}
	return decode(data)
}

// Load reads and verifies the hand rank table at path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hand rank table: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat hand rank table: %w", err)
	}

	data := make([]byte, info.Size())
	if _, err := io.ReadFull(bufio.NewReaderSize(f, 1<<20), data); err != nil {
		return nil, fmt.Errorf("read hand rank table: %w", err)
	}
	t, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func decode(data []byte) (*Table, error) {
	if len(data)%4 != 0 || len(data) < 4*(rootState+stride) {
		return nil, fmt.Errorf("%w: unexpected size %d bytes", ErrCorruptTable, len(data))
	}
	ranks := make([]uint32, len(data)/4)
	for i := range ranks {
		ranks[i] = binary.LittleEndian.Uint32(data[4*i:])
	}
	t := &Table{ranks: ranks}
	if err := t.Verify(); err != nil {
		return nil, err
	}
	return t, nil
}

// knownHands pins the value of a few hands in each hand size so a truncated
// or scrambled table is caught at load time.
var knownHands = []struct {
	cards    string
	category Category
	rank     uint16
}{
	{"AsKsQsJsTs9h8h", StraightFlush, 10},
	{"5c4c3c2cAc9d", StraightFlush, 1},
	{"AsAhAdAcKs", FourOfAKind, 156},
	{"2s2h2d2c3s4h5d", FourOfAKind, 3},
	{"7c5d4h3s2c", HighCard, 1},
	{"AsKsQsJs9d8d", HighCard, 1277},
	{"KhKdKc7s7d2h", FullHouse, 138},
	{"2c2d2h", ThreeOfAKind, 1},
	{"AcAdAh", ThreeOfAKind, 13},
	{"AcKdQh", HighCard, 286},
	{"3c2d2h", OnePair, 1},
}

// Verify evaluates known hands and reports ErrCorruptTable on any mismatch.
func (t *Table) Verify() error {
	for _, h := range knownHands {
		cards, err := poker.ParseCards(h.cards)
		if err != nil {
			return err
		}
		e, err := t.Evaluate(cards)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrCorruptTable, h.cards, err)
		}
		if e.Category != h.category || e.Rank != h.rank {
			return fmt.Errorf("%w: %s evaluated to %s, want %s (%d)", ErrCorruptTable, h.cards, e, h.category, h.rank)
		}
	}
	return nil
}
