package phh

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lox/pokertables/internal/game"
)

// Encode writes the hand history to the provided writer in PHH TOML format.
func Encode(w io.Writer, hand *HandHistory) error {
	if hand == nil {
		return fmt.Errorf("phh: hand history is nil")
	}

	enc := toml.NewEncoder(w)
	// Use tabs for arrays to match human expectations
	enc.Indent = "\t"
	return enc.Encode(hand)
}

// EncodeToBytes encodes and returns the result as bytes.
func EncodeToBytes(hand *HandHistory) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, hand); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads one hand history.
func Decode(r io.Reader) (*HandHistory, error) {
	var h HandHistory
	if _, err := toml.NewDecoder(r).Decode(&h); err != nil {
		return nil, fmt.Errorf("phh: decode: %w", err)
	}
	for _, line := range h.Actions {
		body, _ := splitComment(line)
		fields := strings.Fields(body)
		if len(fields) == 3 && fields[0] == "d" && fields[1] == "db" {
			cards, err := parseCards(fields[2])
			if err != nil {
				return nil, err
			}
			for _, c := range cards {
				h.Board = append(h.Board, c.String())
			}
		}
	}
	parseTimeFields(&h)
	return &h, nil
}

// ReadFile decodes the hand history stored at path.
func ReadFile(path string) (*HandHistory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// FormatAction renders a recorded action for player pN (1-based). Raises
// carry the seat's round total, as PHH's cbr does. Timeouts and departures
// are folds with a comment.
func FormatAction(player int, a game.RecordedAction) string {
	p := fmt.Sprintf("p%d", player)
	switch a.Kind {
	case game.Fold:
		switch {
		case a.Timeout:
			return p + " f # timeout"
		case a.Leave:
			return p + " f # leave"
		}
		return p + " f"
	case game.CheckOrCall:
		return p + " cc"
	case game.Raise:
		return fmt.Sprintf("%s cbr %d", p, a.Total)
	case game.Special:
		return p + " sm"
	}
	return fmt.Sprintf("# %s %s %d", p, a.Kind, a.Total)
}

func splitComment(line string) (body, comment string) {
	body, comment, _ = strings.Cut(line, "#")
	return strings.TrimSpace(body), strings.TrimSpace(comment)
}
