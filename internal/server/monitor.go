package server

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/pokertables/internal/game"
)

// Recorders fans a finished hand out to several recorders. Every recorder
// runs; the first error is returned.
type Recorders []game.Recorder

// NewRecorders builds a composite recorder, pruning nil entries.
func NewRecorders(recorders ...game.Recorder) game.Recorder {
	filtered := make(Recorders, 0, len(recorders))
	for _, r := range recorders {
		if r != nil {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return filtered
}

func (rs Recorders) RecordHand(rec game.HandRecord) error {
	var first error
	for _, r := range rs {
		if err := r.RecordHand(rec); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ListMonitor writes one line per finished hand: the hand, its winner(s)
// and the big blinds they won.
type ListMonitor struct {
	writer io.Writer
	mu     sync.Mutex
	hands  int
}

// NewListMonitor creates a new list monitor.
func NewListMonitor(writer io.Writer) *ListMonitor {
	return &ListMonitor{writer: writer}
}

// RecordHand implements game.Recorder.
func (l *ListMonitor) RecordHand(rec game.HandRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hands++

	var winners []string
	maxWin := 0
	for _, s := range rec.Seats {
		if net := s.FinishingStack - s.StartingStack; net > 0 {
			winners = append(winners, s.Name)
			maxWin = max(maxWin, net)
		}
	}
	winnersStr := "<none>"
	if len(winners) > 0 {
		winnersStr = strings.Join(winners, ", ")
	}
	hand := ""
	if len(rec.Payouts) > 0 && rec.Payouts[0].Hand != "" {
		hand = rec.Payouts[0].Hand
	}
	bbWon := float64(maxWin) / float64(max(rec.BigBlind, 1))
	_, err := fmt.Fprintf(l.writer, "%-8s #%-5d %-30s %+7.1f bb  %s\n", rec.TableID, rec.HandNumber, winnersStr, bbWon, hand)
	return err
}

// LogMonitor logs each finished hand at info level.
type LogMonitor struct {
	logger *log.Logger
}

// NewLogMonitor creates a monitor that writes to logger.
func NewLogMonitor(logger *log.Logger) *LogMonitor {
	return &LogMonitor{logger: logger.WithPrefix("hands")}
}

// RecordHand implements game.Recorder.
func (m *LogMonitor) RecordHand(rec game.HandRecord) error {
	pot := 0
	winners := make([]string, 0, len(rec.Payouts))
	for _, p := range rec.Payouts {
		pot += p.Amount
		if s, ok := rec.Seat(p.Seat); ok {
			winners = append(winners, s.Name)
		}
	}
	m.logger.Info("Hand complete",
		"table", rec.TableID,
		"hand", rec.HandNumber,
		"hand_id", rec.HandID,
		"pot", pot,
		"winners", strings.Join(winners, ","),
		"actions", len(rec.Actions))
	return nil
}
