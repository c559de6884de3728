// Package statistics summarizes finished hands per seat in big blinds.
package statistics

import (
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/lox/pokertables/internal/game"
)

// BigPotBB is the pot size, in big blinds, from which a hand counts as a big
// pot.
const BigPotBB = 50

// HandResult is one seat's outcome of one hand.
type HandResult struct {
	NetBB          float64
	Position       int // clockwise distance from the dealer, 0 on the button
	WentToShowdown bool
	FinalPotSize   int // chips paid out
	BigBlind       int
	StreetReached  string
}

// Moments are the running sums behind a mean and variance.
type Moments struct {
	Hands  int
	SumBB  float64
	SumBB2 float64
}

func (m *Moments) add(bb float64) {
	m.Hands++
	m.SumBB += bb
	m.SumBB2 += bb * bb
}

// Mean is big blinds won per hand.
func (m Moments) Mean() float64 {
	if m.Hands == 0 {
		return 0
	}
	return m.SumBB / float64(m.Hands)
}

// Variance is the sample variance, zero below two hands.
func (m Moments) Variance() float64 {
	if m.Hands < 2 {
		return 0
	}
	mean := m.Mean()
	return (m.SumBB2 - float64(m.Hands)*mean*mean) / float64(m.Hands-1)
}

func (m Moments) StdDev() float64 {
	return math.Sqrt(m.Variance())
}

func (m Moments) StdError() float64 {
	if m.Hands == 0 {
		return 0
	}
	return m.StdDev() / math.Sqrt(float64(m.Hands))
}

// PositionStats are the moments for one position.
type PositionStats struct {
	Moments
}

// Statistics tracks one seat's results across hands.
type Statistics struct {
	Moments
	Values []float64 // every result, for percentiles

	// Won hands split by how they ended. The BB totals include losses.
	ShowdownWins    int
	NonShowdownWins int
	ShowdownBB      float64
	NonShowdownBB   float64
	AllBB           float64

	PositionResults map[int]*PositionStats

	MaxPotChips int
	MaxPotBB    float64
	BigPots     int // pots of at least BigPotBB
	BigPotsBB   float64
}

// BBPer100 is the conventional win rate.
func (s *Statistics) BBPer100() float64 {
	return s.Mean() * 100
}

// ConfidenceInterval95 bounds the mean per hand.
func (s *Statistics) ConfidenceInterval95() (lo, hi float64) {
	margin := 1.96 * s.StdError()
	return s.Mean() - margin, s.Mean() + margin
}

func (s *Statistics) Add(r HandResult) {
	bb := r.NetBB
	s.add(bb)
	s.Values = append(s.Values, bb)
	s.AllBB += bb

	switch {
	case r.WentToShowdown:
		s.ShowdownBB += bb
		if bb > 0 {
			s.ShowdownWins++
		}
	default:
		s.NonShowdownBB += bb
		if bb > 0 {
			s.NonShowdownWins++
		}
	}

	if s.PositionResults == nil {
		s.PositionResults = make(map[int]*PositionStats)
	}
	ps, ok := s.PositionResults[r.Position]
	if !ok {
		ps = &PositionStats{}
		s.PositionResults[r.Position] = ps
	}
	ps.add(bb)

	var potBB float64
	if r.BigBlind > 0 {
		potBB = float64(r.FinalPotSize) / float64(r.BigBlind)
	}
	if r.FinalPotSize > s.MaxPotChips {
		s.MaxPotChips, s.MaxPotBB = r.FinalPotSize, potBB
	}
	if potBB >= BigPotBB {
		s.BigPots++
		s.BigPotsBB += bb
	}
}

func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile interpolates linearly between recorded results, p in [0, 1].
func (s *Statistics) Percentile(p float64) float64 {
	n := len(s.Values)
	if n == 0 {
		return 0
	}
	sorted := slices.Clone(s.Values)
	slices.Sort(sorted)

	pos := p * float64(n-1)
	i := int(pos)
	if i+1 >= n {
		return sorted[n-1]
	}
	frac := pos - float64(i)
	return sorted[i] + (sorted[i+1]-sorted[i])*frac
}

// PositionMean is the mean for a clockwise distance from the dealer.
func (s *Statistics) PositionMean(position int) float64 {
	if ps, ok := s.PositionResults[position]; ok {
		return ps.Mean()
	}
	return 0
}

// IsLedgerBalanced reports whether showdown and non-showdown results add up
// to the total.
func (s *Statistics) IsLedgerBalanced() bool {
	return math.Abs(s.AllBB-s.ShowdownBB-s.NonShowdownBB) <= 1e-6
}

// Validate cross-checks the counters against each other.
func (s *Statistics) Validate() error {
	if s.Hands <= 0 {
		return fmt.Errorf("no hands recorded (%d)", s.Hands)
	}
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("unbalanced: %.6f total vs %.6f showdown + %.6f non-showdown",
			s.AllBB, s.ShowdownBB, s.NonShowdownBB)
	}
	if len(s.Values) != s.Hands {
		return fmt.Errorf("%d values recorded for %d hands", len(s.Values), s.Hands)
	}
	if wins := s.ShowdownWins + s.NonShowdownWins; wins > s.Hands {
		return fmt.Errorf("%d wins in %d hands", wins, s.Hands)
	}
	var byPosition int
	for _, ps := range s.PositionResults {
		byPosition += ps.Hands
	}
	if byPosition != s.Hands {
		return fmt.Errorf("%d hands by position for %d hands", byPosition, s.Hands)
	}
	return nil
}

// Results splits a finished hand into one result per dealt-in seat.
func Results(rec game.HandRecord) map[int]HandResult {
	pot := 0
	for _, p := range rec.Payouts {
		pot += p.Amount
	}
	street := ""
	if len(rec.Actions) > 0 {
		street = rec.Actions[len(rec.Actions)-1].Stage
	}
	if n := len(rec.Reveals); n > 0 && rec.Reveals[n-1].After >= len(rec.Actions) {
		street = rec.Reveals[n-1].Stage
	}

	n := max(rec.MaxSeats, 1)
	out := make(map[int]HandResult, len(rec.Seats))
	for _, s := range rec.Seats {
		net := s.FinishingStack - s.StartingStack
		out[s.ID] = HandResult{
			NetBB:          float64(net) / float64(max(rec.BigBlind, 1)),
			Position:       ((s.ID-rec.Dealer)%n + n) % n,
			WentToShowdown: s.Shown,
			FinalPotSize:   pot,
			BigBlind:       rec.BigBlind,
			StreetReached:  street,
		}
	}
	return out
}

// SeatSummary is a named seat's statistics.
type SeatSummary struct {
	Seat  int
	Name  string
	Stats *Statistics
}

// Collector accumulates per-seat statistics. It implements game.Recorder and
// is safe for concurrent use.
type Collector struct {
	mu    sync.Mutex
	seats map[int]*SeatSummary
	hands int
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{seats: make(map[int]*SeatSummary)}
}

// RecordHand implements game.Recorder.
func (c *Collector) RecordHand(rec game.HandRecord) error {
	results := Results(rec)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.hands++
	for _, s := range rec.Seats {
		sum := c.seats[s.ID]
		if sum == nil {
			sum = &SeatSummary{Seat: s.ID, Stats: &Statistics{}}
			c.seats[s.ID] = sum
		}
		sum.Name = s.Name
		sum.Stats.Add(results[s.ID])
	}
	return nil
}

// Hands returns the number of hands recorded.
func (c *Collector) Hands() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hands
}

// Seats returns a copy of every seat's summary, best win rate first.
func (c *Collector) Seats() []SeatSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]SeatSummary, 0, len(c.seats))
	for _, s := range c.seats {
		stats := *s.Stats
		stats.Values = slices.Clone(s.Stats.Values)
		stats.PositionResults = make(map[int]*PositionStats, len(s.Stats.PositionResults))
		for k, v := range s.Stats.PositionResults {
			p := *v
			stats.PositionResults[k] = &p
		}
		out = append(out, SeatSummary{Seat: s.Seat, Name: s.Name, Stats: &stats})
	}
	slices.SortFunc(out, func(a, b SeatSummary) int {
		if d := b.Stats.SumBB - a.Stats.SumBB; d != 0 {
			if d > 0 {
				return 1
			}
			return -1
		}
		return a.Seat - b.Seat
	})
	return out
}
