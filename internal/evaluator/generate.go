package evaluator

import (
	"math/bits"
	"slices"

	"github.com/lox/pokertables/poker"
)

// estimatedStates is the number of distinct canonical states holding up to
// six cards. It only sizes the initial allocation.
const estimatedStates = 612978

// Generate builds the hand rank table from first principles. It takes a few
// seconds and around 130MB, so servers load a saved copy instead (see Load).
//
// States are keyed by their cards packed one per byte, (rank+1)<<4|(suit+1),
// sorted descending. Suits that can no longer make a flush are cleared to
// zero so equivalent holdings share a state.
func Generate() *Table {
	keys := make([]uint64, 1, estimatedStates)
	sizes := make([]uint8, 1, estimatedStates)
	index := make(map[uint64]uint32, estimatedStates)
	index[0] = 0

	ranks := make([]uint32, rootState, rootState+estimatedStates*stride)
	var empty [stride]uint32

	for i := 0; i < len(keys); i++ {
		key, n := keys[i], sizes[i]
		base := len(ranks)
		ranks = append(ranks, empty[:]...)

		if n == 3 || n == 5 || n == 6 {
			ranks[base] = scoreKey(key)
		}

		for c := poker.Card(1); c <= poker.NumCards; c++ {
			next, m, ok := addCard(key, c)
			if !ok {
				continue
			}
			if m == 7 {
				ranks[base+int(c)] = scoreKey(next)
				continue
			}
			j, known := index[next]
			if !known {
				j = uint32(len(keys))
				index[next] = j
				keys = append(keys, next)
				sizes = append(sizes, uint8(m))
			}
			ranks[base+int(c)] = rootState + j*stride
		}
	}

	return &Table{ranks: ranks}
}

func cardByte(c poker.Card) byte {
	return (c.Rank()+1)<<4 | (c.Suit() + 1)
}

// addCard returns the canonical key for key plus c and its card count. It
// reports false for a repeated card or a fifth card of one rank.
func addCard(key uint64, c poker.Card) (uint64, int, bool) {
	var cards [7]byte
	n := 0
	for ; n < 6; n++ {
		b := byte(key >> (8 * n))
		if b == 0 {
			break
		}
		cards[n] = b
	}

	nb := cardByte(c)
	var rankCount [14]int
	var suitCount [5]int
	for _, b := range cards[:n] {
		if b == nb {
			return 0, 0, false
		}
		rankCount[b>>4]++
		suitCount[b&0xf]++
	}
	rankCount[nb>>4]++
	if rankCount[nb>>4] > 4 {
		return 0, 0, false
	}
	suitCount[nb&0xf]++
	cards[n] = nb
	n++

	// A suit with fewer than n-2 cards cannot reach five by the seventh card.
	if need := n - 2; need > 1 {
		for i := range cards[:n] {
			if s := cards[i] & 0xf; s != 0 && suitCount[s] < need {
				cards[i] &^= 0xf
			}
		}
	}

	for i := 1; i < n; i++ {
		for j := i; j > 0 && cards[j] > cards[j-1]; j-- {
			cards[j], cards[j-1] = cards[j-1], cards[j]
		}
	}

	var out uint64
	for i, b := range cards[:n] {
		out |= uint64(b) << (8 * i)
	}
	return out, n, true
}

// scoreKey computes the final value of the best hand held by a state key.
func scoreKey(key uint64) uint32 {
	var (
		counts   [13]uint8
		suits    [5]uint16
		rankSeen uint16
		n        int
	)
	for ; n < 7; n++ {
		b := byte(key >> (8 * n))
		if b == 0 {
			break
		}
		r := b>>4 - 1
		counts[r]++
		rankSeen |= 1 << r
		suits[b&0xf] |= 1 << r
	}

	if n == 3 {
		return scoreThree(counts)
	}

	var flush uint16
	for s := 1; s <= 4; s++ {
		if bits.OnesCount16(suits[s]) >= 5 {
			flush = suits[s]
		}
	}
	return scoreFive(counts, rankSeen, flush)
}

// scoreFive values the best five cards among up to seven.
func scoreFive(counts [13]uint8, seen, flush uint16) uint32 {
	if flush != 0 {
		if hi, ok := straightHigh(flush); ok {
			return lookup(StraightFlush, uint32(hi))
		}
	}

	quad, trip1, trip2, pair1, pair2 := -1, -1, -1, -1, -1
	for r := 12; r >= 0; r-- {
		switch counts[r] {
		case 4:
			quad = r
		case 3:
			if trip1 < 0 {
				trip1 = r
			} else if trip2 < 0 {
				trip2 = r
			}
		case 2:
			if pair1 < 0 {
				pair1 = r
			} else if pair2 < 0 {
				pair2 = r
			}
		}
	}

	switch {
	case quad >= 0:
		return lookup(FourOfAKind, pack([]int{quad}, without(seen, quad), 1))
	case trip1 >= 0 && (trip2 >= 0 || pair1 >= 0):
		return lookup(FullHouse, pack([]int{trip1, max(trip2, pair1)}, 0, 0))
	case flush != 0:
		return lookup(Flush, pack(nil, flush, 5))
	}
	if hi, ok := straightHigh(seen); ok {
		return lookup(Straight, uint32(hi))
	}
	switch {
	case trip1 >= 0:
		return lookup(ThreeOfAKind, pack([]int{trip1}, without(seen, trip1), 2))
	case pair2 >= 0:
		return lookup(TwoPair, pack([]int{pair1, pair2}, without(seen, pair1, pair2), 1))
	case pair1 >= 0:
		return lookup(OnePair, pack([]int{pair1}, without(seen, pair1), 3))
	}
	return lookup(HighCard, pack(nil, seen, 5))
}

// scoreThree values a three card hand. Straights and flushes do not count.
func scoreThree(counts [13]uint8) uint32 {
	var seen uint16
	trip, pair := -1, -1
	for r := 12; r >= 0; r-- {
		switch counts[r] {
		case 3:
			trip = r
		case 2:
			pair = r
		}
		if counts[r] > 0 {
			seen |= 1 << r
		}
	}
	switch {
	case trip >= 0:
		return lookupThree(ThreeOfAKind, uint32(trip))
	case pair >= 0:
		return lookupThree(OnePair, pack([]int{pair}, without(seen, pair), 1))
	}
	return lookupThree(HighCard, pack(nil, seen, 3))
}

// straightHigh returns the top rank of the highest straight in mask. The
// wheel (A-2-3-4-5) reports the five (rank 3).
func straightHigh(mask uint16) (int, bool) {
	for hi := 12; hi >= 4; hi-- {
		if run := uint16(0x1f) << (hi - 4); mask&run == run {
			return hi, true
		}
	}
	const wheel = 1<<12 | 0xf
	if mask&wheel == wheel {
		return 3, true
	}
	return 0, false
}

func without(mask uint16, ranks ...int) uint16 {
	for _, r := range ranks {
		mask &^= 1 << r
	}
	return mask
}

// pack builds a sort key from the leading ranks followed by the top n ranks
// of kickers, one nibble each, most significant first.
func pack(leading []int, kickers uint16, n int) uint32 {
	var key uint32
	for _, r := range leading {
		key = key<<4 | uint32(r)
	}
	for r := 12; r >= 0 && n > 0; r-- {
		if kickers&(1<<r) != 0 {
			key = key<<4 | uint32(r)
			n--
		}
	}
	return key
}

var (
	fiveCardRanks  = buildFiveCardRanks()
	threeCardRanks = buildThreeCardRanks()
)

func lookup(cat Category, key uint32) uint32 {
	return uint32(cat)<<rankBits | uint32(fiveCardRanks[uint32(cat)<<24|key])
}

func lookupThree(cat Category, key uint32) uint32 {
	return uint32(cat)<<rankBits | uint32(threeCardRanks[uint32(cat)<<24|key])
}

// denseRanks assigns ranks 1..n to keys in ascending order.
func denseRanks(into map[uint32]uint16, cat Category, keys []uint32) {
	slices.Sort(keys)
	for i, k := range keys {
		into[uint32(cat)<<24|k] = uint16(i + 1)
	}
}

// masksWith returns every 13-bit mask with exactly n ranks, none in excluded.
func masksWith(n int, excluded uint16) []uint16 {
	var out []uint16
	for m := uint16(0); m < 1<<13; m++ {
		if m&excluded == 0 && bits.OnesCount16(m) == n {
			out = append(out, m)
		}
	}
	return out
}

func buildFiveCardRanks() map[uint32]uint16 {
	idx := make(map[uint32]uint16, 7462)

	var straights []uint32
	for hi := 3; hi <= 12; hi++ {
		straights = append(straights, uint32(hi))
	}
	denseRanks(idx, StraightFlush, slices.Clone(straights))
	denseRanks(idx, Straight, straights)

	var quads, fulls []uint32
	for a := range 13 {
		for b := range 13 {
			if a != b {
				quads = append(quads, pack([]int{a, b}, 0, 0))
				fulls = append(fulls, pack([]int{a, b}, 0, 0))
			}
		}
	}
	denseRanks(idx, FourOfAKind, quads)
	denseRanks(idx, FullHouse, fulls)

	var distinct []uint32
	for _, m := range masksWith(5, 0) {
		if _, ok := straightHigh(m); !ok {
			distinct = append(distinct, pack(nil, m, 5))
		}
	}
	denseRanks(idx, Flush, slices.Clone(distinct))
	denseRanks(idx, HighCard, distinct)

	var trips, twoPair, onePair []uint32
	for a := range 13 {
		for _, m := range masksWith(2, 1<<a) {
			trips = append(trips, pack([]int{a}, m, 2))
		}
		for _, m := range masksWith(3, 1<<a) {
			onePair = append(onePair, pack([]int{a}, m, 3))
		}
		for b := range a {
			for k := range 13 {
				if k != a && k != b {
					twoPair = append(twoPair, pack([]int{a, b, k}, 0, 0))
				}
			}
		}
	}
	denseRanks(idx, ThreeOfAKind, trips)
	denseRanks(idx, TwoPair, twoPair)
	denseRanks(idx, OnePair, onePair)

	return idx
}

func buildThreeCardRanks() map[uint32]uint16 {
	idx := make(map[uint32]uint16, 455)

	var trips, pairs, high []uint32
	for a := range 13 {
		trips = append(trips, uint32(a))
		for k := range 13 {
			if k != a {
				pairs = append(pairs, pack([]int{a, k}, 0, 0))
			}
		}
	}
	for _, m := range masksWith(3, 0) {
		high = append(high, pack(nil, m, 3))
	}
	denseRanks(idx, ThreeOfAKind, trips)
	denseRanks(idx, OnePair, pairs)
	denseRanks(idx, HighCard, high)

	return idx
}
