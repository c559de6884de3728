package evaluator

import (
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/lox/pokertables/poker"
)

var (
	tableOnce sync.Once
	shared    *Table
)

// testTable generates the table once per test binary.
func testTable(t testing.TB) *Table {
	t.Helper()
	tableOnce.Do(func() {
		shared = Generate()
	})
	return shared
}

func randomHand(rng *rand.Rand, n int) []poker.Card {
	return poker.NewDeck(rng).Draw(n)
}

// bestOfFive evaluates every five card subset and returns the strongest.
func bestOfFive(t *testing.T, table *Table, cards []poker.Card) Evaluation {
	t.Helper()
	var best Evaluation
	var sub [5]poker.Card
	var walk func(start, depth int)
	walk = func(start, depth int) {
		if depth == 5 {
			e := table.MustEvaluate(sub[:])
			if e.Compare(best) > 0 {
				best = e
			}
			return
		}
		for i := start; i < len(cards); i++ {
			sub[depth] = cards[i]
			walk(i+1, depth+1)
		}
	}
	walk(0, 0)
	return best
}
