package evaluator

import (
	"context"
	"errors"
	rand "math/rand/v2"

	"github.com/lox/pokertables/poker"
	"golang.org/x/sync/errgroup"
)

// parallelThreshold is the sample count above which equity estimation is
// split across a fixed number of workers. The worker count is fixed, not
// derived from the CPU count, so a seeded estimate is reproducible.
const (
	parallelThreshold = 500
	equityWorkers     = 4
)

// EquityRequest describes a Monte Carlo equity estimate against random hands.
type EquityRequest struct {
	Hole      []poker.Card
	Board     []poker.Card
	BoardSize int // community cards at showdown
	Opponents int
	Samples   int
}

// ErrInvalidEquityRequest is returned when the request cannot be simulated.
var ErrInvalidEquityRequest = errors.New("invalid equity request")

type workerResult struct {
	share   float64
	samples int
}

// EstimateEquity returns the expected pot share of Hole against Opponents
// random hands of the same size, completing the board to BoardSize.
func (t *Table) EstimateEquity(ctx context.Context, req EquityRequest, rng *rand.Rand) (float64, error) {
	if req.Opponents < 1 || req.Samples < 1 || len(req.Board) > req.BoardSize {
		return 0, ErrInvalidEquityRequest
	}
	if need := len(req.Hole) + req.Opponents*len(req.Hole) + req.BoardSize; need > poker.NumCards {
		return 0, ErrInvalidEquityRequest
	}

	var used uint64
	for _, c := range append(append([]poker.Card(nil), req.Hole...), req.Board...) {
		if !c.Valid() || used&(1<<c) != 0 {
			return 0, ErrInvalidCard
		}
		used |= 1 << c
	}
	available := make([]poker.Card, 0, poker.NumCards)
	for c := poker.Card(1); c <= poker.NumCards; c++ {
		if used&(1<<c) == 0 {
			available = append(available, c)
		}
	}

	workers := 1
	if req.Samples >= parallelThreshold {
		workers = equityWorkers
	}

	results := make([]workerResult, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		samples := req.Samples / workers
		if w < req.Samples%workers {
			samples++
		}
		wrng := rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64()))
		g.Go(func() error {
			res, err := t.simulate(ctx, req, available, samples, wrng)
			results[w] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var share float64
	var samples int
	for _, r := range results {
		share += r.share
		samples += r.samples
	}
	if samples == 0 {
		return 0, nil
	}
	return share / float64(samples), nil
}

func (t *Table) simulate(ctx context.Context, req EquityRequest, available []poker.Card, samples int, rng *rand.Rand) (workerResult, error) {
	deck := append([]poker.Card(nil), available...)
	holeSize := len(req.Hole)
	missing := req.BoardSize - len(req.Board)
	draw := req.Opponents*holeSize + missing

	hero := make([]poker.Card, 0, holeSize+req.BoardSize)
	opp := make([]poker.Card, 0, holeSize+req.BoardSize)
	board := make([]poker.Card, 0, req.BoardSize)

	var res workerResult
	for i := range samples {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}

		// Partial Fisher-Yates: the first draw cards become the sample.
		for j := range draw {
			k := j + rng.IntN(len(deck)-j)
			deck[j], deck[k] = deck[k], deck[j]
		}

		board = append(board[:0], req.Board...)
		board = append(board, deck[req.Opponents*holeSize:draw]...)

		hero = append(append(hero[:0], req.Hole...), board...)
		heroEval, err := t.Evaluate(hero)
		if err != nil {
			return res, err
		}

		best, ties := true, 0
		for o := range req.Opponents {
			opp = append(append(opp[:0], deck[o*holeSize:(o+1)*holeSize]...), board...)
			oppEval, err := t.Evaluate(opp)
			if err != nil {
				return res, err
			}
			switch heroEval.Compare(oppEval) {
			case -1:
				best = false
			case 0:
				ties++
			}
			if !best {
				break
			}
		}

		if best {
			res.share += 1 / float64(ties+1)
		}
		res.samples++
	}
	return res, nil
}
