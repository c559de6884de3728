package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect(t *testing.T) {
	t.Parallel()

	seats := []*Seat{{ID: 0, RoundBet: 10}, {ID: 1}, {ID: 4, RoundBet: 25}}
	var pot Pot
	require.True(t, pot.Collect(seats))
	assert.Equal(t, 35, pot.Total)
	for _, s := range seats {
		assert.Zero(t, s.RoundBet)
	}

	assert.False(t, pot.Collect(seats), "nothing left to collect")
	assert.Equal(t, 35, pot.Total)
}

func TestAward(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		total   int
		winners []int
		dealer  int
		want    []Payout
	}{
		{
			name:    "single winner",
			total:   90,
			winners: []int{3},
			dealer:  0,
			want:    []Payout{{Seat: 3, Amount: 90}},
		},
		{
			name:    "even split",
			total:   100,
			winners: []int{0, 2},
			dealer:  1,
			want:    []Payout{{Seat: 2, Amount: 50}, {Seat: 0, Amount: 50}},
		},
		{
			name:    "remainder to first winner after the dealer",
			total:   101,
			winners: []int{0, 2},
			dealer:  1,
			want:    []Payout{{Seat: 2, Amount: 51}, {Seat: 0, Amount: 50}},
		},
		{
			name:    "remainder wraps around the table",
			total:   101,
			winners: []int{0, 2},
			dealer:  2,
			want:    []Payout{{Seat: 0, Amount: 51}, {Seat: 2, Amount: 50}},
		},
		{
			name:    "three way",
			total:   100,
			winners: []int{0, 2, 3},
			dealer:  0,
			want:    []Payout{{Seat: 2, Amount: 34}, {Seat: 3, Amount: 33}, {Seat: 0, Amount: 33}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			seats := []*Seat{{ID: 0, Stack: 10}, {ID: 1, Stack: 10}, {ID: 2, Stack: 10}, {ID: 3, Stack: 10}}
			pot := Pot{Total: tt.total}

			got := pot.Award(seats, tt.winners, tt.dealer)
			assert.Equal(t, tt.want, got)
			assert.Zero(t, pot.Total)

			sum := 0
			for _, s := range seats {
				sum += s.Stack
			}
			assert.Equal(t, 40+tt.total, sum)
		})
	}
}

func TestAwardPanicsWithoutWinners(t *testing.T) {
	t.Parallel()
	pot := Pot{Total: 10}
	seats := []*Seat{{ID: 0}}
	assert.Panics(t, func() { pot.Award(seats, nil, 0) })
	assert.Panics(t, func() { pot.Award(seats, []int{5}, 0) })
}
