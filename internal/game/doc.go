// Package game implements the per-table stage and betting state machine.
//
// The rules live in a pure transition function:
//
//	m := game.NewMachine(table)
//	state, effects := m.Step(state, game.EventAction{Action: game.Action{Seat: 0, Kind: game.CheckOrCall}})
//
// Step never blocks, starts timers or talks to bots. It returns Effects that a
// runtime executes. Two runtimes are provided:
//
//   - Table is the real-time actor. It owns one State, serializes every event
//     through a single inbox, runs the TurnClock and the single pending wake on
//     a quartz.Clock, asks bots off-loop and broadcasts deduplicated snapshots.
//   - Driver runs hands synchronously with no clocks. It is used for headless
//     simulation and for replaying recorded hands.
//
// # Variants
//
// Each Variant is an ordered list of stages (deal, reveal, betting, reveal-all
// and results). Hold'em, a no-river "shorthand" game and a three card game
// share the same engine.
//
// # Pot
//
// There is a single shared pot. Unequal all-in stacks do not create side pots.
package game
