package server

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/pokertables/internal/evaluator"
	"github.com/lox/pokertables/internal/game"
)

const waitTimeout = 10 * time.Second

var (
	evalOnce  sync.Once
	evalTable *evaluator.Table
)

func testEvaluator(t testing.TB) *evaluator.Table {
	t.Helper()
	evalOnce.Do(func() {
		evalTable = evaluator.Generate()
	})
	return evalTable
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// chanRecorder hands every finished hand to the test.
type chanRecorder chan game.HandRecord

func (c chanRecorder) RecordHand(rec game.HandRecord) error {
	select {
	case c <- rec:
	default:
	}
	return nil
}

// fastConfig is a one-table config with bots that play without pauses.
func fastConfig(bots ...string) *Config {
	cfg := &Config{
		Tables: []TableConfig{{
			Name:         "t1",
			SmallBlind:   1,
			BigBlind:     2,
			Tick:         "0s",
			CollectPause: "0s",
			ResultsDelay: "1ms",
			Seed:         7,
		}},
	}
	for _, name := range bots {
		cfg.Bots = append(cfg.Bots, BotConfig{Name: name, Table: "t1", Strategy: "call"})
	}
	cfg.applyDefaults()
	return cfg
}
