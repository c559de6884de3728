package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/pokertables/internal/evaluator"
)

// generated builds the hand rank table at most once per process.
var generated = sync.OnceValue(evaluator.Generate)

// Logger returns a stderr logger at the flag's level, or at fallback when
// the flag is unset.
func (g *Globals) Logger(fallback string) (*log.Logger, error) {
	level := g.LogLevel
	if level == "" {
		level = fallback
	}
	if level == "" {
		level = "info"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	}), nil
}

// loadEvaluator reads the hand rank table at path, or generates it in memory
// when path is empty. A missing or corrupt file is an error; write one with
// "handranks generate".
func loadEvaluator(path string, logger *log.Logger) (*evaluator.Table, error) {
	if path == "" {
		start := time.Now()
		t := generated()
		logger.Debug("Generated hand ranks", "entries", t.Len(), "elapsed", time.Since(start).Round(time.Millisecond))
		return t, nil
	}
	t, err := evaluator.Load(path)
	if err != nil {
		return nil, fmt.Errorf("hand ranks: %w", err)
	}
	logger.Debug("Loaded hand ranks", "path", path, "entries", t.Len())
	return t, nil
}

func output(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
