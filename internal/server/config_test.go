package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokertables/internal/bot"
)

const sampleConfig = `
server {
  address   = "127.0.0.1:9090"
  log_level = "debug"
}

table "holdem" {
  small_blind   = 1
  big_blind     = 2
  turn_timeout  = "5s"
  results_delay = "1s"
  seed          = 42
}

table "stud" {
  variant     = "threecard"
  max_seats   = 4
  small_blind = 10
  big_blind   = 20
}

bot "alice" {
  table    = "holdem"
  strategy = "equity"
}

bot "bob" {
  table = "holdem"
  stack = 500
}

bot "carol" {
  table    = "stud"
  strategy = "remote"
  endpoint = "ws://localhost:9000/decide"
}
`

func TestParseConfig(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig([]byte(sampleConfig), "test.hcl")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Address)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "pokertables", cfg.Server.RedisChannel)
	require.Len(t, cfg.Tables, 2)

	holdem := cfg.Table("holdem")
	require.NotNil(t, holdem)
	assert.Equal(t, "holdem", holdem.Variant)
	assert.Equal(t, 6, holdem.MaxSeats)
	assert.Equal(t, int64(42), holdem.Seed)

	gcfg, err := holdem.GameConfig()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, gcfg.TurnTimeout)
	assert.Equal(t, time.Second, gcfg.ResultsDelay)
	assert.Equal(t, 500*time.Millisecond, gcfg.CollectPause)
	assert.Equal(t, time.Second, gcfg.Tick)

	bots := cfg.BotsAt("holdem")
	require.Len(t, bots, 2)
	assert.Equal(t, bot.StrategyEquity, bots[0].Strategy)
	assert.Equal(t, 200, bots[0].Stack, "stack defaults to 100 big blinds")
	assert.Equal(t, bot.StrategyRule, bots[1].Strategy)
	assert.Equal(t, 500, bots[1].Stack)

	stud := cfg.BotsAt("stud")
	require.Len(t, stud, 1)
	assert.Equal(t, "ws://localhost:9000/decide", stud[0].Endpoint)
	assert.Nil(t, cfg.Table("missing"))
}

func TestParseConfigErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{
			name: "syntax error",
			src:  `server {`,
		},
		{
			name: "missing server block",
			src: `table "a" {
  small_blind = 1
  big_blind   = 2
}`,
		},
		{
			name: "no tables",
			src:  `server {}`,
		},
		{
			name: "bad log level",
			src: `server { log_level = "chatty" }
table "a" {
  small_blind = 1
  big_blind   = 2
}`,
		},
		{
			name: "duplicate table",
			src: `server {}
table "a" {
  small_blind = 1
  big_blind   = 2
}
table "a" {
  small_blind = 1
  big_blind   = 2
}`,
		},
		{
			name: "unknown variant",
			src: `server {}
table "a" {
  variant     = "omaha"
  small_blind = 1
  big_blind   = 2
}`,
		},
		{
			name: "bad duration",
			src: `server {}
table "a" {
  small_blind  = 1
  big_blind    = 2
  turn_timeout = "soon"
}`,
		},
		{
			name: "inverted blinds",
			src: `server {}
table "a" {
  small_blind = 4
  big_blind   = 2
}`,
		},
		{
			name: "bot at unknown table",
			src: `server {}
table "a" {
  small_blind = 1
  big_blind   = 2
}
bot "x" { table = "b" }`,
		},
		{
			name: "unknown strategy",
			src: `server {}
table "a" {
  small_blind = 1
  big_blind   = 2
}
bot "x" {
  table    = "a"
  strategy = "psychic"
}`,
		},
		{
			name: "remote without endpoint",
			src: `server {}
table "a" {
  small_blind = 1
  big_blind   = 2
}
bot "x" {
  table    = "a"
  strategy = "remote"
}`,
		},
		{
			name: "duplicate bot",
			src: `server {}
table "a" {
  small_blind = 1
  big_blind   = 2
}
bot "x" { table = "a" }
bot "x" { table = "a" }`,
		},
		{
			name: "too many bots",
			src: `server {}
table "a" {
  max_seats   = 2
  small_blind = 1
  big_blind   = 2
}
bot "x" { table = "a" }
bot "y" { table = "a" }
bot "z" { table = "a" }`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseConfig([]byte(tt.src), "test.hcl")
			assert.Error(t, err)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "localhost:8080", cfg.Server.Address)
	require.Len(t, cfg.Tables, 1)
	assert.Len(t, cfg.BotsAt("main"), 3)
	for _, b := range cfg.Bots {
		assert.Equal(t, 1000, b.Stack)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("missing file falls back to defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.hcl"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("reads the file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "server.hcl")
		require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Len(t, cfg.Tables, 2)
	})
}

func TestExampleConfigLoads(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(filepath.Join("..", "..", "pokertables.hcl"))
	require.NoError(t, err)
	assert.Len(t, cfg.Tables, 2)
	assert.Len(t, cfg.Bots, 3)
	assert.Equal(t, "hands", cfg.Server.HistoryDir)
}
