package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command.
type Globals struct {
	LogLevel string `short:"l" help:"Log level: debug, info, warn or error (serve defaults to the config's)"`
}

type CLI struct {
	Globals

	Version   kong.VersionFlag `short:"v" help:"Show version"`
	Serve     ServeCmd         `cmd:"" help:"Run the configured tables behind the HTTP API"`
	Simulate  SimulateCmd      `cmd:"" help:"Play bot hands headless and summarize the results"`
	HandRanks HandRanksCmd     `cmd:"handranks" help:"Build or query the hand rank table"`
	Replay    ReplayCmd        `cmd:"" help:"Replay recorded PHH hands and verify their outcome"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pokertables"),
		kong.Description("Multi-seat poker tables for bots and spectators"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
