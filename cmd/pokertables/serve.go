package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lox/pokertables/internal/server"
)

// ServeCmd runs the tables from an HCL config file.
type ServeCmd struct {
	Config    string `short:"c" default:"pokertables.hcl" help:"Path to HCL configuration file"`
	Addr      string `short:"a" help:"Server address to bind to (overrides config)"`
	HandRanks string `help:"Hand rank table path (overrides config)"`
	RedisURL  string `help:"Also publish snapshots to this redis:// URL (overrides config)"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.HandRanks != "" {
		cfg.Server.HandRanks = c.HandRanks
	}
	if c.RedisURL != "" {
		cfg.Server.RedisURL = c.RedisURL
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := g.Logger(cfg.Server.LogLevel)
	if err != nil {
		return err
	}
	eval, err := loadEvaluator(cfg.Server.HandRanks, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []server.Option{server.WithLogger(logger)}
	if url := cfg.Server.RedisURL; url != "" {
		client, err := server.NewRedisClient(ctx, url)
		if err != nil {
			return err
		}
		defer client.Close()
		opts = append(opts, server.WithRedis(client))
		logger.Info("Publishing snapshots to redis", "channel", cfg.Server.RedisChannel)
	}

	s, err := server.New(cfg, eval, opts...)
	if err != nil {
		return err
	}
	logger.Info("Starting pokertables",
		"addr", cfg.Server.Address,
		"tables", len(cfg.Tables),
		"bots", len(cfg.Bots))

	err = s.Run(ctx)
	logger.Info("Server stopped")
	return err
}
