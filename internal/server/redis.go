package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/lox/pokertables/internal/game"
)

// DefaultRedisBuffer is how many snapshots RedisPublisher queues before it
// starts dropping.
const DefaultRedisBuffer = 256

// Publisher is the subset of a redis client RedisPublisher uses.
// *redis.Client implements it.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

type redisFrame struct {
	table string
	data  []byte
}

// RedisPublisher publishes every snapshot as JSON on <channel>:<table>.
// Broadcast only queues the frame; Run publishes it.
type RedisPublisher struct {
	client  Publisher
	channel string
	queue   chan redisFrame
	dropped atomic.Int64
	logger  *log.Logger
}

// NewRedisClient connects to a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// NewRedisPublisher creates a publisher with a queue of buffer frames.
func NewRedisPublisher(client Publisher, channel string, buffer int, logger *log.Logger) *RedisPublisher {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if buffer <= 0 {
		buffer = DefaultRedisBuffer
	}
	return &RedisPublisher{
		client:  client,
		channel: channel,
		queue:   make(chan redisFrame, buffer),
		logger:  logger.WithPrefix("redis"),
	}
}

// Channel returns the channel a table's snapshots are published on.
func (p *RedisPublisher) Channel(tableID string) string {
	return p.channel + ":" + tableID
}

// Dropped returns how many snapshots were discarded because the queue was
// full.
func (p *RedisPublisher) Dropped() int64 {
	return p.dropped.Load()
}

// Broadcast implements game.Broadcaster.
func (p *RedisPublisher) Broadcast(tableID string, snap game.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		p.logger.Error("Failed to encode snapshot", "table", tableID, "error", err)
		return
	}
	select {
	case p.queue <- redisFrame{table: tableID, data: data}:
	default:
		if n := p.dropped.Add(1); n == 1 || n%100 == 0 {
			p.logger.Warn("Publish queue full, dropping snapshots", "table", tableID, "dropped", n)
		}
	}
}

// Run publishes queued snapshots until ctx is cancelled. Publish failures
// are logged and the frame is dropped.
func (p *RedisPublisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case f := <-p.queue:
			if err := p.client.Publish(ctx, p.Channel(f.table), f.data).Err(); err != nil && ctx.Err() == nil {
				p.logger.Warn("Publish failed", "channel", p.Channel(f.table), "error", err)
			}
		}
	}
}
