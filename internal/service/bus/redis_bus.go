package bus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	goredis "github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"

	"ecocare/internal/dto"
	"ecocare/internal/logger"
)

// RedisOptions configures the Redis pub/sub bus.
type RedisOptions struct {
	Addr    string
	Channel string
}

// RedisBus fans events out across server instances through a Redis channel.
// Publishes go through a circuit breaker so a Redis outage fails fast.
type RedisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
	breaker *gobreaker.CircuitBreaker[interface{}]
}

// NewRedisBus connects to Redis and verifies the connection.
func NewRedisBus(opts RedisOptions, log *logger.Logger) (*RedisBus, error) {
	if opts.Addr == "" {
		return nil, errors.New("missing redis address")
	}
	if opts.Channel == "" {
		return nil, errors.New("missing redis channel")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return newRedisBus(rdb, opts.Channel, log), nil
}

func newRedisBus(rdb *goredis.Client, channel string, log *logger.Logger) *RedisBus {
	b := &RedisBus{log: log, rdb: rdb, channel: channel}
	b.breaker = gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        "redis-publish",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
	return b
}

func (b *RedisBus) Publish(ctx context.Context, event dto.DetectionEvent) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	_, err = b.breaker.Execute(func() (interface{}, error) {
		return nil, b.rdb.Publish(ctx, b.channel, raw).Err()
	})
	if err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, onMsg func(dto.DetectionEvent)) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	// Wait for the subscription confirmation before reading messages.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}
	b.log.Info().Str("channel", b.channel).Msg("subscribed to redis channel")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return errors.New("redis subscription closed")
			}
			var event dto.DetectionEvent
			if err := json.Unmarshal([]byte(m.Payload), &event); err != nil {
				b.log.Warn().Err(err).Msg("bad redis event payload")
				continue
			}
			onMsg(event)
		}
	}
}

// BreakerState reports the publish circuit breaker state.
func (b *RedisBus) BreakerState() string {
	return b.breaker.State().String()
}

func (b *RedisBus) Close() error {
	return b.rdb.Close()
}
