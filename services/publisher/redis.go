package publisher

import (
	"context"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
)

// RedisPublisher implements Publisher using Redis streams
type RedisPublisher struct {
	client          *redis.Client
	streamPrefix    string
	streamCount     int
	streamMaxLength int
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(addr string, db int, streamPrefix string, streamCount int, streamMaxLength int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if streamCount < 1 {
		streamCount = 1
	}

	return &RedisPublisher{
		client:          client,
		streamPrefix:    streamPrefix,
		streamCount:     streamCount,
		streamMaxLength: streamMaxLength,
	}
}

// Ping checks the Redis connection
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// StreamFor returns the stream a shard key is published to.
// With streamCount 10 the streams are prefix:0 ~ prefix:9, and the same
// product code always lands on the same stream.
func (p *RedisPublisher) StreamFor(shardKey string) string {
	shard := xxhash.Sum64String(shardKey) % uint64(p.streamCount)
	return p.streamPrefix + ":" + strconv.FormatUint(shard, 10)
}

// Publish appends values to the shard stream of shardKey
func (p *RedisPublisher) Publish(ctx context.Context, shardKey string, values map[string]interface{}) error {
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.StreamFor(shardKey),
		Values: values,
	}).Err()
}

// TrimStreams trims all streams to the configured maximum length
func (p *RedisPublisher) TrimStreams(ctx context.Context) error {
	streams, err := p.client.Keys(ctx, p.streamPrefix+":*").Result()
	if err != nil {
		return err
	}

	for _, stream := range streams {
		if err := p.client.XTrimMaxLen(ctx, stream, int64(p.streamMaxLength)).Err(); err != nil {
			return err
		}
	}

	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
