package publisher

import "context"

// Publisher represents a service for publishing catalog rows
type Publisher interface {
	// Publish appends one message to the stream shard chosen by shardKey
	Publish(ctx context.Context, shardKey string, values map[string]interface{}) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams(ctx context.Context) error

	// Close closes the publisher connection
	Close() error
}
