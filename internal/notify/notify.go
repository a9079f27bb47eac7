// Package notify tells interested parties that a quiz finished processing.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/abhisek/quizforge/internal/logging"
)

// Event types.
const (
	QuizProcessed = "quiz_processed"
	QuizErrored   = "quiz_errored"
)

// Event is one notification.
type Event struct {
	Type   string `json:"type"`
	QuizID string `json:"quiz_id"`
	UserID string `json:"-"`
}

// Notifier delivers events. Delivery failures are returned, never retried.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
	Close() error
}

// LogNotifier writes events to the log only.
type LogNotifier struct {
	log *logging.Logger
}

func NewLogNotifier(log *logging.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, e Event) error {
	n.log.Info("quiz notification", "type", e.Type, "quiz_id", e.QuizID, "user_id", e.UserID)
	return nil
}

func (n *LogNotifier) Close() error { return nil }

// publisher is the part of a Redis client the notifier needs.
type publisher interface {
	Publish(ctx context.Context, channel string, message any) *goredis.IntCmd
	Close() error
}

// RedisNotifier publishes events as JSON on a per-user pub/sub channel.
type RedisNotifier struct {
	rdb    publisher
	prefix string
	log    *logging.Logger
}

// NewRedisNotifier connects to the Redis server at url and verifies the
// connection. Events for user u go to channel prefix+u.
func NewRedisNotifier(ctx context.Context, url, prefix string, log *logging.Logger) (*RedisNotifier, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	rdb := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return newRedisNotifier(rdb, prefix, log), nil
}

func newRedisNotifier(rdb publisher, prefix string, log *logging.Logger) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, prefix: prefix, log: log.With("notifier", "redis")}
}

// Channel returns the channel events for userID are published on.
func (n *RedisNotifier) Channel(userID string) string {
	return n.prefix + userID
}

func (n *RedisNotifier) Notify(ctx context.Context, e Event) error {
	if strings.TrimSpace(e.UserID) == "" {
		return fmt.Errorf("notify %s: user id required", e.Type)
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	receivers, err := n.rdb.Publish(ctx, n.Channel(e.UserID), raw).Result()
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	n.log.Debug("published notification", "type", e.Type, "quiz_id", e.QuizID, "receivers", receivers)
	return nil
}

func (n *RedisNotifier) Close() error {
	return n.rdb.Close()
}

// New returns a RedisNotifier when redisURL is set and a LogNotifier
// otherwise.
func New(ctx context.Context, redisURL, prefix string, log *logging.Logger) (Notifier, error) {
	if redisURL == "" {
		return NewLogNotifier(log), nil
	}
	return NewRedisNotifier(ctx, redisURL, prefix, log)
}
