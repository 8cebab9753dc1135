package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store wraps the process-wide Redis connection. It is created once at
// startup and shared by reference; go-redis pools connections internally.
type Store struct {
	client *redis.Client
	prefix string
}

func New(ctx context.Context, addr, prefix string) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{
		client: client,
		prefix: prefix,
	}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(parts ...string) string {
	key := s.prefix
	for _, part := range parts {
		key += ":" + part
	}
	return key
}

func (s *Store) feedsKey() string {
	return s.key("feeds", "list")
}

func (s *Store) readKey() string {
	return s.key("articles", "read")
}

func (s *Store) summaryKey(guid string) string {
	return s.key("summary", guid)
}

func (s *Store) riverKey(horizon string) string {
	return s.key("river", horizon)
}

// Health reports connection status for the health endpoint.
func (s *Store) Health(ctx context.Context) map[string]interface{} {
	health := map[string]interface{}{
		"status": "healthy",
		"type":   "redis",
	}

	if err := s.client.Ping(ctx).Err(); err != nil {
		health["status"] = "unhealthy"
		health["error"] = err.Error()
		return health
	}

	if dbSize, err := s.client.DBSize(ctx).Result(); err == nil {
		health["key_count"] = dbSize
	}

	return health
}
