package echoapi

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/chaguo/core"
)

func TestNewRedisClient(t *testing.T) {
	conf := core.NewTestConfig()

	client, err := NewRedisClient(context.Background(), conf)
	require.NoError(t, err)
	assert.Nil(t, client)
	assert.Nil(t, NewRedisLimiter(client, core.NopLogger{}))

	conf.RateLimit.RedisURL = "not a url"
	_, err = NewRedisClient(context.Background(), conf)
	assert.Error(t, err)
}

func TestRedisLimiter_Allow(t *testing.T) {
	var nilLimiter *RedisLimiter
	assert.True(t, nilLimiter.Allow(context.Background(), "key", 1, time.Minute))

	// nothing listens on port 1
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	limiter := NewRedisLimiter(client, core.NopLogger{})

	tests := []struct {
		name   string
		key    string
		limit  int
		window time.Duration
	}{
		{"no key", "", 1, time.Minute},
		{"no limit", "key", 0, time.Minute},
		{"no window", "key", 1, 0},
		{"redis down", "key", 1, time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, limiter.Allow(context.Background(), tt.key, tt.limit, tt.window))
		})
	}
}
