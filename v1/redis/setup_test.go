package redis

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestClose_IsIdempotent(t *testing.T) {
	r := NewClientFromUniversal(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), DefaultLayout())

	assert.NoError(t, r.Close())
	assert.NoError(t, r.Close(), "a second close does not report the pool as closed")

	err := r.Ping(context.Background())
	assert.True(t, IsClosedError(err))
}

func TestClose_WithoutClient(t *testing.T) {
	assert.NoError(t, (&RedisClient{}).Close())
}
