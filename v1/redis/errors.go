package redis

import (
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Common Redis errors
var (
	// Nil is returned when a key does not exist.
	Nil = redis.Nil

	// ErrClosed is returned when the client is closed.
	ErrClosed = redis.ErrClosed
)

// IsNilError checks if the error is a "key does not exist" error.
func IsNilError(err error) bool {
	return errors.Is(err, Nil)
}

// IsClosedError checks if the error is a "client is closed" error.
func IsClosedError(err error) bool {
	return errors.Is(err, ErrClosed)
}

// isUnknownIndexError reports whether err is the RediSearch reply for a
// missing index.
func isUnknownIndexError(err error) bool {
	var rerr redis.Error
	if !errors.As(err, &rerr) {
		return false
	}
	msg := strings.ToLower(rerr.Error())
	return strings.Contains(msg, "unknown index name") || strings.Contains(msg, "no such index")
}
