package cache

import (
	"errors"
	"strconv"
	"time"

	apperrors "sjsage522/catalogworker/pkg/errors"
)

// ErrMiss is returned by Get when the key is not cached
var ErrMiss = errors.New("cache miss")

// CacheService represents a generic cache service
type CacheService interface {
	// Get retrieves a value from the cache; a missing key yields ErrMiss
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}

// Gate blocks a fetch source for a while after the storefront rate-limits it
type Gate struct {
	svc CacheService
}

// NewGate creates a gate backed by svc; a nil svc never blocks
func NewGate(svc CacheService) *Gate {
	return &Gate{svc: svc}
}

// Blocked reports whether key is currently blocked
func (g *Gate) Blocked(key string) (bool, error) {
	if g == nil || g.svc == nil || key == "" {
		return false, nil
	}
	_, err := g.svc.Get(key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrMiss):
		return false, nil
	default:
		return false, apperrors.NewCache("gate", "check "+key, err)
	}
}

// Block marks key as blocked for d
func (g *Gate) Block(key string, d time.Duration) error {
	if g == nil || g.svc == nil || key == "" || d <= 0 {
		return nil
	}
	if err := g.svc.Set(key, []byte(strconv.Itoa(int(d/time.Second))), d); err != nil {
		return apperrors.NewCache("gate", "block "+key, err)
	}
	return nil
}
