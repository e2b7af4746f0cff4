// internal/pkg/cache/invalidator.go
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// InvalidationChannel carries record keys whose cached reads are stale.
// Readers subscribe and refresh the named records instead of polling full
// tables; a missed message only delays convergence until the next write.
const InvalidationChannel = "storefront:invalidate"

// Invalidator publishes record-level invalidations after committed mutations
type Invalidator struct {
	redisClient *redis.Client
}

// NewInvalidator creates a new invalidator
func NewInvalidator(redisClient *redis.Client) *Invalidator {
	return &Invalidator{redisClient: redisClient}
}

// RecordKey builds the conventional "<table>:<id>" invalidation key
func RecordKey(table string, id interface{}) string {
	return fmt.Sprintf("%s:%v", table, id)
}

// Invalidate publishes the given record keys. Best-effort: a publish failure
// never fails the mutation that triggered it.
func (i *Invalidator) Invalidate(keys ...string) {
	if i == nil || i.redisClient == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	for _, key := range keys {
		i.redisClient.Publish(ctx, InvalidationChannel, key)
	}
}

// Subscribe returns a subscription on the invalidation channel
func (i *Invalidator) Subscribe(ctx context.Context) *redis.PubSub {
	return i.redisClient.Subscribe(ctx, InvalidationChannel)
}
