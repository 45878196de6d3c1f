package cart

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisStore is the adapter for the cart collaborator. The cart itself is
// owned elsewhere; the order flow only ever needs to empty it after a
// successful placement.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func cartKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}

func (s *RedisStore) ClearCart(ctx context.Context, userID string) error {
	return s.client.Del(ctx, cartKey(userID)).Err()
}
