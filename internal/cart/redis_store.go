package cart

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// RedisStore keeps one hash per user: field = variant id, value = quantity.
type RedisStore struct {
	client *redis.Client
}

func (r RedisStore) GetQuantity(ctx context.Context, userID, variantID int64) (int, error) {
	key := cartKey(userID)

	val, err := r.client.HGet(ctx, key, strconv.FormatInt(variantID, 10)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrEntryNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("redis hget failed: %w", err)
	}

	quantity, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("malformed cart quantity %q: %w", val, err)
	}
	if quantity <= 0 {
		return 0, ErrEntryNotFound
	}

	return quantity, nil
}

func (r RedisStore) SetQuantity(ctx context.Context, userID, variantID int64, quantity int) error {
	key := cartKey(userID)
	if err := r.client.HSet(ctx, key, strconv.FormatInt(variantID, 10), quantity).Err(); err != nil {
		return fmt.Errorf("redis hset failed: %w", err)
	}
	return nil
}

// DeleteEntries removes the given variant entries from the user's cart.
// Deleting entries that are already gone is a no-op.
func (r RedisStore) DeleteEntries(ctx context.Context, userID int64, variantIDs ...int64) error {
	if len(variantIDs) == 0 {
		return nil
	}

	fields := make([]string, len(variantIDs))
	for i, id := range variantIDs {
		fields[i] = strconv.FormatInt(id, 10)
	}

	if err := r.client.HDel(ctx, cartKey(userID), fields...).Err(); err != nil {
		return fmt.Errorf("redis hdel failed: %w", err)
	}
	return nil
}

func cartKey(userID int64) string {
	return fmt.Sprintf("cart:%d", userID)
}
