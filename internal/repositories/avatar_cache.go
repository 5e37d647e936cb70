package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/contact-book/internal/logger"
)

// AvatarCacheRepository caches resolved avatar URLs in Redis keyed by email,
// so repeated lookups skip the Gravatar round trip.
type AvatarCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration duration for cached URLs
}

// NewAvatarCacheRepository creates a new repository instance with the given TTL.
func NewAvatarCacheRepository(client *redis.Client, expiration time.Duration) *AvatarCacheRepository {
	return &AvatarCacheRepository{
		client: client,
		exp:    expiration,
	}
}

// Get fetches a cached avatar URL for an email. Returns nil on cache miss.
func (r *AvatarCacheRepository) Get(ctx context.Context, email string) (*string, error) {
	key := fmt.Sprintf("avatar:%s", email)

	val, err := r.client.Get(ctx, key).Result()

	logger.Log.Infow("avatar cache get",
		"key", key,
		"result", val,
		"error", err,
	)

	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	return &val, nil
}

// Set caches an avatar URL for an email with expiration.
func (r *AvatarCacheRepository) Set(ctx context.Context, email, url string) error {
	key := fmt.Sprintf("avatar:%s", email)
	err := r.client.Set(ctx, key, url, r.exp).Err()

	logger.Log.Infow("avatar cache set",
		"key", key,
		"url", url,
		"error", err,
	)

	return err
}
