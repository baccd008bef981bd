// Package customdict mirrors learned user words in a shared Redis set so
// several engine instances see the same growing lexicon. It implements the
// engine's UserWordMirror capability; deployments without Redis simply run
// from the local knowledge store.
package customdict

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const defaultKey = "stavekontrol:user_lexicon"

// CustomDict wraps a Redis client around one set of normalized lemmas.
type CustomDict struct {
	client *redis.Client
	key    string
}

// New creates a CustomDict on the provided Redis client.
func New(client *redis.Client) *CustomDict {
	return &CustomDict{client: client, key: defaultKey}
}

// Add inserts a word into the shared set.
func (cd *CustomDict) Add(ctx context.Context, word string) error {
	return cd.client.SAdd(ctx, cd.key, word).Err()
}

// Remove deletes a word from the shared set.
func (cd *CustomDict) Remove(ctx context.Context, word string) error {
	return cd.client.SRem(ctx, cd.key, word).Err()
}

// All returns every word in the shared set.
func (cd *CustomDict) All(ctx context.Context) ([]string, error) {
	return cd.client.SMembers(ctx, cd.key).Result()
}
