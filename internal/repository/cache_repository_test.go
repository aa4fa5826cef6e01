package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/availability-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest map[string]string
	assert.ErrorIs(t, repo.Get(ctx, "busy:user-1", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "busy:user-1", map[string]string{"a": "b"}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "busy:user-1:*"))
	assert.NoError(t, repo.Close())
}

func TestCacheRepositoryUnreachableRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	repo := NewCacheRepository(client, nil)
	defer repo.Close()
	ctx := context.Background()

	var dest map[string]string
	err := repo.Get(ctx, "busy:user-1", &dest)
	require.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.Contains(t, err.Error(), "redis get busy:user-1")

	err = repo.DeleteByPattern(ctx, "busy:user-1:*")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis scan")
}

func TestNamespaced(t *testing.T) {
	assert.Equal(t, "availability:busy:u:1:2", namespaced("busy:u:1:2"))
}
