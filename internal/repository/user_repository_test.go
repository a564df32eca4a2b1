package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/concord-chat/concord/internal/model"
	"github.com/concord-chat/concord/internal/util"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCacheRepository(t *testing.T) (*UserRepository, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return &UserRepository{
		Log:     zap.NewNop(),
		DBCache: client,
	}, server
}

func TestSetAuthTokenInCacheStoresHashes(t *testing.T) {
	repository, server := newCacheRepository(t)
	ctx := context.Background()
	userId := uuid.New()

	err := repository.SetAuthTokenInCache(ctx, "access-token", "refresh-token", userId)
	require.NoError(t, err)

	accessKey := fmt.Sprintf("auth:accessToken:%s", userId)
	stored, err := server.Get(accessKey)
	require.NoError(t, err)
	assert.Equal(t, util.HashToken("access-token"), stored)
	assert.NotEqual(t, "access-token", stored, "raw tokens must never hit the cache")

	ttl := server.TTL(accessKey)
	assert.Equal(t, util.AccessTokenDuration, ttl)

	refreshKey := fmt.Sprintf("auth:refreshToken:%s", userId)
	assert.Equal(t, util.RefreshTokenDuration, server.TTL(refreshKey))
}

func TestGetAccessTokenInCache(t *testing.T) {
	repository, _ := newCacheRepository(t)
	ctx := context.Background()
	userId := uuid.New()

	require.NoError(t, repository.SetAuthTokenInCache(ctx, "access-token", "refresh-token", userId))

	hashed, err := repository.GetAccessTokenInCache(ctx, userId)
	require.NoError(t, err)
	assert.Equal(t, util.HashToken("access-token"), hashed)
}

func TestGetAccessTokenInCacheMissing(t *testing.T) {
	repository, _ := newCacheRepository(t)

	_, err := repository.GetAccessTokenInCache(context.Background(), uuid.New())
	var authenticationErr *model.AuthenticationError
	assert.ErrorAs(t, err, &authenticationErr)
}

func TestGetAccessTokenInCacheExpired(t *testing.T) {
	repository, server := newCacheRepository(t)
	ctx := context.Background()
	userId := uuid.New()

	require.NoError(t, repository.SetAuthTokenInCache(ctx, "access-token", "refresh-token", userId))
	server.FastForward(util.AccessTokenDuration * 2)

	_, err := repository.GetAccessTokenInCache(ctx, userId)
	var authenticationErr *model.AuthenticationError
	assert.ErrorAs(t, err, &authenticationErr)
}

func TestRemoveAuthToken(t *testing.T) {
	repository, server := newCacheRepository(t)
	ctx := context.Background()
	userId := uuid.New()

	require.NoError(t, repository.SetAuthTokenInCache(ctx, "access-token", "refresh-token", userId))
	require.NoError(t, repository.RemoveAuthToken(ctx, userId))

	assert.False(t, server.Exists(fmt.Sprintf("auth:accessToken:%s", userId)))
	assert.False(t, server.Exists(fmt.Sprintf("auth:refreshToken:%s", userId)))

	_, err := repository.GetAccessTokenInCache(ctx, userId)
	assert.Error(t, err)
}
