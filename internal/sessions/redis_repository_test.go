package sessions

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedisRepo(t *testing.T) (*RedisRepository, *miniredis.Miniredis) {
	t.Helper()
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRepository(client, ""), m
}

func TestRedisRepositoryRoundTrip(t *testing.T) {
	repo, _ := newTestRedisRepo(t)

	sess := &Session{
		RefreshToken: "tok-1",
		UserID:       "user-1",
		ExpiresAt:    time.Now().UTC().Add(time.Hour),
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, repo.Create(t.Context(), sess))

	got, err := repo.GetByRefresh(t.Context(), "tok-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "user-1", got.UserID)

	require.NoError(t, repo.DeleteByRefresh(t.Context(), "tok-1"))
	got, err = repo.GetByRefresh(t.Context(), "tok-1")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestRedisRepositoryUnknownToken(t *testing.T) {
	repo, _ := newTestRedisRepo(t)

	got, err := repo.GetByRefresh(t.Context(), "missing")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestRedisRepositoryExpiry(t *testing.T) {
	repo, m := newTestRedisRepo(t)

	sess := &Session{
		RefreshToken: "tok-short",
		UserID:       "user-1",
		ExpiresAt:    time.Now().UTC().Add(2 * time.Second),
	}
	require.NoError(t, repo.Create(t.Context(), sess))

	m.FastForward(3 * time.Second)

	got, err := repo.GetByRefresh(t.Context(), "tok-short")
	require.NoError(t, err)
	require.Nil(t, got)
}
