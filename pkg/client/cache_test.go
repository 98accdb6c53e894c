package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueryCacheSetGetInvalidate(t *testing.T) {
	cache := NewQueryCache()

	_, ok := cache.Get(KeyFriends)
	require.False(t, ok)

	cache.Set(KeyFriends, []User{{ID: 1}})
	value, ok := cache.Get(KeyFriends)
	require.True(t, ok)
	require.Len(t, value.([]User), 1)

	cache.Set(KeyRecommendedUsers, []User{{ID: 2}})
	cache.Invalidate(KeyFriends, KeyOutgoingRequests)

	_, ok = cache.Get(KeyFriends)
	require.False(t, ok)
	_, ok = cache.Get(KeyRecommendedUsers)
	require.True(t, ok)
}

func TestFetchCachedCachesResult(t *testing.T) {
	cache := NewQueryCache()
	calls := 0
	fetch := func(ctx context.Context) ([]User, error) {
		calls++
		return []User{{ID: 7, FullName: "Mina"}}, nil
	}

	first, err := fetchCached(context.Background(), cache, KeyFriends, fetch)
	require.NoError(t, err)
	require.Equal(t, int64(7), first[0].ID)

	second, err := fetchCached(context.Background(), cache, KeyFriends, fetch)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, calls)
}

func TestFetchCachedRefetchesAfterInvalidate(t *testing.T) {
	cache := NewQueryCache()
	calls := 0
	fetch := func(ctx context.Context) ([]User, error) {
		calls++
		return []User{{ID: int64(calls)}}, nil
	}

	_, err := fetchCached(context.Background(), cache, KeyFriends, fetch)
	require.NoError(t, err)

	cache.Invalidate(KeyFriends)

	refetched, err := fetchCached(context.Background(), cache, KeyFriends, fetch)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
	require.Equal(t, int64(2), refetched[0].ID)
}

func TestFetchCachedFailureCachesNothing(t *testing.T) {
	cache := NewQueryCache()
	boom := errors.New("boom")
	calls := 0
	fetch := func(ctx context.Context) ([]User, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return []User{{ID: 9}}, nil
	}

	_, err := fetchCached(context.Background(), cache, KeyFriends, fetch)
	require.ErrorIs(t, err, boom)

	_, ok := cache.Get(KeyFriends)
	require.False(t, ok)

	users, err := fetchCached(context.Background(), cache, KeyFriends, fetch)
	require.NoError(t, err)
	require.Equal(t, int64(9), users[0].ID)
	require.Equal(t, 2, calls)
}
