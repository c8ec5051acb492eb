package cache

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryCache struct {
	data   map[string][]byte
	getErr error
	setErr error
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = value
	return nil
}

func (c *memoryCache) Purge(context.Context) (int, error) {
	n := len(c.data)
	c.data = map[string][]byte{}
	return n, nil
}

func TestKey_OrderIndependent(t *testing.T) {
	a := Key("facilities:list", url.Values{"town": {"paarl"}, "limit": {"10"}})
	b := Key("facilities:list", url.Values{"limit": {"10"}, "town": {"paarl"}})
	c := Key("facilities:list", url.Values{"limit": {"10"}, "town": {"worcester"}})
	d := Key("facilities:stats", url.Values{"limit": {"10"}, "town": {"paarl"}})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
	assert.True(t, strings.HasPrefix(a, Prefix+"facilities:list:"))
	assert.Equal(t, Key("facilities:stats", nil), Key("facilities:stats", url.Values{}))
}

func TestFetch_LoadsOnceThenHits(t *testing.T) {
	c := &memoryCache{data: map[string][]byte{}}
	loads := 0
	load := func(context.Context) ([]string, error) {
		loads++
		return []string{"Clinic", "Hospital"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := Fetch(context.Background(), c, zap.NewNop(), "k", time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, []string{"Clinic", "Hospital"}, got)
	}
	assert.Equal(t, 1, loads)
}

func TestFetch_CacheFailureFallsThrough(t *testing.T) {
	c := &memoryCache{data: map[string][]byte{}, getErr: errors.New("conn refused"), setErr: errors.New("conn refused")}

	got, err := Fetch(context.Background(), c, zap.NewNop(), "k", time.Minute, func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestFetch_LoadErrorNotCached(t *testing.T) {
	c := &memoryCache{data: map[string][]byte{}}
	boom := errors.New("store down")

	_, err := Fetch(context.Background(), c, zap.NewNop(), "k", time.Minute, func(context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, c.data)
}

func TestFetch_UndecodableEntryReloads(t *testing.T) {
	c := &memoryCache{data: map[string][]byte{"k": []byte("not json")}}

	got, err := Fetch(context.Background(), c, zap.NewNop(), "k", time.Minute, func(context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, got)
	assert.Equal(t, []byte("7"), c.data["k"])
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), time.Minute))
	_, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
	n, err := c.Purge(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
