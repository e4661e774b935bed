package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shmboard/config"
	"shmboard/models"
)

func newMemoryCache(t *testing.T) *CacheService {
	t.Helper()
	cs := NewCacheService(config.Default(), nil)
	t.Cleanup(cs.Stop)
	require.Equal(t, CacheModeInMemory, cs.GetCacheMode())
	return cs
}

func TestCacheFreshAndStale(t *testing.T) {
	cs := newMemoryCache(t)

	cs.Set("fresh", 1, time.Minute)
	cs.Set("old", 2, -time.Second)

	v, ok := cs.Get("fresh")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = cs.Get("old")
	assert.False(t, ok)

	v, stale, found := cs.GetWithStale("old")
	assert.True(t, found)
	assert.True(t, stale)
	assert.Equal(t, 2, v)

	_, _, found = cs.GetWithStale("missing")
	assert.False(t, found)
}

func TestCacheTypedGetters(t *testing.T) {
	cs := newMemoryCache(t)

	price := models.SpotPrice{USD: 0.5, EUR: 0.4, INR: 40}
	counts := models.NodeCounts{TotalNodes: 10, CommunityNodes: 6, StandbyNodes: 3}
	validators := []models.Validator{{Address: "0xabc", WeeklyCount: 3}}

	cs.Set(KeySpotPrice, price, time.Minute)
	cs.Set(KeyNodeCounts, counts, -time.Second)
	cs.Set(KeyHourlyReward, 10.0, time.Minute)
	cs.Set(ValidatorsKey(models.PeriodWeekly), validators, time.Minute)

	gotPrice, stale, ok := cs.GetSpotPrice(false)
	require.True(t, ok)
	assert.False(t, stale)
	assert.Equal(t, price, gotPrice)

	_, _, ok = cs.GetNodeCounts(false)
	assert.False(t, ok, "expired counts are not fresh")
	gotCounts, stale, ok := cs.GetNodeCounts(true)
	require.True(t, ok)
	assert.True(t, stale)
	assert.Equal(t, counts, gotCounts)

	reward, _, ok := cs.GetHourlyReward(false)
	require.True(t, ok)
	assert.Equal(t, 10.0, reward)

	gotValidators, _, ok := cs.GetValidators(models.PeriodWeekly, false)
	require.True(t, ok)
	assert.Equal(t, validators, gotValidators)

	_, _, ok = cs.GetValidators(models.PeriodDaily, true)
	assert.False(t, ok)
}

func TestCacheClearAndStats(t *testing.T) {
	cs := newMemoryCache(t)
	cs.Set(KeySpotPrice, models.SpotPrice{USD: 1}, time.Minute)
	cs.Set(KeyHourlyReward, 1.0, -time.Second)

	stats := cs.GetCacheStats()
	assert.Equal(t, "in-memory", stats["mode"])
	assert.Equal(t, 2, stats["in_memory_keys"])
	assert.Equal(t, 1, stats["in_memory_fresh"])

	cs.Delete(KeySpotPrice)
	_, _, ok := cs.GetSpotPrice(true)
	assert.False(t, ok)

	require.NoError(t, cs.ClearCache())
	assert.Equal(t, 0, cs.GetCacheStats()["in_memory_keys"])
}

func TestDecodeCached(t *testing.T) {
	v, err := decodeCached(KeySpotPrice, []byte(`{"usd":1,"eur":2,"inr":3}`))
	require.NoError(t, err)
	assert.Equal(t, models.SpotPrice{USD: 1, EUR: 2, INR: 3}, v)

	v, err = decodeCached(ValidatorsKey(models.PeriodAll), []byte(`[{"address":"0x1","allcount":4}]`))
	require.NoError(t, err)
	assert.Equal(t, []models.Validator{{Address: "0x1", AllCount: 4}}, v)

	v, err = decodeCached(KeyHourlyReward, []byte(`2.5`))
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	_, err = decodeCached(KeyNodeCounts, []byte(`not json`))
	assert.Error(t, err)
}
