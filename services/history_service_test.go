package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shmboard/config"
	"shmboard/models"
)

type scriptedSource struct {
	mu    sync.Mutex
	snaps []models.NetworkSnapshot
}

func (s *scriptedSource) Snapshot(context.Context) models.NetworkSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snaps[0]
	if len(s.snaps) > 1 {
		s.snaps = s.snaps[1:]
	}
	snap.Timestamp = time.Now().UTC()
	return snap
}

type recordingNotifier struct {
	changes [][2]float64
}

func (r *recordingNotifier) NotifyRewardChange(prev, curr models.NetworkSnapshot) error {
	r.changes = append(r.changes, [2]float64{prev.HourlyReward, curr.HourlyReward})
	return nil
}

func newTestHistory(t *testing.T, snaps ...models.NetworkSnapshot) (*HistoryService, *recordingNotifier) {
	t.Helper()
	cfg := config.Default()
	mongo, err := NewMongoDBService(cfg, nil)
	require.NoError(t, err)
	require.False(t, mongo.Enabled())

	notifier := &recordingNotifier{}
	return NewHistoryService(cfg, &scriptedSource{snaps: snaps}, mongo, notifier, nil), notifier
}

func TestHistoryKeepsRecentSnapshots(t *testing.T) {
	hs, _ := newTestHistory(t, models.NetworkSnapshot{HourlyReward: 5, Source: models.SourceLive})
	ctx := context.Background()

	for i := 0; i < recentSnapshots+3; i++ {
		hs.Collect(ctx)
	}
	recent := hs.Recent()
	assert.Len(t, recent, recentSnapshots)
	assert.False(t, recent[0].Timestamp.After(recent[len(recent)-1].Timestamp))

	all, err := hs.History(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, all, recentSnapshots)

	none, err := hs.History(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestHistoryNotifiesRewardChanges(t *testing.T) {
	hs, notifier := newTestHistory(t,
		models.NetworkSnapshot{HourlyReward: 5, Source: models.SourceLive},
		models.NetworkSnapshot{HourlyReward: 5, Source: models.SourceCached},
		models.NetworkSnapshot{HourlyReward: 0, Source: models.SourceFallback},
		models.NetworkSnapshot{HourlyReward: 7.5, Source: models.SourceLive},
	)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		hs.Collect(ctx)
	}

	// the fallback snapshot is ignored, 5 -> 7.5 is reported once
	assert.Equal(t, [][2]float64{{5, 7.5}}, notifier.changes)
}

func TestHistoryDailyAveragesNeedMongo(t *testing.T) {
	hs, _ := newTestHistory(t, models.NetworkSnapshot{})
	_, err := hs.DailyAverages(context.Background(), 7)
	assert.ErrorIs(t, err, ErrMongoDisabled)
}
