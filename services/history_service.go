package services

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"shmboard/config"
	"shmboard/models"
)

// recentSnapshots is how many snapshots are kept in memory (one hour at the default interval)
const recentSnapshots = 12

type SnapshotSource interface {
	Snapshot(ctx context.Context) models.NetworkSnapshot
}

// RewardNotifier is told when the network hourly reward changes
type RewardNotifier interface {
	NotifyRewardChange(prev, curr models.NetworkSnapshot) error
}

type HistoryService struct {
	cfg      *config.Config
	source   SnapshotSource
	mongo    *MongoDBService
	notifier RewardNotifier
	logger   *zap.Logger

	stopOnce sync.Once
	stopChan chan struct{}

	mutex     sync.RWMutex
	recent    []models.NetworkSnapshot
	lastLive  *models.NetworkSnapshot
	collected int
}

func NewHistoryService(cfg *config.Config, source SnapshotSource, mongo *MongoDBService, notifier RewardNotifier, logger *zap.Logger) *HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryService{
		cfg:      cfg,
		source:   source,
		mongo:    mongo,
		notifier: notifier,
		logger:   logger,
		stopChan: make(chan struct{}),
		recent:   make([]models.NetworkSnapshot, 0, recentSnapshots),
	}
}

func (hs *HistoryService) Start() {
	interval := hs.cfg.SnapshotIntervalDuration()
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	hs.logger.Info("starting history service", zap.Duration("interval", interval), zap.Bool("mongodb", hs.mongo.Enabled()))

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		hs.collectWithTimeout(interval)
		for {
			select {
			case <-ticker.C:
				hs.collectWithTimeout(interval)
			case <-hs.stopChan:
				return
			}
		}
	}()
}

func (hs *HistoryService) Stop() {
	hs.stopOnce.Do(func() { close(hs.stopChan) })
}

func (hs *HistoryService) collectWithTimeout(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	hs.Collect(ctx)
}

// Collect takes one snapshot, stores it and reports reward changes
func (hs *HistoryService) Collect(ctx context.Context) models.NetworkSnapshot {
	snap := hs.source.Snapshot(ctx)

	if err := hs.mongo.InsertNetworkSnapshot(ctx, &snap); err != nil {
		hs.logger.Warn("error saving network snapshot", zap.Error(err))
	}

	hs.mutex.Lock()
	hs.recent = append(hs.recent, snap)
	if len(hs.recent) > recentSnapshots {
		hs.recent = hs.recent[len(hs.recent)-recentSnapshots:]
	}
	hs.collected++
	prune := hs.collected%recentSnapshots == 0

	// fallback snapshots carry configured values, not network data
	var prev *models.NetworkSnapshot
	if snap.Source != models.SourceFallback {
		prev = hs.lastLive
		live := snap
		hs.lastLive = &live
	}
	hs.mutex.Unlock()

	if prev != nil && rewardChanged(prev.HourlyReward, snap.HourlyReward) {
		hs.logger.Info("network reward changed",
			zap.Float64("previous", prev.HourlyReward), zap.Float64("current", snap.HourlyReward))
		if hs.notifier != nil {
			if err := hs.notifier.NotifyRewardChange(*prev, snap); err != nil {
				hs.logger.Warn("failed to send reward change notice", zap.Error(err))
			}
		}
	}

	if prune {
		if n, err := hs.mongo.PruneNetworkSnapshots(ctx, hs.cfg.RetentionDuration()); err != nil {
			hs.logger.Warn("failed to prune snapshots", zap.Error(err))
		} else if n > 0 {
			hs.logger.Debug("pruned old snapshots", zap.Int64("deleted", n))
		}
	}

	return snap
}

func rewardChanged(prev, curr float64) bool {
	return math.Abs(prev-curr) > 1e-9
}

// Recent returns the in-memory snapshots, oldest first
func (hs *HistoryService) Recent() []models.NetworkSnapshot {
	hs.mutex.RLock()
	defer hs.mutex.RUnlock()
	out := make([]models.NetworkSnapshot, len(hs.recent))
	copy(out, hs.recent)
	return out
}

// History returns snapshots since the given time from MongoDB, or from
// memory when MongoDB is disabled.
func (hs *HistoryService) History(ctx context.Context, since time.Time) ([]models.NetworkSnapshot, error) {
	if hs.mongo.Enabled() {
		return hs.mongo.GetNetworkHistory(ctx, since, 0)
	}

	out := make([]models.NetworkSnapshot, 0, recentSnapshots)
	for _, s := range hs.Recent() {
		if !s.Timestamp.Before(since) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (hs *HistoryService) DailyAverages(ctx context.Context, days int) ([]models.DailyNetworkAverage, error) {
	return hs.mongo.GetDailyNetworkAverages(ctx, days)
}
