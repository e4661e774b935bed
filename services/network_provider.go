package services

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"shmboard/config"
	"shmboard/models"
)

const hoursPerDay = 24

// NetworkRPC is the subset of the Shardeum RPC the provider needs
type NetworkRPC interface {
	GetNodeList(ctx context.Context, page, limit int) (*models.NodeListResult, error)
	GetCycleInfo(ctx context.Context) (*models.CycleInfo, error)
	GetHourlyReward(ctx context.Context) (float64, error)
}

type PriceSource interface {
	GetSpotPrice(ctx context.Context) (models.SpotPrice, error)
}

// NetworkDataProvider supplies spot price, node counts and rewards. Values are
// cached per key, concurrent refreshes of one key share a single upstream call,
// and failures fall back to the last known value, then to configured defaults.
type NetworkDataProvider struct {
	cfg    *config.Config
	rpc    NetworkRPC
	prices PriceSource
	cache  *CacheService
	logger *zap.Logger

	group singleflight.Group

	mu        sync.RWMutex
	lastFetch map[string]time.Time

	stopOnce sync.Once
	stopChan chan struct{}
}

func NewNetworkDataProvider(cfg *config.Config, rpc NetworkRPC, prices PriceSource, cache *CacheService, logger *zap.Logger) *NetworkDataProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NetworkDataProvider{
		cfg:       cfg,
		rpc:       rpc,
		prices:    prices,
		cache:     cache,
		logger:    logger,
		lastFetch: make(map[string]time.Time),
		stopChan:  make(chan struct{}),
	}
}

// SpotPrice never fails: on upstream error it returns the last known price, or zeros
func (p *NetworkDataProvider) SpotPrice(ctx context.Context) (models.SpotPrice, string) {
	if price, _, ok := p.cache.GetSpotPrice(false); ok {
		return price, models.SourceCached
	}

	v, err := p.shared(ctx, KeySpotPrice, fetchBudget(p.cfg.PriceTimeoutDuration(), 2), func(ctx context.Context) (interface{}, error) {
		price, err := p.prices.GetSpotPrice(ctx)
		if err != nil {
			return nil, err
		}
		p.cache.Set(KeySpotPrice, price, p.cfg.PriceTTLDuration())
		p.touch(KeySpotPrice)
		promSpotPrice.WithLabelValues("usd").Set(price.USD)
		promSpotPrice.WithLabelValues("eur").Set(price.EUR)
		promSpotPrice.WithLabelValues("inr").Set(price.INR)
		return price, nil
	})
	if err == nil {
		return v.(models.SpotPrice), models.SourceLive
	}

	p.upstreamFailed(ctx, "price")
	if price, _, ok := p.cache.GetSpotPrice(true); ok {
		p.logger.Warn("price fetch failed, using last known price", zap.Error(err))
		return price, models.SourceCached
	}
	p.logger.Warn("price fetch failed, no price known", zap.Error(err))
	return models.SpotPrice{}, models.SourceFallback
}

// NodeCounts returns total, community and standby counts
func (p *NetworkDataProvider) NodeCounts(ctx context.Context) (models.NodeCounts, string, error) {
	if counts, _, ok := p.cache.GetNodeCounts(false); ok {
		return counts, models.SourceCached, nil
	}

	v, err := p.shared(ctx, KeyNodeCounts, fetchBudget(p.cfg.ShardeumTimeoutDuration(), p.cfg.Shardeum.MaxRetries), func(ctx context.Context) (interface{}, error) {
		counts, err := p.fetchNodeCounts(ctx)
		if err != nil {
			return nil, err
		}
		p.cache.Set(KeyNodeCounts, counts, p.cfg.NodeTTLDuration())
		p.touch(KeyNodeCounts)
		promNodes.WithLabelValues("total").Set(float64(counts.TotalNodes))
		promNodes.WithLabelValues("community").Set(float64(counts.CommunityNodes))
		promNodes.WithLabelValues("standby").Set(float64(counts.StandbyNodes))
		return counts, nil
	})
	if err == nil {
		return v.(models.NodeCounts), models.SourceLive, nil
	}

	p.upstreamFailed(ctx, "node_counts")
	if counts, _, ok := p.cache.GetNodeCounts(true); ok {
		p.logger.Warn("node count fetch failed, using last known counts", zap.Error(err))
		return counts, models.SourceCached, nil
	}
	return models.NodeCounts{}, models.SourceFallback, err
}

// shared runs fn once per key for every concurrent caller. The upstream call
// is detached from the first caller's context and bounded by timeout instead,
// so a caller that goes away only stops its own wait.
func (p *NetworkDataProvider) shared(ctx context.Context, key string, timeout time.Duration, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	ch := p.group.DoChan(key, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		return fn(fctx)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// fetchBudget bounds a shared fetch: every attempt plus its backoff
func fetchBudget(perAttempt time.Duration, attempts int) time.Duration {
	if perAttempt <= 0 {
		perAttempt = 10 * time.Second
	}
	if attempts < 1 {
		attempts = 1
	}
	return time.Duration(attempts) * (perAttempt + time.Second)
}

// upstreamFailed counts a failed fetch unless the caller itself gave up
func (p *NetworkDataProvider) upstreamFailed(ctx context.Context, source string) {
	if ctx.Err() != nil {
		return
	}
	promUpstreamFailures.WithLabelValues(source).Inc()
}

func (p *NetworkDataProvider) fetchNodeCounts(ctx context.Context) (models.NodeCounts, error) {
	var (
		list  *models.NodeListResult
		cycle *models.CycleInfo
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		list, err = p.rpc.GetNodeList(gctx, 1, p.cfg.Shardeum.NodePageLimit)
		return err
	})
	g.Go(func() error {
		var err error
		cycle, err = p.rpc.GetCycleInfo(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.NodeCounts{}, err
	}

	community := 0
	for _, n := range list.Nodes {
		if !n.FoundationNode {
			community++
		}
	}

	counts := models.NodeCounts{
		TotalNodes:     *list.TotalNodes,
		CommunityNodes: community,
		StandbyNodes:   *cycle.Nodes.Standby,
		FetchedAt:      time.Now().UTC(),
	}
	if cycle.Duration != nil {
		counts.CycleDuration = *cycle.Duration
	}
	return counts, nil
}

// HourlyReward is the network reward per active hour, in SHM
func (p *NetworkDataProvider) HourlyReward(ctx context.Context) (float64, string, error) {
	if reward, _, ok := p.cache.GetHourlyReward(false); ok {
		return reward, models.SourceCached, nil
	}

	v, err := p.shared(ctx, KeyHourlyReward, fetchBudget(p.cfg.ShardeumTimeoutDuration(), p.cfg.Shardeum.MaxRetries), func(ctx context.Context) (interface{}, error) {
		reward, err := p.rpc.GetHourlyReward(ctx)
		if err != nil {
			return nil, err
		}
		p.cache.Set(KeyHourlyReward, reward, p.cfg.NodeTTLDuration())
		p.touch(KeyHourlyReward)
		return reward, nil
	})
	if err == nil {
		return v.(float64), models.SourceLive, nil
	}

	p.upstreamFailed(ctx, "reward")
	if reward, _, ok := p.cache.GetHourlyReward(true); ok {
		p.logger.Warn("reward fetch failed, using last known reward", zap.Error(err))
		return reward, models.SourceCached, nil
	}
	return 0, models.SourceFallback, err
}

// Snapshot gathers every network figure at once. It never fails: missing
// node data or reward is replaced by the configured fallback pair.
func (p *NetworkDataProvider) Snapshot(ctx context.Context) models.NetworkSnapshot {
	hours := p.cfg.Estimator.ActivePeriodHours

	var (
		price        models.SpotPrice
		priceSource  string
		counts       models.NodeCounts
		countSource  string
		countErr     error
		hourly       float64
		rewardSource string
		rewardErr    error
		wg           sync.WaitGroup
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		price, priceSource = p.SpotPrice(ctx)
	}()
	go func() {
		defer wg.Done()
		counts, countSource, countErr = p.NodeCounts(ctx)
	}()
	go func() {
		defer wg.Done()
		hourly, rewardSource, rewardErr = p.HourlyReward(ctx)
	}()
	wg.Wait()

	// an unknown price is reported through estimator warnings, not the source
	if priceSource == models.SourceFallback {
		priceSource = models.SourceLive
	}

	snap := models.NetworkSnapshot{
		Timestamp:      time.Now().UTC(),
		TotalNodes:     counts.TotalNodes,
		CommunityNodes: counts.CommunityNodes,
		StandbyNodes:   counts.StandbyNodes,
		CycleDuration:  counts.CycleDuration,
		HourlyReward:   hourly,
		SpotPrice:      price,
		Source:         combineSources(priceSource, countSource, rewardSource),
	}

	if countErr != nil || rewardErr != nil {
		p.logger.Warn("network rpc unavailable, using fallback parameters",
			zap.NamedError("counts", countErr), zap.NamedError("reward", rewardErr))
		if ctx.Err() == nil {
			promFallbacks.Inc()
		}
		snap.ActivationProbability = p.cfg.Fallback.Probability
		snap.RewardPerActivation = p.cfg.Fallback.Reward
		snap.Source = models.SourceFallback
	} else {
		snap.ActivationProbability = ActivationProbability(counts, hours)
		snap.RewardPerActivation = RewardPerActivation(hourly, counts, hours)
	}

	promActivationProbability.Set(snap.ActivationProbability)
	promRewardPerActivation.Set(snap.RewardPerActivation)
	return snap
}

// NetworkParameters is the estimator-facing view of Snapshot
func (p *NetworkDataProvider) NetworkParameters(ctx context.Context) models.NetworkParameters {
	snap := p.Snapshot(ctx)
	return models.NetworkParameters{
		SpotPrice:                    snap.SpotPrice,
		RewardPerActivation:          snap.RewardPerActivation,
		NetworkActivationProbability: snap.ActivationProbability,
		Source:                       snap.Source,
		FetchedAt:                    snap.Timestamp,
	}
}

// Invalidate drops cached network data so the next call goes upstream
func (p *NetworkDataProvider) Invalidate() {
	for _, key := range []string{KeySpotPrice, KeyNodeCounts, KeyHourlyReward} {
		p.cache.Delete(key)
	}
	p.mu.Lock()
	p.lastFetch = make(map[string]time.Time)
	p.mu.Unlock()
}

// LastFetch reports when each key was last fetched from upstream
func (p *NetworkDataProvider) LastFetch() map[string]time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]time.Time, len(p.lastFetch))
	for k, v := range p.lastFetch {
		out[k] = v
	}
	return out
}

func (p *NetworkDataProvider) touch(key string) {
	p.mu.Lock()
	p.lastFetch[key] = time.Now().UTC()
	p.mu.Unlock()
}

// StartRefresh keeps the cache warm in the background
func (p *NetworkDataProvider) StartRefresh(interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		p.refresh(interval)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.refresh(interval)
			case <-p.stopChan:
				return
			}
		}
	}()
}

func (p *NetworkDataProvider) refresh(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	snap := p.Snapshot(ctx)
	p.logger.Debug("network data refreshed",
		zap.Duration("took", time.Since(start)),
		zap.String("source", snap.Source),
		zap.Int("total_nodes", snap.TotalNodes),
		zap.Float64("probability", snap.ActivationProbability))
}

func (p *NetworkDataProvider) Stop() {
	p.stopOnce.Do(func() { close(p.stopChan) })
}

// ActivationProbability is the chance that one standby node is selected at
// least once per day: 1 - (1 - c/(c+s))^(24/activeHours).
func ActivationProbability(c models.NodeCounts, activeHours float64) float64 {
	if c.TotalNodes <= 0 || activeHours <= 0 {
		return 0
	}
	pool := c.CommunityNodes + c.StandbyNodes
	if pool <= 0 {
		return 0
	}
	perSelection := float64(c.CommunityNodes) / float64(pool)
	selections := hoursPerDay / activeHours
	return 1 - math.Pow(1-perSelection, selections)
}

// RewardPerActivation is what one activation pays: the hourly reward for the
// whole active period. No node data means no reward.
func RewardPerActivation(hourly float64, c models.NodeCounts, activeHours float64) float64 {
	if c.TotalNodes <= 0 || c.CommunityNodes+c.StandbyNodes <= 0 {
		return 0
	}
	if hourly < 0 || math.IsNaN(hourly) || math.IsInf(hourly, 0) {
		return 0
	}
	return hourly * activeHours
}

// combineSources reports the weakest of the given sources
func combineSources(sources ...string) string {
	out := models.SourceLive
	for _, s := range sources {
		switch s {
		case models.SourceFallback:
			return models.SourceFallback
		case models.SourceCached:
			out = models.SourceCached
		}
	}
	return out
}
