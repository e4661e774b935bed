package services

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"shmboard/config"
	"shmboard/models"
)

// CacheMode indicates which cache backend is active
type CacheMode string

const (
	CacheModeRedis    CacheMode = "redis"
	CacheModeInMemory CacheMode = "in-memory"
)

const keyPrefix = "shm:"

// Cache keys
const (
	KeySpotPrice    = keyPrefix + "price"
	KeyNodeCounts   = keyPrefix + "network:counts"
	KeyHourlyReward = keyPrefix + "network:reward"
	keyValidators   = keyPrefix + "validators:"
)

func ValidatorsKey(p models.Period) string {
	return keyValidators + string(p)
}

// CacheItem for in-memory fallback
type CacheItem struct {
	Data      interface{}
	ExpiresAt time.Time
}

// CacheService stores upstream answers in Redis when available and in memory
// otherwise. Every value is also kept in memory past its TTL so callers can fall
// back to the last known value when an upstream fails.
type CacheService struct {
	cfg    *config.Config
	logger *zap.Logger

	// Redis
	redis       *redis.Client
	redisCtx    context.Context
	redisCancel context.CancelFunc
	mode        CacheMode
	modeMutex   sync.RWMutex

	// In-memory fallback
	inMemoryStore sync.Map

	stopOnce sync.Once
	stopChan chan struct{}
}

func NewCacheService(cfg *config.Config, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	cs := &CacheService{
		cfg:         cfg,
		logger:      logger,
		redisCtx:    ctx,
		redisCancel: cancel,
		stopChan:    make(chan struct{}),
		mode:        CacheModeInMemory,
	}

	if cfg.Redis.Enabled {
		cs.connectRedis()
	} else {
		logger.Info("redis disabled in config, using in-memory cache only")
	}

	return cs
}

func (cs *CacheService) connectRedis() {
	if cs.cfg.Redis.Address == "" {
		cs.logger.Warn("redis address not configured, using in-memory cache")
		return
	}

	options := &redis.Options{
		Addr:         cs.cfg.Redis.Address,
		Password:     cs.cfg.Redis.Password,
		DB:           cs.cfg.Redis.DB,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		PoolTimeout:  10 * time.Second,
	}

	if cs.cfg.Redis.UseTLS {
		options.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	cs.redis = redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := cs.redis.Ping(ctx).Err(); err != nil {
		cs.logger.Warn("redis connection failed, running in-memory",
			zap.String("address", cs.cfg.Redis.Address), zap.Error(err))
		cs.setMode(CacheModeInMemory)
		return
	}

	cs.logger.Info("redis connected", zap.String("address", cs.cfg.Redis.Address))
	cs.setMode(CacheModeRedis)
}

func (cs *CacheService) setMode(mode CacheMode) {
	cs.modeMutex.Lock()
	defer cs.modeMutex.Unlock()
	if cs.mode != mode {
		cs.logger.Info("cache mode changed", zap.String("mode", string(mode)))
	}
	cs.mode = mode
}

func (cs *CacheService) getMode() CacheMode {
	cs.modeMutex.RLock()
	defer cs.modeMutex.RUnlock()
	return cs.mode
}

// StartHealthCheck watches Redis and switches modes when it goes away or comes back
func (cs *CacheService) StartHealthCheck(interval time.Duration) {
	if cs.redis == nil {
		return
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cs.checkRedisHealth()
			case <-cs.stopChan:
				return
			}
		}
	}()
}

func (cs *CacheService) Stop() {
	cs.stopOnce.Do(func() {
		close(cs.stopChan)
		cs.redisCancel()
		if cs.redis != nil {
			cs.redis.Close()
		}
	})
}

func (cs *CacheService) checkRedisHealth() {
	if cs.redis == nil {
		return
	}

	mode := cs.getMode()
	ctx, cancel := context.WithTimeout(cs.redisCtx, 2*time.Second)
	defer cancel()

	err := cs.redis.Ping(ctx).Err()

	if mode == CacheModeRedis && err != nil {
		cs.logger.Warn("redis health check failed, switching to in-memory", zap.Error(err))
		cs.setMode(CacheModeInMemory)
	} else if mode == CacheModeInMemory && err == nil {
		cs.logger.Info("redis reachable again, switching back")
		cs.syncInMemoryToRedis()
		cs.setMode(CacheModeRedis)
	}
}

func (cs *CacheService) syncInMemoryToRedis() {
	synced := 0
	cs.inMemoryStore.Range(func(key, value interface{}) bool {
		item := value.(*CacheItem)
		if ttl := time.Until(item.ExpiresAt); ttl > 0 {
			if err := cs.setRedis(key.(string), item.Data, ttl); err == nil {
				synced++
			}
		}
		return true
	})
	cs.logger.Info("synced in-memory cache to redis", zap.Int("items", synced))
}

// ============================================
// Generic Set/Get with Redis + In-Memory
// ============================================

// Set stores data in the active backend and always in memory
func (cs *CacheService) Set(key string, data interface{}, ttl time.Duration) {
	if cs.getMode() == CacheModeRedis {
		if err := cs.setRedis(key, data, ttl); err != nil {
			cs.logger.Warn("redis SET failed", zap.String("key", key), zap.Error(err))
		}
	}
	cs.setInMemory(key, data, ttl)
}

// Get returns a fresh value
func (cs *CacheService) Get(key string) (interface{}, bool) {
	data, stale, found := cs.GetWithStale(key)
	if !found || stale {
		return nil, false
	}
	return data, true
}

// GetWithStale returns (data, stale, found). Expired in-memory entries are
// still returned, flagged stale.
func (cs *CacheService) GetWithStale(key string) (interface{}, bool, bool) {
	if cs.getMode() == CacheModeRedis {
		data, found, err := cs.getRedis(key)
		if err != nil {
			cs.logger.Debug("redis GET failed", zap.String("key", key), zap.Error(err))
		} else if found {
			// Redis manages TTL, so if found it's fresh
			return data, false, true
		}
	}
	return cs.getInMemoryWithStale(key)
}

func (cs *CacheService) Delete(key string) {
	if cs.getMode() == CacheModeRedis {
		ctx, cancel := context.WithTimeout(cs.redisCtx, 2*time.Second)
		defer cancel()
		cs.redis.Del(ctx, key)
	}
	cs.inMemoryStore.Delete(key)
}

// ============================================
// Redis Operations
// ============================================

func (cs *CacheService) setRedis(key string, data interface{}, ttl time.Duration) error {
	if cs.redis == nil {
		return errors.New("redis client not initialized")
	}

	ctx, cancel := context.WithTimeout(cs.redisCtx, 2*time.Second)
	defer cancel()

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	return cs.redis.Set(ctx, key, jsonData, ttl).Err()
}

func (cs *CacheService) getRedis(key string) (interface{}, bool, error) {
	if cs.redis == nil {
		return nil, false, errors.New("redis client not initialized")
	}

	ctx, cancel := context.WithTimeout(cs.redisCtx, 2*time.Second)
	defer cancel()

	jsonData, err := cs.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	data, err := decodeCached(key, jsonData)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// decodeCached restores the concrete type stored under key
func decodeCached(key string, raw []byte) (interface{}, error) {
	switch {
	case key == KeySpotPrice:
		var price models.SpotPrice
		err := json.Unmarshal(raw, &price)
		return price, err
	case key == KeyNodeCounts:
		var counts models.NodeCounts
		err := json.Unmarshal(raw, &counts)
		return counts, err
	case key == KeyHourlyReward:
		var reward float64
		err := json.Unmarshal(raw, &reward)
		return reward, err
	case strings.HasPrefix(key, keyValidators):
		var validators []models.Validator
		err := json.Unmarshal(raw, &validators)
		return validators, err
	default:
		var data interface{}
		err := json.Unmarshal(raw, &data)
		return data, err
	}
}

// ============================================
// In-Memory Operations (Fallback)
// ============================================

func (cs *CacheService) setInMemory(key string, data interface{}, ttl time.Duration) {
	cs.inMemoryStore.Store(key, &CacheItem{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
	})
}

func (cs *CacheService) getInMemoryWithStale(key string) (interface{}, bool, bool) {
	val, ok := cs.inMemoryStore.Load(key)
	if !ok {
		return nil, false, false
	}

	item := val.(*CacheItem)
	isStale := time.Now().After(item.ExpiresAt)
	return item.Data, isStale, true
}

// ============================================
// Typed Helper Methods
// ============================================

func (cs *CacheService) GetSpotPrice(allowStale bool) (models.SpotPrice, bool, bool) {
	data, stale, found := cs.GetWithStale(KeySpotPrice)
	if !found || (!allowStale && stale) {
		return models.SpotPrice{}, false, false
	}
	price, ok := data.(models.SpotPrice)
	return price, stale, ok
}

func (cs *CacheService) GetNodeCounts(allowStale bool) (models.NodeCounts, bool, bool) {
	data, stale, found := cs.GetWithStale(KeyNodeCounts)
	if !found || (!allowStale && stale) {
		return models.NodeCounts{}, false, false
	}
	counts, ok := data.(models.NodeCounts)
	return counts, stale, ok
}

func (cs *CacheService) GetHourlyReward(allowStale bool) (float64, bool, bool) {
	data, stale, found := cs.GetWithStale(KeyHourlyReward)
	if !found || (!allowStale && stale) {
		return 0, false, false
	}
	reward, ok := data.(float64)
	return reward, stale, ok
}

func (cs *CacheService) GetValidators(p models.Period, allowStale bool) ([]models.Validator, bool, bool) {
	data, stale, found := cs.GetWithStale(ValidatorsKey(p))
	if !found || (!allowStale && stale) {
		return nil, false, false
	}
	validators, ok := data.([]models.Validator)
	return validators, stale, ok
}

// ============================================
// Utility Methods
// ============================================

func (cs *CacheService) GetCacheMode() CacheMode {
	return cs.getMode()
}

// ClearCache drops every key this service owns
func (cs *CacheService) ClearCache() error {
	var redisErr error
	if cs.getMode() == CacheModeRedis && cs.redis != nil {
		ctx, cancel := context.WithTimeout(cs.redisCtx, 5*time.Second)
		defer cancel()

		iter := cs.redis.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
		deleted := 0
		for iter.Next(ctx) {
			if err := cs.redis.Del(ctx, iter.Val()).Err(); err == nil {
				deleted++
			}
		}
		redisErr = iter.Err()
		cs.logger.Info("redis cache cleared", zap.Int("keys", deleted))
	}

	cs.inMemoryStore.Range(func(key, _ interface{}) bool {
		cs.inMemoryStore.Delete(key)
		return true
	})
	cs.logger.Info("in-memory cache cleared")

	if redisErr != nil {
		return fmt.Errorf("scan redis keys: %w", redisErr)
	}
	return nil
}

func (cs *CacheService) GetCacheStats() map[string]interface{} {
	mode := cs.getMode()
	stats := map[string]interface{}{
		"mode":    string(mode),
		"enabled": cs.cfg.Redis.Enabled,
	}

	if mode == CacheModeRedis && cs.redis != nil {
		ctx, cancel := context.WithTimeout(cs.redisCtx, 2*time.Second)
		defer cancel()

		if dbSize, err := cs.redis.DBSize(ctx).Result(); err == nil {
			stats["redis_keys"] = dbSize
		}
	}

	inMemCount, fresh := 0, 0
	now := time.Now()
	cs.inMemoryStore.Range(func(_, value interface{}) bool {
		inMemCount++
		if now.Before(value.(*CacheItem).ExpiresAt) {
			fresh++
		}
		return true
	})
	stats["in_memory_keys"] = inMemCount
	stats["in_memory_fresh"] = fresh

	return stats
}
