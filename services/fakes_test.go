package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"shmboard/config"
	"shmboard/models"
)

// fakeShardeum is an in-process JSON-RPC endpoint
type fakeShardeum struct {
	mu         sync.Mutex
	total      int
	nodes      []models.NodeListItem
	standby    int
	duration   int64
	rewardHex  string
	failStatus int // non-zero: answer every call with this status
	delay      time.Duration

	calls map[string]*int32
	last  map[string]json.RawMessage
}

func newFakeShardeum() *fakeShardeum {
	return &fakeShardeum{
		total: 4,
		nodes: []models.NodeListItem{
			{ID: "a", FoundationNode: true},
			{ID: "b", FoundationNode: false},
			{ID: "c", FoundationNode: false},
			{ID: "d", FoundationNode: true},
		},
		standby:   2,
		duration:  60,
		rewardHex: "0x4563918244f40000", // 5 SHM
		calls: map[string]*int32{
			"shardeum_getNodeList":       new(int32),
			"shardeum_getCycleInfo":      new(int32),
			"shardeum_getNetworkAccount": new(int32),
		},
		last: map[string]json.RawMessage{},
	}
}

func (f *fakeShardeum) count(method string) int {
	return int(atomic.LoadInt32(f.calls[method]))
}

func (f *fakeShardeum) lastParams(method string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.last[method])
}

func (f *fakeShardeum) setFail(status int) {
	f.mu.Lock()
	f.failStatus = status
	f.mu.Unlock()
}

func (f *fakeShardeum) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if c, ok := f.calls[req.Method]; ok {
		atomic.AddInt32(c, 1)
	}

	f.mu.Lock()
	f.last[req.Method] = req.Params
	fail, delay := f.failStatus, f.delay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if fail != 0 {
		w.WriteHeader(fail)
		return
	}

	var result interface{}
	switch req.Method {
	case "shardeum_getNodeList":
		result = map[string]interface{}{"totalNodes": f.total, "nodes": f.nodes}
	case "shardeum_getCycleInfo":
		result = map[string]interface{}{"cycleInfo": map[string]interface{}{
			"counter":  100,
			"duration": f.duration,
			"nodes":    map[string]interface{}{"active": f.total, "standby": f.standby, "syncing": 0},
		}}
	case "shardeum_getNetworkAccount":
		result = map[string]interface{}{"reward": map[string]interface{}{"amount": f.rewardHex}}
	default:
		writeJSON(w, map[string]interface{}{
			"jsonrpc": "2.0", "id": 1,
			"error": map[string]interface{}{"code": -32601, "message": "Method not found"},
		})
		return
	}
	writeJSON(w, map[string]interface{}{"jsonrpc": "2.0", "id": 1, "result": result})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// fakePrices serves a CoinGecko style simple/price answer
type fakePrices struct {
	calls int32
	fail  int32
	body  string
}

func (f *fakePrices) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&f.calls, 1)
	if atomic.LoadInt32(&f.fail) != 0 {
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(f.body))
}

func testConfig(t *testing.T, rpcURL, priceURL string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Shardeum.RPCURL = rpcURL
	cfg.Shardeum.MaxRetries = 1
	cfg.Shardeum.RatePerSecond = 0
	cfg.Shardeum.Timeout = 2
	cfg.Price.URL = priceURL
	cfg.Price.Timeout = 2
	return cfg
}

type testEnv struct {
	rpc      *fakeShardeum
	prices   *fakePrices
	cfg      *config.Config
	cache    *CacheService
	provider *NetworkDataProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	rpc := newFakeShardeum()
	rpcSrv := httptest.NewServer(rpc)
	t.Cleanup(rpcSrv.Close)

	prices := &fakePrices{body: `{"shardeum":{"usd":0.5,"eur":0.4,"inr":40}}`}
	priceSrv := httptest.NewServer(prices)
	t.Cleanup(priceSrv.Close)

	cfg := testConfig(t, rpcSrv.URL, priceSrv.URL)
	cache := NewCacheService(cfg, nil)
	t.Cleanup(cache.Stop)

	client := NewShardeumClient(cfg, nil)
	client.baseDelay = time.Millisecond
	priceClient := NewPriceClient(cfg)
	priceClient.client.baseDelay = time.Millisecond

	return &testEnv{
		rpc:      rpc,
		prices:   prices,
		cfg:      cfg,
		cache:    cache,
		provider: NewNetworkDataProvider(cfg, client, priceClient, cache, nil),
	}
}
