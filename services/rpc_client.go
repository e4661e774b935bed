package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ssgreg/repeat"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"shmboard/config"
	"shmboard/models"
)

var weiPerSHM = decimal.New(1, 18)

// ShardeumClient talks JSON-RPC 2.0 to a Shardeum network endpoint
type ShardeumClient struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	baseDelay  time.Duration
	logger     *zap.Logger
}

func NewShardeumClient(cfg *config.Config, logger *zap.Logger) *ShardeumClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := 10 * time.Second
	if t := cfg.ShardeumTimeoutDuration(); t > 0 {
		timeout = t
	}

	limit := rate.Inf
	if cfg.Shardeum.RatePerSecond > 0 {
		limit = rate.Limit(cfg.Shardeum.RatePerSecond)
	}

	maxRetries := cfg.Shardeum.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	return &ShardeumClient{
		endpoint: strings.TrimRight(cfg.Shardeum.RPCURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     30 * time.Second,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
			},
		},
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: maxRetries,
		baseDelay:  200 * time.Millisecond,
		logger:     logger,
	}
}

// Call performs a single JSON-RPC request
func (c *ShardeumClient) Call(ctx context.Context, method string, params interface{}) (*models.RPCResponse, error) {
	if params == nil {
		params = []interface{}{}
	}
	reqBody := models.RPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{Method: method, Code: resp.StatusCode}
	}

	var rpcResp models.RPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", method, err)
	}

	if rpcResp.Error != nil {
		return &rpcResp, fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if len(rpcResp.Result) == 0 || string(rpcResp.Result) == "null" {
		return &rpcResp, fmt.Errorf("%s: empty result", method)
	}

	return &rpcResp, nil
}

// CallWithRetry retries transient failures with full-jitter backoff
func (c *ShardeumClient) CallWithRetry(ctx context.Context, method string, params interface{}) (*models.RPCResponse, error) {
	var (
		result  *models.RPCResponse
		lastErr error
	)

	err := repeat.Repeat(
		repeat.Fn(func() error {
			if ctx.Err() != nil {
				lastErr = ctx.Err()
				return lastErr
			}
			resp, err := c.Call(ctx, method, params)
			if err == nil {
				result = resp
				return nil
			}
			lastErr = err
			if isNonRetryableError(err) {
				return err
			}
			return repeat.HintTemporary(err)
		}),
		repeat.StopOnSuccess(),
		repeat.LimitMaxTries(c.maxRetries),
		repeat.FnOnError(func(err error) error {
			c.logger.Debug("rpc call failed", zap.String("method", method), zap.Error(err))
			return err
		}),
		repeat.WithDelay(
			repeat.SetContextHintStop(),
			(&repeat.FullJitterBackoffBuilder{
				BaseDelay: c.baseDelay,
				MaxDelay:  8 * c.baseDelay,
			}).Set(),
		),
	)
	if result != nil {
		return result, nil
	}
	if lastErr == nil {
		lastErr = err
	}
	return nil, fmt.Errorf("%s failed after retries: %w", method, lastErr)
}

// GetNodeList returns one page of the active node list
func (c *ShardeumClient) GetNodeList(ctx context.Context, page, limit int) (*models.NodeListResult, error) {
	params := []models.NodeListParams{{Page: page, Limit: limit}}
	resp, err := c.CallWithRetry(ctx, "shardeum_getNodeList", params)
	if err != nil {
		return nil, err
	}

	var result models.NodeListResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal node list: %w", err)
	}
	if result.TotalNodes == nil {
		return nil, errors.New("node list response missing totalNodes")
	}
	return &result, nil
}

func (c *ShardeumClient) GetCycleInfo(ctx context.Context) (*models.CycleInfo, error) {
	resp, err := c.CallWithRetry(ctx, "shardeum_getCycleInfo", []interface{}{nil})
	if err != nil {
		return nil, err
	}

	var result models.CycleInfoResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cycle info: %w", err)
	}
	if result.CycleInfo == nil || result.CycleInfo.Nodes == nil || result.CycleInfo.Nodes.Standby == nil {
		return nil, errors.New("cycle info response missing standby count")
	}
	return result.CycleInfo, nil
}

// GetHourlyReward reads the per-active-hour node reward from the network account, in SHM
func (c *ShardeumClient) GetHourlyReward(ctx context.Context) (float64, error) {
	resp, err := c.CallWithRetry(ctx, "shardeum_getNetworkAccount", nil)
	if err != nil {
		return 0, err
	}

	var result models.NetworkAccountResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return 0, fmt.Errorf("failed to unmarshal network account: %w", err)
	}
	if result.Reward == nil || result.Reward.Amount == nil {
		return 0, errors.New("network account response missing reward amount")
	}
	return ParseWeiHex(*result.Reward.Amount)
}

// ParseWeiHex converts a hex wei amount ("0x..." or bare hex) into SHM
func ParseWeiHex(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return 0, errors.New("empty wei amount")
	}

	wei, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return 0, fmt.Errorf("invalid hex wei amount %q", s)
	}
	if wei.Sign() < 0 {
		return 0, fmt.Errorf("negative wei amount %q", s)
	}

	shm, _ := decimal.NewFromBigInt(wei, 0).Div(weiPerSHM).Float64()
	return shm, nil
}

type statusError struct {
	Method string
	Code   int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http error %d from %s", e.Code, e.Method)
}

func (e *statusError) Temporary() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

func isNonRetryableError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var se *statusError
	if errors.As(err, &se) {
		return !se.Temporary()
	}

	errStr := err.Error()
	nonRetryable := []string{
		"Parse error",
		"Invalid Request",
		"Method not found",
		"Invalid params",
		"connection refused",
		"failed to marshal",
		"failed to decode",
	}

	for _, msg := range nonRetryable {
		if strings.Contains(errStr, msg) {
			return true
		}
	}
	return false
}
