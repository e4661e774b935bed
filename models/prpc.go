package models

import "encoding/json"

// JSON-RPC 2.0 Request
type RPCRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      int         `json:"id"`
}

// JSON-RPC 2.0 Response
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
	ID      int             `json:"id"`
}

// JSON-RPC 2.0 Error
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ============================================
// shardeum_getNodeList
// ============================================
type NodeListParams struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type NodeListResult struct {
	TotalNodes *int           `json:"totalNodes"`
	Nodes      []NodeListItem `json:"nodes"`
}

type NodeListItem struct {
	ID             string `json:"id,omitempty"`
	IP             string `json:"ip,omitempty"`
	Port           int    `json:"port,omitempty"`
	PublicKey      string `json:"publicKey,omitempty"`
	FoundationNode bool   `json:"foundationNode"`
}

// ============================================
// shardeum_getCycleInfo
// ============================================
type CycleInfoResult struct {
	CycleInfo *CycleInfo `json:"cycleInfo"`
}

type CycleInfo struct {
	Counter  int64           `json:"counter"`
	Duration *int64          `json:"duration"` // seconds
	Nodes    *CycleNodeCount `json:"nodes"`
}

type CycleNodeCount struct {
	Active  int  `json:"active"`
	Standby *int `json:"standby"`
	Syncing int  `json:"syncing"`
}

// ============================================
// shardeum_getNetworkAccount
// ============================================
type NetworkAccountResult struct {
	Reward *NetworkReward `json:"reward"`
}

type NetworkReward struct {
	Amount *string `json:"amount"` // hex encoded wei, paid per active hour
}

// ============================================
// CoinGecko simple/price
// ============================================
type CoinPrice struct {
	USD *float64 `json:"usd"`
	EUR *float64 `json:"eur"`
	INR *float64 `json:"inr"`
}
