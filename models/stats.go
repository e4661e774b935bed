package models

import "time"

// NodeCounts is what the network RPC reports about validator population
type NodeCounts struct {
	TotalNodes     int       `json:"total_nodes"`
	CommunityNodes int       `json:"community_nodes"`
	StandbyNodes   int       `json:"standby_nodes"`
	CycleDuration  int64     `json:"cycle_duration"` // seconds
	FetchedAt      time.Time `json:"fetched_at"`
}

// NetworkSnapshot is one point of network history
type NetworkSnapshot struct {
	Timestamp             time.Time `json:"timestamp" bson:"timestamp"`
	TotalNodes            int       `json:"total_nodes" bson:"total_nodes"`
	CommunityNodes        int       `json:"community_nodes" bson:"community_nodes"`
	StandbyNodes          int       `json:"standby_nodes" bson:"standby_nodes"`
	CycleDuration         int64     `json:"cycle_duration" bson:"cycle_duration"`
	HourlyReward          float64   `json:"hourly_reward" bson:"hourly_reward"`
	RewardPerActivation   float64   `json:"reward_per_activation" bson:"reward_per_activation"`
	ActivationProbability float64   `json:"activation_probability" bson:"activation_probability"`
	SpotPrice             SpotPrice `json:"spot_price" bson:"spot_price"`
	Source                string    `json:"source" bson:"source"`
}

// DailyNetworkAverage is one day of aggregated snapshots
type DailyNetworkAverage struct {
	Date            string  `json:"date" bson:"date"` // YYYY-MM-DD, UTC
	AvgHourlyReward float64 `json:"avg_hourly_reward" bson:"avg_hourly_reward"`
	AvgProbability  float64 `json:"avg_probability" bson:"avg_probability"`
	AvgTotalNodes   float64 `json:"avg_total_nodes" bson:"avg_total_nodes"`
	AvgStandbyNodes float64 `json:"avg_standby_nodes" bson:"avg_standby_nodes"`
	AvgPriceUSD     float64 `json:"avg_price_usd" bson:"avg_price_usd"`
	Samples         int     `json:"samples" bson:"samples"`
}
