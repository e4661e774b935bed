package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// MinStakePerServer is the protocol minimum stake per validator, in SHM.
const MinStakePerServer = 2400.0

// Currency is a display or input currency
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyINR Currency = "INR"
	CurrencySHM Currency = "SHM"
)

var currencySymbols = map[Currency]string{
	CurrencyUSD: "$",
	CurrencyEUR: "€",
	CurrencyINR: "₹",
	CurrencySHM: "SHM",
}

func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := currencySymbols[c]; !ok {
		return "", fmt.Errorf("unknown currency %q", s)
	}
	return c, nil
}

func (c Currency) Symbol() string {
	if sym, ok := currencySymbols[c]; ok {
		return sym
	}
	return string(c)
}

func (c Currency) IsNative() bool {
	return c == CurrencySHM
}

// ProbabilityMode selects where the daily activation probability comes from
type ProbabilityMode string

const (
	ProbabilityNetwork ProbabilityMode = "network" // network-wide estimate
	ProbabilityCustom  ProbabilityMode = "custom"  // user percent
	ProbabilityWeekly  ProbabilityMode = "weekly"  // validations per week
)

func ParseProbabilityMode(s string) (ProbabilityMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "network", "networkestimate", "community":
		return ProbabilityNetwork, nil
	case "custom", "custompercent":
		return ProbabilityCustom, nil
	case "weekly", "weeklyvalidationcount":
		return ProbabilityWeekly, nil
	}
	return "", fmt.Errorf("unknown probability mode %q", s)
}

// EstimatorInput is what a user enters into the calculator
type EstimatorInput struct {
	NodePriceFiat            float64         `json:"node_price"`
	NodeCurrency             Currency        `json:"node_currency"`
	NumServers               int             `json:"num_servers"`
	RunningCostFiat          float64         `json:"running_cost"`
	RunningCurrency          Currency        `json:"running_currency"`
	StakePerServer           float64         `json:"stake_per_server"`
	ProbabilityMode          ProbabilityMode `json:"probability_mode"`
	CustomProbabilityPercent float64         `json:"custom_probability_percent"`
	WeeklyValidationCount    float64         `json:"weekly_validation_count"`
}

// Sanitize clamps user input to the documented minimums before it reaches the
// estimator. Non-finite or negative amounts become 0.
func (in *EstimatorInput) Sanitize() {
	in.NodePriceFiat = nonNegative(in.NodePriceFiat)
	in.RunningCostFiat = nonNegative(in.RunningCostFiat)
	in.CustomProbabilityPercent = nonNegative(in.CustomProbabilityPercent)
	in.WeeklyValidationCount = nonNegative(in.WeeklyValidationCount)

	if in.NumServers < 1 {
		in.NumServers = 1
	}
	if math.IsNaN(in.StakePerServer) || in.StakePerServer < MinStakePerServer {
		in.StakePerServer = MinStakePerServer
	}
	if in.NodeCurrency == "" {
		in.NodeCurrency = CurrencyUSD
	}
	if in.RunningCurrency == "" {
		in.RunningCurrency = CurrencyUSD
	}
	if in.ProbabilityMode == "" {
		in.ProbabilityMode = ProbabilityNetwork
	}
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// SpotPrice is the fiat price of one SHM. Zero means unknown.
type SpotPrice struct {
	USD float64 `json:"usd" bson:"usd"`
	EUR float64 `json:"eur" bson:"eur"`
	INR float64 `json:"inr" bson:"inr"`
}

var spotAccessors = map[Currency]func(SpotPrice) float64{
	CurrencyUSD: func(p SpotPrice) float64 { return p.USD },
	CurrencyEUR: func(p SpotPrice) float64 { return p.EUR },
	CurrencyINR: func(p SpotPrice) float64 { return p.INR },
	CurrencySHM: func(SpotPrice) float64 { return 1 },
}

// For returns the fiat price of one SHM in c. SHM always maps to 1.
// The bool is false for currencies with no accessor.
func (p SpotPrice) For(c Currency) (float64, bool) {
	fn, ok := spotAccessors[c]
	if !ok {
		return 0, false
	}
	return fn(p), true
}

func (p SpotPrice) IsZero() bool {
	return p.USD == 0 && p.EUR == 0 && p.INR == 0
}

// Sources for NetworkParameters
const (
	SourceLive     = "live"
	SourceCached   = "cached"
	SourceFallback = "fallback"
)

// NetworkParameters is the externally sourced half of an estimate
type NetworkParameters struct {
	SpotPrice                    SpotPrice `json:"spot_price"`
	RewardPerActivation          float64   `json:"reward_per_activation"`
	NetworkActivationProbability float64   `json:"network_activation_probability"`
	Source                       string    `json:"source"`
	FetchedAt                    time.Time `json:"fetched_at"`
}

// FiatView is an estimate converted into the display currency
type FiatView struct {
	Currency        Currency `json:"currency"`
	Symbol          string   `json:"symbol"`
	DailyReward     float64  `json:"daily_reward"`
	WeeklyReward    float64  `json:"weekly_reward"`
	MonthlyReward   float64  `json:"monthly_reward"`
	AnnualReward    float64  `json:"annual_reward"`
	DailyCost       float64  `json:"daily_cost"`
	MonthlyCost     float64  `json:"monthly_cost"`
	AnnualCost      float64  `json:"annual_cost"`
	NetAnnualProfit float64  `json:"net_annual_profit"`
	TotalInvestment float64  `json:"total_investment"`
}

// EstimatorOutput holds the derived metrics. All plain amounts are in SHM.
type EstimatorOutput struct {
	Probability       float64 `json:"probability"`
	NodePriceNative   float64 `json:"node_price_shm"`
	RunningCostNative float64 `json:"running_cost_shm"`

	DailyReward   float64 `json:"daily_reward_shm"`
	WeeklyReward  float64 `json:"weekly_reward_shm"`
	MonthlyReward float64 `json:"monthly_reward_shm"`
	AnnualReward  float64 `json:"annual_reward_shm"`

	DailyCost   float64 `json:"daily_cost_shm"`
	MonthlyCost float64 `json:"monthly_cost_shm"`
	AnnualCost  float64 `json:"annual_cost_shm"`

	NetAnnualProfit float64 `json:"net_annual_profit_shm"`
	TotalInvestment float64 `json:"total_investment_shm"`

	// nil when TotalInvestment is zero
	ROI            *float64 `json:"roi"`
	APY            *float64 `json:"apy"`
	NetDailyReturn *float64 `json:"net_daily_return"`

	Display  FiatView `json:"display"`
	Warnings []string `json:"warnings,omitempty"`
}

// RewardsChart is the weekly/monthly series for the rewards bar chart
type RewardsChart struct {
	Labels   []string  `json:"labels"`
	Values   []float64 `json:"values"`
	Currency Currency  `json:"currency"`
}

// CalculationResult is returned by the calculator endpoint
type CalculationResult struct {
	Input   EstimatorInput    `json:"input"`
	Network NetworkParameters `json:"network"`
	Output  EstimatorOutput   `json:"output"`
	Chart   RewardsChart      `json:"chart"`
}
