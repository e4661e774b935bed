package services

import (
	"fmt"
	"math"

	"shmboard/models"
)

// Fixed day counts. Calendar-accurate months and years are deliberately not used
// so results stay comparable with what users have seen before.
const (
	DaysPerWeek    = 7
	DaysPerMonth   = 30
	DaysPerYear    = 365
	MonthsPerYear  = 12
	percentPerUnit = 100
)

// Estimate derives the reward, cost and return metrics for one set of inputs.
// It performs no I/O and never fails: a missing spot price converts to 0 and a
// zero total investment leaves ROI, APY and NetDailyReturn nil.
func Estimate(in models.EstimatorInput, net models.NetworkParameters) models.EstimatorOutput {
	var out models.EstimatorOutput

	p, warn := resolveProbability(in, net)
	if warn != "" {
		out.Warnings = append(out.Warnings, warn)
	}
	out.Probability = p

	nodePrice, warn := toNative(in.NodePriceFiat, in.NodeCurrency, net.SpotPrice)
	if warn != "" {
		out.Warnings = append(out.Warnings, "node price: "+warn)
	}
	runningCost, warn := toNative(in.RunningCostFiat, in.RunningCurrency, net.SpotPrice)
	if warn != "" {
		out.Warnings = append(out.Warnings, "running cost: "+warn)
	}
	out.NodePriceNative = nodePrice
	out.RunningCostNative = runningCost

	servers := float64(in.NumServers)

	out.DailyReward = p * finite(net.RewardPerActivation) * servers
	out.WeeklyReward = out.DailyReward * DaysPerWeek
	out.MonthlyReward = out.DailyReward * DaysPerMonth
	out.AnnualReward = out.DailyReward * DaysPerYear

	out.MonthlyCost = runningCost * servers
	out.DailyCost = out.MonthlyCost / DaysPerMonth
	out.AnnualCost = out.MonthlyCost * MonthsPerYear

	out.NetAnnualProfit = out.AnnualReward - out.AnnualCost
	out.TotalInvestment = (nodePrice + finite(in.StakePerServer)) * servers

	if out.TotalInvestment > 0 {
		roi := out.NetAnnualProfit / out.TotalInvestment * percentPerUnit
		daily := (out.DailyReward - out.DailyCost) / out.TotalInvestment * percentPerUnit
		apy := roi // no compounding
		out.ROI = &roi
		out.APY = &apy
		out.NetDailyReturn = &daily
	}

	out.Display = displayView(out, in.RunningCurrency, net.SpotPrice)
	return out
}

func resolveProbability(in models.EstimatorInput, net models.NetworkParameters) (float64, string) {
	var p float64
	switch in.ProbabilityMode {
	case models.ProbabilityCustom:
		p = in.CustomProbabilityPercent / percentPerUnit
	case models.ProbabilityWeekly:
		p = in.WeeklyValidationCount / DaysPerWeek
	default:
		p = net.NetworkActivationProbability
	}
	return clampProbability(p)
}

func clampProbability(p float64) (float64, string) {
	switch {
	case math.IsNaN(p):
		return 0, "probability is not a number, using 0"
	case p < 0:
		return 0, fmt.Sprintf("probability %.4f below 0, clamped to 0", p)
	case p > 1:
		return 1, fmt.Sprintf("probability %.4f above 1, clamped to 1", p)
	}
	return p, ""
}

// toNative converts an amount in c into SHM. A currency without a known spot
// price converts to 0.
func toNative(amount float64, c models.Currency, spot models.SpotPrice) (float64, string) {
	amount = finite(amount)
	if c == "" || c.IsNative() {
		return amount, ""
	}
	rate, ok := spot.For(c)
	if !ok {
		return 0, fmt.Sprintf("unsupported currency %s", c)
	}
	if rate <= 0 || math.IsNaN(rate) {
		if amount == 0 {
			return 0, ""
		}
		return 0, fmt.Sprintf("no %s spot price, converted as 0", c)
	}
	return amount / rate, ""
}

// fromNative converts SHM into c. Unknown or zero rates give exactly 0.
func fromNative(amount float64, c models.Currency, spot models.SpotPrice) float64 {
	if c == "" || c.IsNative() {
		return amount
	}
	rate, ok := spot.For(c)
	if !ok || rate <= 0 || math.IsNaN(rate) {
		return 0
	}
	return amount * rate
}

func displayView(out models.EstimatorOutput, c models.Currency, spot models.SpotPrice) models.FiatView {
	if c == "" {
		c = models.CurrencySHM
	}
	conv := func(v float64) float64 { return fromNative(v, c, spot) }
	return models.FiatView{
		Currency:        c,
		Symbol:          c.Symbol(),
		DailyReward:     conv(out.DailyReward),
		WeeklyReward:    conv(out.WeeklyReward),
		MonthlyReward:   conv(out.MonthlyReward),
		AnnualReward:    conv(out.AnnualReward),
		DailyCost:       conv(out.DailyCost),
		MonthlyCost:     conv(out.MonthlyCost),
		AnnualCost:      conv(out.AnnualCost),
		NetAnnualProfit: conv(out.NetAnnualProfit),
		TotalInvestment: conv(out.TotalInvestment),
	}
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
