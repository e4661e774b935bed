package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shmboard/models"
)

func baseInput() models.EstimatorInput {
	return models.EstimatorInput{
		NodePriceFiat:   0,
		NodeCurrency:    models.CurrencyUSD,
		NumServers:      1,
		RunningCostFiat: 0,
		RunningCurrency: models.CurrencyUSD,
		StakePerServer:  2400,
		ProbabilityMode: models.ProbabilityCustom,
	}
}

func baseNetwork() models.NetworkParameters {
	return models.NetworkParameters{
		SpotPrice:                    models.SpotPrice{USD: 0.06, EUR: 0.055, INR: 5},
		RewardPerActivation:          40,
		NetworkActivationProbability: 0.55,
	}
}

func TestEstimateConcreteScenario(t *testing.T) {
	in := baseInput()
	in.CustomProbabilityPercent = 100

	out := Estimate(in, baseNetwork())

	assert.InDelta(t, 40, out.DailyReward, 1e-9)
	assert.InDelta(t, 280, out.WeeklyReward, 1e-9)
	assert.InDelta(t, 1200, out.MonthlyReward, 1e-9)
	assert.InDelta(t, 14600, out.AnnualReward, 1e-9)
	assert.InDelta(t, 2400, out.TotalInvestment, 1e-9)
	assert.InDelta(t, 14600, out.NetAnnualProfit, 1e-9)
	require.NotNil(t, out.ROI)
	assert.InDelta(t, 608.33, *out.ROI, 0.01)
	require.NotNil(t, out.NetDailyReturn)
	assert.InDelta(t, 40.0/2400*100, *out.NetDailyReturn, 1e-9)

	assert.Equal(t, models.CurrencyUSD, out.Display.Currency)
	assert.Equal(t, "$", out.Display.Symbol)
	assert.InDelta(t, 14600*0.06, out.Display.NetAnnualProfit, 1e-9)
	assert.InDelta(t, 1200*0.06, out.Display.MonthlyReward, 1e-9)
	assert.Empty(t, out.Warnings)
}

func TestEstimateZeroInvestment(t *testing.T) {
	in := baseInput()
	in.StakePerServer = 0
	in.NodePriceFiat = 0
	in.CustomProbabilityPercent = 50

	out := Estimate(in, baseNetwork())

	assert.Zero(t, out.TotalInvestment)
	assert.Nil(t, out.ROI)
	assert.Nil(t, out.APY)
	assert.Nil(t, out.NetDailyReturn)
	// rewards still compute
	assert.InDelta(t, 20, out.DailyReward, 1e-9)
}

func TestEstimateAPYEqualsROI(t *testing.T) {
	cases := []struct {
		name string
		mod  func(*models.EstimatorInput)
	}{
		{"defaults", func(in *models.EstimatorInput) {}},
		{"hardware in EUR", func(in *models.EstimatorInput) {
			in.NodePriceFiat = 150
			in.NodeCurrency = models.CurrencyEUR
		}},
		{"running cost in INR", func(in *models.EstimatorInput) {
			in.RunningCostFiat = 900
			in.RunningCurrency = models.CurrencyINR
		}},
		{"many servers", func(in *models.EstimatorInput) {
			in.NumServers = 12
			in.RunningCostFiat = 20
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := baseInput()
			in.CustomProbabilityPercent = 30
			tc.mod(&in)

			out := Estimate(in, baseNetwork())
			require.NotNil(t, out.ROI)
			require.NotNil(t, out.APY)
			require.NotNil(t, out.NetDailyReturn)
			assert.Equal(t, *out.ROI, *out.APY)
			assert.False(t, math.IsNaN(*out.ROI) || math.IsInf(*out.ROI, 0))
			assert.False(t, math.IsNaN(*out.NetDailyReturn) || math.IsInf(*out.NetDailyReturn, 0))
		})
	}
}

func TestEstimateDeterministic(t *testing.T) {
	in := baseInput()
	in.NodePriceFiat = 120
	in.RunningCostFiat = 15
	in.NumServers = 3
	in.ProbabilityMode = models.ProbabilityNetwork
	net := baseNetwork()

	first := Estimate(in, net)
	second := Estimate(in, net)
	assert.Equal(t, first, second)
}

func TestEstimateDoesNotMutateArguments(t *testing.T) {
	in := baseInput()
	in.CustomProbabilityPercent = 250
	net := baseNetwork()
	inCopy, netCopy := in, net

	Estimate(in, net)

	assert.Equal(t, inCopy, in)
	assert.Equal(t, netCopy, net)
}

func TestEstimateMissingSpotPrice(t *testing.T) {
	in := baseInput()
	in.NodePriceFiat = 100
	in.RunningCostFiat = 10
	in.CustomProbabilityPercent = 50
	net := baseNetwork()
	net.SpotPrice = models.SpotPrice{}

	out := Estimate(in, net)

	assert.Equal(t, 0.0, out.NodePriceNative)
	assert.Equal(t, 0.0, out.RunningCostNative)
	assert.Equal(t, 0.0, out.Display.NetAnnualProfit)
	assert.Equal(t, 0.0, out.Display.MonthlyReward)
	assert.Equal(t, 0.0, out.Display.TotalInvestment)
	for _, v := range []float64{out.Display.DailyReward, out.Display.AnnualCost, out.Display.DailyCost} {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
	// stake alone still counts
	assert.InDelta(t, 2400, out.TotalInvestment, 1e-9)
	assert.Len(t, out.Warnings, 2)
}

func TestEstimateNativeCurrencyPassthrough(t *testing.T) {
	in := baseInput()
	in.NodeCurrency = models.CurrencySHM
	in.RunningCurrency = models.CurrencySHM
	in.NodePriceFiat = 600
	in.RunningCostFiat = 100
	in.CustomProbabilityPercent = 50
	net := baseNetwork()
	net.SpotPrice = models.SpotPrice{}

	out := Estimate(in, net)

	assert.InDelta(t, 600, out.NodePriceNative, 1e-9)
	assert.InDelta(t, 100, out.MonthlyCost, 1e-9)
	assert.InDelta(t, 1200, out.AnnualCost, 1e-9)
	assert.InDelta(t, 100.0/30, out.DailyCost, 1e-9)
	assert.InDelta(t, 3000, out.TotalInvestment, 1e-9)
	assert.Equal(t, out.NetAnnualProfit, out.Display.NetAnnualProfit)
	assert.Equal(t, "SHM", out.Display.Symbol)
}

func TestEstimateScalingServers(t *testing.T) {
	in := baseInput()
	in.NodePriceFiat = 80
	in.RunningCostFiat = 12
	in.CustomProbabilityPercent = 40
	net := baseNetwork()

	one := Estimate(in, net)
	in.NumServers = 2
	two := Estimate(in, net)

	assert.InDelta(t, 2*one.DailyReward, two.DailyReward, 1e-9)
	assert.InDelta(t, 2*one.MonthlyCost, two.MonthlyCost, 1e-9)
	assert.InDelta(t, 2*one.AnnualCost, two.AnnualCost, 1e-9)
	assert.InDelta(t, 2*one.TotalInvestment, two.TotalInvestment, 1e-9)
	assert.InDelta(t, *one.ROI, *two.ROI, 1e-9)
	assert.InDelta(t, *one.APY, *two.APY, 1e-9)
	assert.InDelta(t, *one.NetDailyReturn, *two.NetDailyReturn, 1e-9)
}

func TestEstimateProbabilityModes(t *testing.T) {
	net := baseNetwork()
	net.RewardPerActivation = 40

	custom := baseInput()
	custom.ProbabilityMode = models.ProbabilityCustom
	custom.CustomProbabilityPercent = 50
	custom.WeeklyValidationCount = 7 // ignored

	weekly := baseInput()
	weekly.ProbabilityMode = models.ProbabilityWeekly
	weekly.WeeklyValidationCount = 3.5
	weekly.CustomProbabilityPercent = 100 // ignored

	network := baseInput()
	network.ProbabilityMode = models.ProbabilityNetwork
	network.CustomProbabilityPercent = 100 // ignored
	net.NetworkActivationProbability = 0.5

	for name, in := range map[string]models.EstimatorInput{
		"custom":  custom,
		"weekly":  weekly,
		"network": network,
	} {
		t.Run(name, func(t *testing.T) {
			out := Estimate(in, net)
			assert.InDelta(t, 0.5, out.Probability, 1e-12)
			assert.InDelta(t, 20, out.DailyReward, 1e-9)
		})
	}
}

func TestEstimateClampsProbability(t *testing.T) {
	cases := []struct {
		name    string
		mode    models.ProbabilityMode
		value   float64
		want    float64
		warning bool
	}{
		{"custom above 100", models.ProbabilityCustom, 150, 1, true},
		{"custom negative", models.ProbabilityCustom, -10, 0, true},
		{"weekly above 7", models.ProbabilityWeekly, 14, 1, true},
		{"network above 1", models.ProbabilityNetwork, 1.3, 1, true},
		{"network NaN", models.ProbabilityNetwork, math.NaN(), 0, true},
		{"in range", models.ProbabilityCustom, 25, 0.25, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := baseInput()
			in.ProbabilityMode = tc.mode
			net := baseNetwork()
			switch tc.mode {
			case models.ProbabilityCustom:
				in.CustomProbabilityPercent = tc.value
			case models.ProbabilityWeekly:
				in.WeeklyValidationCount = tc.value
			default:
				net.NetworkActivationProbability = tc.value
			}

			out := Estimate(in, net)
			assert.InDelta(t, tc.want, out.Probability, 1e-12)
			assert.GreaterOrEqual(t, out.DailyReward, 0.0)
			if tc.warning {
				assert.NotEmpty(t, out.Warnings)
			} else {
				assert.Empty(t, out.Warnings)
			}
		})
	}
}

func TestEstimateRunningCostZeroComputesNormally(t *testing.T) {
	in := baseInput()
	in.RunningCostFiat = 0
	in.NodePriceFiat = 60
	in.CustomProbabilityPercent = 10

	out := Estimate(in, baseNetwork())

	assert.Zero(t, out.AnnualCost)
	require.NotNil(t, out.ROI)
	// 60 USD at 0.06 = 1000 SHM hardware
	assert.InDelta(t, 3400, out.TotalInvestment, 1e-9)
	assert.InDelta(t, 4*365/3400.0*100, *out.ROI, 1e-9)
}

func TestEstimateNegativeProfit(t *testing.T) {
	in := baseInput()
	in.RunningCostFiat = 30
	in.CustomProbabilityPercent = 1

	out := Estimate(in, baseNetwork())

	// 30 USD / 0.06 = 500 SHM per month
	assert.InDelta(t, 6000, out.AnnualCost, 1e-9)
	assert.Less(t, out.NetAnnualProfit, 0.0)
	require.NotNil(t, out.ROI)
	assert.Less(t, *out.ROI, 0.0)
	assert.InDelta(t, out.NetAnnualProfit*0.06, out.Display.NetAnnualProfit, 1e-9)
}

func TestSanitizeInput(t *testing.T) {
	in := models.EstimatorInput{
		NodePriceFiat:   -5,
		NumServers:      0,
		RunningCostFiat: math.NaN(),
		StakePerServer:  100,
	}
	in.Sanitize()

	assert.Equal(t, 0.0, in.NodePriceFiat)
	assert.Equal(t, 0.0, in.RunningCostFiat)
	assert.Equal(t, 1, in.NumServers)
	assert.Equal(t, models.MinStakePerServer, in.StakePerServer)
	assert.Equal(t, models.CurrencyUSD, in.NodeCurrency)
	assert.Equal(t, models.CurrencyUSD, in.RunningCurrency)
	assert.Equal(t, models.ProbabilityNetwork, in.ProbabilityMode)
}
