package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shmboard/models"
)

type staticParams models.NetworkParameters

func (s staticParams) NetworkParameters(context.Context) models.NetworkParameters {
	return models.NetworkParameters(s)
}

func TestCalculatorServiceCalculate(t *testing.T) {
	net := models.NetworkParameters{
		SpotPrice:                    models.SpotPrice{USD: 0.5, EUR: 0.4, INR: 40},
		RewardPerActivation:          40,
		NetworkActivationProbability: 0.5,
		Source:                       models.SourceLive,
	}
	cs := NewCalculatorService(staticParams(net), nil)

	res := cs.Calculate(context.Background(), models.EstimatorInput{
		NodePriceFiat:   100,
		NumServers:      0, // sanitized to 1
		RunningCostFiat: 15,
		StakePerServer:  100, // sanitized to the minimum
	})

	assert.Equal(t, 1, res.Input.NumServers)
	assert.Equal(t, models.MinStakePerServer, res.Input.StakePerServer)
	assert.Equal(t, models.CurrencyUSD, res.Input.RunningCurrency)
	assert.Equal(t, models.ProbabilityNetwork, res.Input.ProbabilityMode)
	assert.Equal(t, net, res.Network)

	// 0.5 × 40 SHM a day
	assert.InDelta(t, 20.0, res.Output.DailyReward, 1e-9)
	assert.InDelta(t, 140.0*0.5, res.Output.Display.WeeklyReward, 1e-9)

	require.Len(t, res.Chart.Values, 2)
	assert.Equal(t, []string{"Weekly", "Monthly"}, res.Chart.Labels)
	assert.InDelta(t, res.Output.Display.WeeklyReward, res.Chart.Values[0], 1e-9)
	assert.InDelta(t, res.Output.Display.MonthlyReward, res.Chart.Values[1], 1e-9)
	assert.Equal(t, models.CurrencyUSD, res.Chart.Currency)
}

func TestCalculatorServiceEstimateWithFallback(t *testing.T) {
	cs := NewCalculatorService(nil, nil)
	res := cs.EstimateWith(models.EstimatorInput{
		NumServers:      2,
		RunningCurrency: models.CurrencySHM,
		StakePerServer:  models.MinStakePerServer,
	}, models.NetworkParameters{
		RewardPerActivation:          40,
		NetworkActivationProbability: 0.55,
		Source:                       models.SourceFallback,
	})

	assert.InDelta(t, 44.0, res.Output.DailyReward, 1e-9)
	assert.Equal(t, models.CurrencySHM, res.Chart.Currency)
	assert.InDelta(t, 44.0*7, res.Chart.Values[0], 1e-9)
	assert.Empty(t, res.Output.Warnings)
}
