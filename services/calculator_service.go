package services

import (
	"context"

	"go.uber.org/zap"

	"shmboard/models"
)

// ParameterSource supplies the network half of an estimate
type ParameterSource interface {
	NetworkParameters(ctx context.Context) models.NetworkParameters
}

type CalculatorService struct {
	params ParameterSource
	logger *zap.Logger
}

func NewCalculatorService(params ParameterSource, logger *zap.Logger) *CalculatorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalculatorService{params: params, logger: logger}
}

// Calculate sanitizes the input, waits for current network parameters and runs the estimator
func (cs *CalculatorService) Calculate(ctx context.Context, in models.EstimatorInput) models.CalculationResult {
	return cs.EstimateWith(in, cs.params.NetworkParameters(ctx))
}

// EstimateWith runs the estimator against parameters the caller already holds
func (cs *CalculatorService) EstimateWith(in models.EstimatorInput, net models.NetworkParameters) models.CalculationResult {
	in.Sanitize()
	out := Estimate(in, net)
	promEstimates.Inc()

	if len(out.Warnings) > 0 {
		cs.logger.Info("estimate produced warnings",
			zap.Strings("warnings", out.Warnings),
			zap.String("source", net.Source))
	}

	return models.CalculationResult{
		Input:   in,
		Network: net,
		Output:  out,
		Chart:   RewardsChartFor(out),
	}
}

// RewardsChartFor is the weekly/monthly reward series in the display currency
func RewardsChartFor(out models.EstimatorOutput) models.RewardsChart {
	return models.RewardsChart{
		Labels:   []string{"Weekly", "Monthly"},
		Values:   []float64{out.Display.WeeklyReward, out.Display.MonthlyReward},
		Currency: out.Display.Currency,
	}
}
