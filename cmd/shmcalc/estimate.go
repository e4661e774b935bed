package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"shmboard/models"
	"shmboard/services"
)

func (app *ShmApp) estimateCmd() *cli.Command {
	return &cli.Command{
		Name:    "estimate",
		Aliases: []string{"e"},
		Usage:   "Estimate rewards, costs and APY for running validators",
		Action:  app.runEstimate,
		Flags: []cli.Flag{
			&cli.FloatFlag{Name: "node-price", Usage: "Node (server) price per server"},
			&cli.StringFlag{Name: "node-currency", Usage: "USD, EUR, INR or SHM", Value: "USD"},
			&cli.IntFlag{Name: "servers", Usage: "Number of validator servers", Value: 1},
			&cli.FloatFlag{Name: "running-cost", Usage: "Monthly running cost per server"},
			&cli.StringFlag{Name: "running-currency", Usage: "USD, EUR, INR or SHM; also the display currency", Value: "USD"},
			&cli.FloatFlag{Name: "stake", Usage: "SHM staked per server", Value: models.MinStakePerServer},
			&cli.StringFlag{Name: "probability-mode", Usage: "network, custom or weekly", Value: "network"},
			&cli.FloatFlag{Name: "custom-probability", Usage: "Daily activation probability in percent (custom mode)"},
			&cli.FloatFlag{Name: "weekly-validations", Usage: "Activations per week (weekly mode)"},

			&cli.BoolFlag{Name: "offline", Usage: "Do not contact the network, use the --price-*, --reward and --probability values"},
			&cli.FloatFlag{Name: "price-usd", Usage: "SHM price in USD (offline)"},
			&cli.FloatFlag{Name: "price-eur", Usage: "SHM price in EUR (offline)"},
			&cli.FloatFlag{Name: "price-inr", Usage: "SHM price in INR (offline)"},
			&cli.FloatFlag{Name: "reward", Usage: "Reward per activation in SHM (offline)", Value: 40},
			&cli.FloatFlag{Name: "probability", Usage: "Network daily activation probability (offline)", Value: 0.55},
		},
	}
}

func estimateInput(cmd *cli.Command) (models.EstimatorInput, error) {
	nodeCurrency, err := models.ParseCurrency(cmd.String("node-currency"))
	if err != nil {
		return models.EstimatorInput{}, err
	}
	runningCurrency, err := models.ParseCurrency(cmd.String("running-currency"))
	if err != nil {
		return models.EstimatorInput{}, err
	}
	mode, err := models.ParseProbabilityMode(cmd.String("probability-mode"))
	if err != nil {
		return models.EstimatorInput{}, err
	}

	return models.EstimatorInput{
		NodePriceFiat:            cmd.Float("node-price"),
		NodeCurrency:             nodeCurrency,
		NumServers:               int(cmd.Int("servers")),
		RunningCostFiat:          cmd.Float("running-cost"),
		RunningCurrency:          runningCurrency,
		StakePerServer:           cmd.Float("stake"),
		ProbabilityMode:          mode,
		CustomProbabilityPercent: cmd.Float("custom-probability"),
		WeeklyValidationCount:    cmd.Float("weekly-validations"),
	}, nil
}

func offlineParameters(cmd *cli.Command) models.NetworkParameters {
	return models.NetworkParameters{
		SpotPrice: models.SpotPrice{
			USD: cmd.Float("price-usd"),
			EUR: cmd.Float("price-eur"),
			INR: cmd.Float("price-inr"),
		},
		RewardPerActivation:          cmd.Float("reward"),
		NetworkActivationProbability: cmd.Float("probability"),
		Source:                       "offline",
	}
}

func (app *ShmApp) runEstimate(ctx context.Context, cmd *cli.Command) error {
	in, err := estimateInput(cmd)
	if err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}

	var res models.CalculationResult
	if cmd.Bool("offline") {
		res = services.NewCalculatorService(nil, app.logger).EstimateWith(in, offlineParameters(cmd))
	} else {
		res = services.NewCalculatorService(app.provider(), app.logger).Calculate(ctx, in)
	}

	renderEstimate(app.out, res)
	return nil
}

func (app *ShmApp) networkCmd() *cli.Command {
	return &cli.Command{
		Name:    "network",
		Aliases: []string{"n"},
		Usage:   "Show node counts, reward and activation probability",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			renderNetwork(app.out, app.provider().Snapshot(ctx))
			return nil
		},
	}
}
