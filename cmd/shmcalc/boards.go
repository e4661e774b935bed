package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"shmboard/models"
	"shmboard/services"
	"shmboard/utils"
)

func (app *ShmApp) leaderboardCmd() *cli.Command {
	return &cli.Command{
		Name:    "leaderboard",
		Aliases: []string{"l"},
		Usage:   "Rank validators by activation count",
		Action:  app.runLeaderboard,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "period", Usage: "daily, weekly, monthly or all", Value: string(models.PeriodWeekly)},
			&cli.IntFlag{Name: "page", Value: 1},
			&cli.IntFlag{Name: "limit", Value: services.DefaultPageLimit},
			&cli.BoolFlag{Name: "loser", Usage: "Fewest activations first"},
			&cli.StringFlag{Name: "geoip-db", Usage: "MaxMind country database for the country column", Sources: cli.EnvVars("GEOIP_DB_PATH")},
		},
	}
}

func (app *ShmApp) runLeaderboard(ctx context.Context, cmd *cli.Command) error {
	geo := utils.NewGeoResolver(cmd.String("geoip-db"), app.logger)
	defer geo.Close()

	ls := services.NewLeaderboardService(app.cfg, app.cache, geo, app.logger)
	fetch := ls.Leaderboard
	if cmd.Bool("loser") {
		fetch = ls.Loserboard
	}

	page, err := fetch(ctx, cmd.String("period"), int(cmd.Int("page")), int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	renderBoard(app.out, page)
	return nil
}
