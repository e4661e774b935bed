package main

import (
	"context"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"shmboard/config"
	"shmboard/services"
	"shmboard/utils"
)

// ShmApp holds what the subcommands share. Services are built lazily in
// Before so flags and env can adjust the config first.
type ShmApp struct {
	cliCmd *cli.Command
	out    io.Writer

	cfg    *config.Config
	logger *zap.Logger
	cache  *services.CacheService
}

func initApp() *ShmApp {
	app := &ShmApp{out: os.Stdout}

	app.cliCmd = &cli.Command{
		Name:  "shmcalc",
		Usage: "Shardeum validator reward calculator and leaderboard client",
		Before: func(ctx context.Context, cmd *cli.Command) error {
			return app.init(cmd)
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "JSON or TOML config file",
				Aliases: []string{"c"},
				Sources: cli.EnvVars("CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "rpc-url",
				Usage:   "Shardeum JSON-RPC endpoint",
				Sources: cli.EnvVars("SHARDEUM_RPC_URL"),
			},
			&cli.StringFlag{
				Name:    "leaderboard-url",
				Usage:   "Leaderboard backend base URL",
				Sources: cli.EnvVars("LEADERBOARD_URL"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
				Value: "warn",
			},
		},
		Commands: []*cli.Command{
			app.estimateCmd(),
			app.networkCmd(),
			app.leaderboardCmd(),
			app.adminCmd(),
			app.cacheCmd(),
		},
	}
	return app
}

func (app *ShmApp) init(cmd *cli.Command) error {
	if path := cmd.String("config"); path != "" {
		os.Setenv("CONFIG_FILE", path)
	}
	cfg, err := config.Load(nil)
	if err != nil {
		return err
	}
	if v := cmd.String("rpc-url"); v != "" {
		cfg.Shardeum.RPCURL = v
	}
	if v := cmd.String("leaderboard-url"); v != "" {
		cfg.Leaderboard.BackendURL = v
	}
	// one-shot commands never need redis
	cfg.Redis.Enabled = false

	logger, err := utils.NewLogger(cmd.String("log-level"), "console")
	if err != nil {
		return err
	}

	app.cfg = cfg
	app.logger = logger
	app.cache = services.NewCacheService(cfg, logger)
	return nil
}

func (app *ShmApp) provider() *services.NetworkDataProvider {
	return services.NewNetworkDataProvider(app.cfg,
		services.NewShardeumClient(app.cfg, app.logger),
		services.NewPriceClient(app.cfg),
		app.cache, app.logger)
}
