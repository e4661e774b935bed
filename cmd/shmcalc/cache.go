package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"shmboard/services"
)

func (app *ShmApp) cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect the shared Redis cache",
		Commands: []*cli.Command{
			{
				Name:   "check",
				Usage:  "Connect to the configured Redis and report key counts",
				Action: app.runCacheCheck,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "address", Usage: "Redis address", Sources: cli.EnvVars("REDIS_ADDRESS")},
					&cli.StringFlag{Name: "password", Usage: "Redis password", Sources: cli.EnvVars("REDIS_PASSWORD")},
					&cli.BoolFlag{Name: "tls", Usage: "Connect with TLS 1.2+", Sources: cli.EnvVars("REDIS_USE_TLS")},
					&cli.BoolFlag{Name: "clear", Usage: "Also delete every shm: key"},
				},
			},
		},
	}
}

func (app *ShmApp) runCacheCheck(ctx context.Context, cmd *cli.Command) error {
	cfg := *app.cfg
	cfg.Redis.Enabled = true
	if v := cmd.String("address"); v != "" {
		cfg.Redis.Address = v
	}
	if v := cmd.String("password"); v != "" {
		cfg.Redis.Password = v
	}
	if cmd.IsSet("tls") {
		cfg.Redis.UseTLS = cmd.Bool("tls")
	}

	cache := services.NewCacheService(&cfg, app.logger)
	defer cache.Stop()

	if cache.GetCacheMode() != services.CacheModeRedis {
		return fmt.Errorf("redis at %s is unreachable (tls=%v)", cfg.Redis.Address, cfg.Redis.UseTLS)
	}

	stats := cache.GetCacheStats()
	fmt.Fprintf(app.out, "Redis %s reachable (tls=%v), %v keys in database\n", cfg.Redis.Address, cfg.Redis.UseTLS, stats["redis_keys"])

	if cmd.Bool("clear") {
		if err := cache.ClearCache(); err != nil {
			return err
		}
		fmt.Fprintln(app.out, "Cleared shm: keys")
	}
	return nil
}
