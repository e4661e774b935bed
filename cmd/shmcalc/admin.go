package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/urfave/cli/v3"

	"shmboard/models"
	"shmboard/services"
)

func (app *ShmApp) adminCmd() *cli.Command {
	credFlags := []cli.Flag{
		&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "Admin username", Sources: cli.EnvVars("SHM_ADMIN_USER")},
		&cli.StringFlag{Name: "password", Usage: "Admin password, prompted for when empty", Sources: cli.EnvVars("SHM_ADMIN_PASSWORD")},
	}

	return &cli.Command{
		Name:  "admin",
		Usage: "Manage validator aliases and avatars on the leaderboard backend",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List validators as seen by the admin API",
				Flags:  credFlags,
				Action: app.runAdminList,
			},
			{
				Name:      "update",
				Usage:     "Set a validator's alias and avatar",
				ArgsUsage: "<public key>",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "alias", Usage: "New alias, prompted for when empty"},
					&cli.StringFlag{Name: "avatar", Usage: "New avatar, chosen from a list when empty"},
				}, credFlags...),
				Action: app.runAdminUpdate,
			},
		},
	}
}

func (app *ShmApp) adminService() *services.AdminService {
	return services.NewAdminService(app.cfg, app.cache, app.logger)
}

func (app *ShmApp) runAdminList(ctx context.Context, cmd *cli.Command) error {
	creds, err := getCredentials(cmd)
	if err != nil {
		return err
	}
	validators, err := app.adminService().ListValidators(ctx, creds)
	if err != nil {
		return err
	}
	renderAdminValidators(app.out, validators)
	return nil
}

func (app *ShmApp) runAdminUpdate(ctx context.Context, cmd *cli.Command) error {
	publicKey := cmd.Args().First()
	if publicKey == "" {
		return errors.New("public key argument is required")
	}

	creds, err := getCredentials(cmd)
	if err != nil {
		return err
	}

	alias := cmd.String("alias")
	if alias == "" {
		if alias, err = getText("Alias", ""); err != nil {
			return err
		}
	}
	avatar := cmd.String("avatar")
	if avatar == "" {
		if avatar, err = getAvatar(); err != nil {
			return err
		}
	}

	if err := app.adminService().UpdateValidator(ctx, creds, publicKey, alias, avatar); err != nil {
		return err
	}
	fmt.Fprintf(app.out, "Updated %s: alias %q, avatar %s\n", publicKey, alias, avatar)
	return nil
}

func getCredentials(cmd *cli.Command) (models.Credentials, error) {
	creds := models.Credentials{Username: cmd.String("user"), Password: cmd.String("password")}

	var err error
	if creds.Username == "" {
		if creds.Username, err = getText("Admin username", ""); err != nil {
			return creds, err
		}
	}
	if creds.Password == "" {
		creds.Password, err = (&promptui.Prompt{
			Label:    "Admin password",
			Mask:     '*',
			Validate: notEmpty,
		}).Run()
		if err != nil {
			return creds, err
		}
	}
	return creds, nil
}

func getText(prompt string, defVal string) (string, error) {
	return (&promptui.Prompt{
		Label:    prompt,
		Default:  defVal,
		Validate: notEmpty,
	}).Run()
}

func getAvatar() (string, error) {
	_, avatar, err := (&promptui.Select{
		Label: "Avatar",
		Items: models.AllowedAvatars,
	}).Run()
	return avatar, err
}

func notEmpty(s string) error {
	if s == "" {
		return errors.New("value required")
	}
	return nil
}
