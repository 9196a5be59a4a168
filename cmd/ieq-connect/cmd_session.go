package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tartampluch/ieq-connect/internal/auth"
	"github.com/tartampluch/ieq-connect/internal/config"
)

func loginCmd(app *App) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:         "login <username>",
		Short:       "Log in and keep the session in the OS keyring",
		Args:        cobra.ExactArgs(1),
		Annotations: noSession(),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := app.readPassword(password, config.MsgPromptPassword)
			if err != nil {
				return err
			}
			u, err := app.Auth.Login(args[0], pw)
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return fmt.Errorf("%w: %s", err, app.Translator.Msg(config.TKeyLblLoginFailed, nil))
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, config.MsgLoggedIn, u.Name, u.Role)
			if u.MustChangePassword {
				fmt.Fprintln(app.Out, app.Translator.Msg(config.TKeyLblMustChangePass, nil))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&password, config.FlagPassword, "", config.FlagDescPassword)
	return cmd
}

func logoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "logout",
		Short:       "End the current session",
		Args:        cobra.NoArgs,
		Annotations: noSession(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Auth.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(app.Out, config.MsgLoggedOut)
			return nil
		},
	}
}

func whoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "whoami",
		Short:       "Show the logged-in operator",
		Args:        cobra.NoArgs,
		Annotations: limitedSession(),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(app.Out, config.MsgWhoami, app.User.Name, app.User.Username, app.User.Role)
		},
	}
}

func passwdCmd(app *App) *cobra.Command {
	var (
		name     string
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:         "passwd",
		Short:       "Change the password (and optionally the name or username)",
		Args:        cobra.NoArgs,
		Annotations: limitedSession(),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := app.readPassword(password, config.MsgPromptNewPass)
			if err != nil {
				return err
			}
			confirm := password
			if confirm == "" {
				if confirm, err = app.readPassword("", config.MsgPromptConfirm); err != nil {
					return err
				}
			}
			u, err := app.Auth.ChangePassword(app.User, name, username, pw, confirm)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, config.MsgSaved, u.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, config.FlagName, "", config.FlagDescName)
	cmd.Flags().StringVar(&username, config.FlagUsername, "", config.FlagDescUsername)
	cmd.Flags().StringVar(&password, config.FlagPassword, "", config.FlagDescPassword)
	return cmd
}
