package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tartampluch/ieq-connect/internal/config"
	"github.com/tartampluch/ieq-connect/internal/model"
)

// usersCmd manages operator accounts. Every subcommand requires ADMIN.
func usersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage operator accounts (ADMIN only)",
	}
	cmd.AddCommand(usersListCmd(app))
	cmd.AddCommand(usersAddCmd(app))
	cmd.AddCommand(usersDeleteCmd(app))
	return cmd
}

func usersListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List operators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAdmin(); err != nil {
				return err
			}
			users, err := app.Store.Users.All()
			if err != nil {
				return err
			}
			return writeUsers(app.Out, users)
		},
	}
}

func usersAddCmd(app *App) *cobra.Command {
	var (
		name     string
		username string
		password string
		role     string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an operator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAdmin(); err != nil {
				return err
			}
			pw, err := app.readPassword(password, config.MsgPromptPassword)
			if err != nil {
				return err
			}
			u, err := app.Auth.CreateUser(name, username, pw, model.Role(strings.ToUpper(strings.TrimSpace(role))))
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, config.MsgCreated, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, config.FlagName, "", config.FlagDescName)
	cmd.Flags().StringVar(&username, config.FlagUsername, "", config.FlagDescUsername)
	cmd.Flags().StringVar(&password, config.FlagPassword, "", config.FlagDescPassword)
	cmd.Flags().StringVar(&role, config.FlagRole, string(model.RoleMember), config.FlagDescRole)
	return cmd
}

func usersDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove an operator; the seed administrator is kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAdmin(); err != nil {
				return err
			}
			u, ok, err := app.Store.Users.Find(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %q", errNotFound, args[0])
			}
			yes, err := app.confirm(app.Translator.Msg(config.TKeyLblConfirmDelete, map[string]any{"Name": u.Name}))
			if err != nil {
				return err
			}
			if !yes {
				return app.aborted()
			}
			if err := app.Auth.DeleteUser(u.ID); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, config.MsgRemoved, u.ID)
			return nil
		},
	}
}
