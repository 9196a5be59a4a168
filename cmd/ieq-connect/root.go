package main

import (
	"github.com/spf13/cobra"
	"github.com/tartampluch/ieq-connect/internal/config"
	"github.com/tartampluch/ieq-connect/internal/model"
)

// newRootCmd builds the command tree around app.
func newRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ieq-connect",
		Short:         "IEQ Connect - visitors, members and agenda of the church",
		Long:          `Manage church visitors and members, the weekly agenda, birthday greetings and welcome messages sent over WhatsApp.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetIn(app.In)
	rootCmd.SetOut(app.Out)

	rootCmd.PersistentFlags().StringVar(&app.ConfigPath, config.FlagConfig, "", config.FlagDescConfig)
	rootCmd.PersistentFlags().BoolVar(&app.Debug, config.FlagDebug, false, config.FlagDescDebug)
	rootCmd.PersistentFlags().BoolVarP(&app.Yes, config.FlagYes, "y", false, config.FlagDescYes)

	rootCmd.AddCommand(loginCmd(app))
	rootCmd.AddCommand(logoutCmd(app))
	rootCmd.AddCommand(whoamiCmd(app))
	rootCmd.AddCommand(passwdCmd(app))
	rootCmd.AddCommand(peopleCmd(app, model.KindVisitor))
	rootCmd.AddCommand(peopleCmd(app, model.KindMember))
	rootCmd.AddCommand(eventsCmd(app))
	rootCmd.AddCommand(birthdaysCmd(app))
	rootCmd.AddCommand(contactCmd(app, model.ContactWelcome))
	rootCmd.AddCommand(contactCmd(app, model.ContactBirthday))
	rootCmd.AddCommand(dashboardCmd(app))
	rootCmd.AddCommand(usersCmd(app))
	rootCmd.AddCommand(exportCmd(app))
	rootCmd.AddCommand(importCmd(app))
	rootCmd.AddCommand(serveCmd(app))
	rootCmd.AddCommand(versionCmd(app))

	return rootCmd
}

// noSession marks a command that runs logged out.
func noSession() map[string]string {
	return map[string]string{config.AnnotSession: config.AnnotSessionNone}
}

// limitedSession marks a command allowed during a forced password change.
func limitedSession() map[string]string {
	return map[string]string{config.AnnotSession: config.AnnotSessionLimit}
}

func versionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: noSession(),
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(app.Out)
		},
	}
}
