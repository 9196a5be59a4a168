package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tartampluch/ieq-connect/internal/config"
	"github.com/tartampluch/ieq-connect/internal/engine"
	"github.com/tartampluch/ieq-connect/internal/model"
)

// contactCmd builds "welcome" or "wish". A person already contacted today
// is reported and left alone.
func contactCmd(app *App, kind model.ContactKind) *cobra.Command {
	var printOnly bool

	use, short, doneKey := "welcome <person-id>", "Send the welcome message with the agenda", config.TKeyLblSentWelcome
	if kind == model.ContactBirthday {
		use, short, doneKey = "wish <person-id>", "Send birthday greetings", config.TKeyLblSentBirthday
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := app.findPerson(args[0])
			if err != nil {
				return err
			}
			if engine.AlreadyContactedToday(p, kind, app.Clock.Now()) {
				fmt.Fprintf(app.Out, config.MsgContactDone, p.Name, app.Translator.Msg(config.TKeyLblAlreadySent, nil))
				return nil
			}
			if _, _, err := app.contactUpdater(printOnly).Apply(cmd.Context(), p, kind); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, config.MsgContactDone, p.Name, app.Translator.Msg(doneKey, nil))
			return nil
		},
	}

	cmd.Flags().BoolVar(&printOnly, config.FlagPrint, false, config.FlagDescPrint)
	return cmd
}
