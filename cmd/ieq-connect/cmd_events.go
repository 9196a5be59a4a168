package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tartampluch/ieq-connect/internal/config"
	"github.com/tartampluch/ieq-connect/internal/engine"
	"github.com/tartampluch/ieq-connect/internal/model"
)

var errUnknownWeekday = errors.New(config.ErrUnknownWeekday)

type eventFields struct {
	title       string
	day         string
	at          string
	secondary   string
	description string
	icon        string
}

func (f *eventFields) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, config.FlagTitle, "", config.FlagDescTitle)
	cmd.Flags().StringVar(&f.day, config.FlagDay, "", config.FlagDescDay)
	cmd.Flags().StringVar(&f.at, config.FlagTime, "", config.FlagDescTime)
	cmd.Flags().StringVar(&f.secondary, config.FlagSecondTime, "", config.FlagDescSecondTime)
	cmd.Flags().StringVar(&f.description, config.FlagDescription, "", config.FlagDescDescription)
	cmd.Flags().StringVar(&f.icon, config.FlagIcon, "", config.FlagDescIcon)
}

func (f *eventFields) apply(cmd *cobra.Command, e model.ChurchEvent) model.ChurchEvent {
	set := func(flag, value string, dst *string) {
		if cmd.Flags().Changed(flag) {
			*dst = strings.TrimSpace(value)
		}
	}
	set(config.FlagTitle, f.title, &e.Title)
	set(config.FlagDay, f.day, &e.DayOfWeek)
	set(config.FlagTime, f.at, &e.Time)
	set(config.FlagSecondTime, f.secondary, &e.SecondaryTime)
	set(config.FlagDescription, f.description, &e.Description)
	set(config.FlagIcon, f.icon, &e.Icon)
	return e
}

// validateEvent adds the weekday check to the struct tags, so every saved
// event can be placed on the agenda feed.
func validateEvent(e model.ChurchEvent) error {
	if err := model.Validate(e); err != nil {
		return err
	}
	if _, ok := engine.ParseWeekday(e.DayOfWeek); !ok {
		return fmt.Errorf("%w: %w: %q", model.ErrValidation, errUnknownWeekday, e.DayOfWeek)
	}
	return nil
}

func eventsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Manage the weekly agenda",
	}
	cmd.AddCommand(eventsListCmd(app))
	cmd.AddCommand(eventsAddCmd(app))
	cmd.AddCommand(eventsEditCmd(app))
	cmd.AddCommand(eventsDeleteCmd(app))
	return cmd
}

func eventsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List agenda events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := app.Store.Events.All()
			if err != nil {
				return err
			}
			return writeEvents(app.Out, events)
		},
	}
}

func eventsAddCmd(app *App) *cobra.Command {
	var fields eventFields

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a weekly event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := model.NewChurchEvent(fields.title, fields.day, fields.at, fields.secondary, fields.description, fields.icon)
			if err := validateEvent(e); err != nil {
				return err
			}
			if err := app.Store.Events.Append(e); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, config.MsgCreated, e.ID)
			return nil
		},
	}

	fields.register(cmd)
	return cmd
}

func eventsEditCmd(app *App) *cobra.Command {
	var fields eventFields

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an agenda event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, ok, err := app.Store.Events.Find(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %q", errNotFound, args[0])
			}
			e = fields.apply(cmd, e)
			if err := validateEvent(e); err != nil {
				return err
			}
			if err := app.Store.Events.UpdateByID(e); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, config.MsgSaved, e.ID)
			return nil
		},
	}

	fields.register(cmd)
	return cmd
}

func eventsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove an agenda event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, ok, err := app.Store.Events.Find(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %q", errNotFound, args[0])
			}
			yes, err := app.confirm(app.Translator.Msg(config.TKeyLblConfirmDelete, map[string]any{"Name": e.Title}))
			if err != nil {
				return err
			}
			if !yes {
				return app.aborted()
			}
			if err := app.Store.Events.DeleteByID(e.ID); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, config.MsgRemoved, e.ID)
			return nil
		},
	}
}
