package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tartampluch/ieq-connect/internal/config"
	"github.com/tartampluch/ieq-connect/internal/model"
)

// errNotFound is reported by edit and delete when the id is unknown; the
// store itself treats such misses as no-ops.
var errNotFound = errors.New(config.ErrNotFound)

// personFields are the form inputs shared by add and edit.
type personFields struct {
	name      string
	phone     string
	birthDate string
	address   string
}

func (f *personFields) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, config.FlagName, "", config.FlagDescName)
	cmd.Flags().StringVar(&f.phone, config.FlagPhone, "", config.FlagDescPhone)
	cmd.Flags().StringVar(&f.birthDate, config.FlagBirthDate, "", config.FlagDescBirthDate)
	cmd.Flags().StringVar(&f.address, config.FlagAddress, "", config.FlagDescAddress)
}

// apply copies the flags the user actually set onto p.
func (f *personFields) apply(cmd *cobra.Command, p model.Person) model.Person {
	set := func(flag, value string, dst *string) {
		if cmd.Flags().Changed(flag) {
			*dst = strings.TrimSpace(value)
		}
	}
	set(config.FlagName, f.name, &p.Name)
	set(config.FlagPhone, f.phone, &p.Phone)
	set(config.FlagBirthDate, f.birthDate, &p.BirthDate)
	set(config.FlagAddress, f.address, &p.Address)
	return p
}

// peopleCmd builds the "visitors" or "members" command group.
func peopleCmd(app *App, kind model.Kind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(kind) + "s",
		Short: "Manage " + string(kind) + "s",
	}
	cmd.AddCommand(peopleListCmd(app, kind))
	cmd.AddCommand(peopleAddCmd(app, kind))
	cmd.AddCommand(peopleEditCmd(app, kind))
	cmd.AddCommand(peopleDeleteCmd(app, kind))
	return cmd
}

func peopleListCmd(app *App, kind model.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List " + string(kind) + "s in registration order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			people, err := app.Store.People(kind).All()
			if err != nil {
				return err
			}
			return writePeople(app.Out, app.Translator, people)
		},
	}
}

func peopleAddCmd(app *App, kind model.Kind) *cobra.Command {
	var (
		fields    personFields
		printOnly bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a new " + string(kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := model.NewPerson(fields.name, fields.phone, fields.birthDate, fields.address, app.Clock.Now())
			if err := model.Validate(p); err != nil {
				return err
			}
			if err := app.Store.People(kind).Append(p); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, config.MsgCreated, p.ID)

			if kind != model.KindVisitor {
				return nil
			}
			ok, err := app.confirm(fmt.Sprintf(config.MsgPromptWelcome, p.Name))
			if err != nil || !ok {
				return err
			}
			if _, _, err := app.contactUpdater(printOnly).Apply(cmd.Context(), p, model.ContactWelcome); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, config.MsgContactDone, p.Name, app.Translator.Msg(config.TKeyLblSentWelcome, nil))
			return nil
		},
	}

	fields.register(cmd)
	if kind == model.KindVisitor {
		cmd.Flags().BoolVar(&printOnly, config.FlagPrint, false, config.FlagDescPrint)
	}
	return cmd
}

func peopleEditCmd(app *App, kind model.Kind) *cobra.Command {
	var fields personFields

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the details of a " + string(kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			people := app.Store.People(kind)
			p, ok, err := people.Find(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %q", errNotFound, args[0])
			}
			p = fields.apply(cmd, p)
			if err := model.Validate(p); err != nil {
				return err
			}
			if err := people.UpdateByID(p); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, config.MsgSaved, p.ID)
			return nil
		},
	}

	fields.register(cmd)
	return cmd
}

func peopleDeleteCmd(app *App, kind model.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a " + string(kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			people := app.Store.People(kind)
			p, ok, err := people.Find(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %q", errNotFound, args[0])
			}
			yes, err := app.confirm(app.Translator.Msg(config.TKeyLblConfirmDelete, map[string]any{"Name": p.Name}))
			if err != nil {
				return err
			}
			if !yes {
				return app.aborted()
			}
			if err := people.DeleteByID(p.ID); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, config.MsgRemoved, p.ID)
			return nil
		},
	}
}
