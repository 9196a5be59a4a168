package main

import (
	"cmp"
	"errors"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"github.com/tartampluch/ieq-connect/internal/config"
	"github.com/tartampluch/ieq-connect/internal/engine"
	"github.com/tartampluch/ieq-connect/internal/model"
)

var (
	errMonthRange     = errors.New(config.ErrMonthRange)
	errFilterConflict = errors.New(config.ErrFilterConflict)
)

// birthdayView turns the filter flags into a view. No flag means the
// current month.
func birthdayView(today, next7 bool, month int, monthSet bool, now time.Time) (engine.View, error) {
	set := 0
	for _, b := range []bool{today, next7, monthSet} {
		if b {
			set++
		}
	}
	switch {
	case set > 1:
		return engine.View{}, errFilterConflict
	case today:
		return engine.View{Mode: engine.ModeToday}, nil
	case next7:
		return engine.View{Mode: engine.ModeNext7}, nil
	case monthSet:
		if month < 1 || month > 12 {
			return engine.View{}, errMonthRange
		}
		return engine.View{Mode: engine.ModeMonth, Month: time.Month(month)}, nil
	}
	return engine.View{Mode: engine.ModeMonth, Month: now.Month()}, nil
}

// birthdayEntries applies v to the requested kinds and merges the results
// in (month, day) order. An empty kind means members and visitors.
func (a *App) birthdayEntries(v engine.View, kind string) ([]engine.BirthdayEntry, error) {
	kinds := []model.Kind{model.KindMember, model.KindVisitor}
	if kind != "" {
		k, err := model.ParseKind(kind)
		if err != nil {
			return nil, err
		}
		kinds = []model.Kind{k}
	}

	now := a.Clock.Now()
	var entries []engine.BirthdayEntry
	for _, k := range kinds {
		people, err := a.Store.People(k).All()
		if err != nil {
			return nil, err
		}
		entries = append(entries, engine.NewBirthdayEntries(now, k, engine.Select(now, v, people))...)
	}
	slices.SortStableFunc(entries, func(x, y engine.BirthdayEntry) int {
		if c := cmp.Compare(x.DateOfBirth.Month, y.DateOfBirth.Month); c != 0 {
			return c
		}
		return cmp.Compare(x.DateOfBirth.Day, y.DateOfBirth.Day)
	})
	return entries, nil
}

func birthdaysCmd(app *App) *cobra.Command {
	var (
		today bool
		next7 bool
		month int
		kind  string
	)

	cmd := &cobra.Command{
		Use:   "birthdays",
		Short: "List birthdays of members and visitors (current month by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := birthdayView(today, next7, month, cmd.Flags().Changed(config.FlagMonth), app.Clock.Now())
			if err != nil {
				return err
			}
			entries, err := app.birthdayEntries(v, kind)
			if err != nil {
				return err
			}
			return writeBirthdays(app.Out, app.Translator, entries)
		},
	}

	cmd.Flags().BoolVar(&today, config.FlagToday, false, config.FlagDescToday)
	cmd.Flags().BoolVar(&next7, config.FlagNext7, false, config.FlagDescNext7)
	cmd.Flags().IntVar(&month, config.FlagMonth, 0, config.FlagDescMonth)
	cmd.Flags().StringVar(&kind, config.FlagKind, "", config.FlagDescKind)
	return cmd
}
