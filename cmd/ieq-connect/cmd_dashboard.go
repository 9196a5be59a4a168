package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tartampluch/ieq-connect/internal/config"
	"github.com/tartampluch/ieq-connect/internal/engine"
)

func dashboardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show totals, recent visitors and today's birthdays",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := app.Store.Members.All()
			if err != nil {
				return err
			}
			visitors, err := app.Store.Visitors.All()
			if err != nil {
				return err
			}
			events, err := app.Store.Events.All()
			if err != nil {
				return err
			}

			stats := engine.Dashboard(app.Clock.Now(), members, visitors, events)
			w := app.Out
			fmt.Fprintf(w, config.MsgDashCounts, stats.Members, stats.Visitors, stats.Events, stats.VisitorsThisMonth)

			fmt.Fprintln(w, config.MsgDashRecent)
			if len(stats.RecentVisitors) == 0 {
				fmt.Fprintln(w, config.MsgListEmpty)
			}
			for _, v := range stats.RecentVisitors {
				fmt.Fprintf(w, config.FormatListItem, v.Name, registeredOn(v))
			}

			fmt.Fprintln(w, config.MsgDashBirthdays)
			if len(stats.TodayBirthdays) == 0 {
				fmt.Fprintln(w, config.MsgListEmpty)
			}
			for _, p := range stats.TodayBirthdays {
				fmt.Fprintf(w, config.FormatListItem, p.Name, kindLabel(app.Translator, p.Kind))
			}
			return nil
		},
	}
}
