package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tartampluch/ieq-connect/internal/config"
	"github.com/tartampluch/ieq-connect/internal/engine"
	"github.com/tartampluch/ieq-connect/internal/server"
)

// newRefresher wires the feed generator and the refresh worker to the store.
func (a *App) newRefresher(srv *server.FeedServer) *server.Refresher {
	gen := &engine.Generator{
		Clock:           a.Clock,
		FormatSummary:   a.Translator.SummaryFormatter(),
		ReminderTrigger: a.Settings.ReminderTrigger,
	}
	return server.NewRefresher(srv, gen, a.Store.Members, a.Store.Visitors, a.Store.Events, a.Settings.RefreshInterval())
}

func serveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the agenda and birthday calendars on localhost (SIGHUP refreshes)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			srv := server.NewFeedServer(app.Settings.PortString())
			worker := app.newRefresher(srv)

			hup := make(chan os.Signal, config.ChannelBufferSize)
			signal.Notify(hup, syscall.SIGHUP)
			defer signal.Stop(hup)

			var wg sync.WaitGroup
			wg.Add(2)
			go func() {
				defer wg.Done()
				worker.Run(ctx)
			}()
			go func() {
				defer wg.Done()
				for {
					select {
					case <-ctx.Done():
						return
					case <-hup:
						worker.Trigger()
					}
				}
			}()

			fmt.Fprintf(app.Out, config.MsgServing, config.LocalhostBindAddr, srv.Port, config.RouteAgenda, config.RouteBirthdays)
			err := srv.Start(ctx)
			cancel()
			wg.Wait()
			return err
		},
	}
}
