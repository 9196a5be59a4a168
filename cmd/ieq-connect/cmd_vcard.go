package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tartampluch/ieq-connect/internal/config"
	"github.com/tartampluch/ieq-connect/internal/engine"
	"github.com/tartampluch/ieq-connect/internal/model"
	"github.com/tartampluch/ieq-connect/internal/store"
)

func exportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export records",
	}
	cmd.AddCommand(exportVCardCmd(app))
	return cmd
}

func exportVCardCmd(app *App) *cobra.Command {
	var (
		kind   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "vcard",
		Short: "Write members or visitors as vCard 4.0",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			k, err := model.ParseKind(kind)
			if err != nil {
				return err
			}
			people, err := app.Store.People(k).All()
			if err != nil {
				return err
			}

			var w io.Writer = app.Out
			if output != "" {
				f, ferr := os.OpenFile(output, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, config.FilePermUserRW)
				if ferr != nil {
					return ferr
				}
				defer func() {
					if cerr := f.Close(); err == nil {
						err = cerr
					}
				}()
				w = f
			}
			return engine.ExportVCards(w, k, people)
		},
	}

	cmd.Flags().StringVar(&kind, config.FlagKind, string(model.KindMember), config.FlagDescKind)
	cmd.Flags().StringVarP(&output, config.FlagOutput, "o", "", config.FlagDescOutput)
	return cmd
}

func importCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import records",
	}
	cmd.AddCommand(importVCardCmd(app))
	return cmd
}

func importVCardCmd(app *App) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "vcard <path-or-url>",
		Short: "Add the contacts of a vCard file or URL; existing ids are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := model.ParseKind(kind)
			if err != nil {
				return err
			}
			rc, err := engine.OpenSource(cmd.Context(), app.Fetcher, args[0])
			if err != nil {
				return err
			}
			defer rc.Close()

			people, err := engine.ImportVCards(cmd.Context(), rc, app.Clock.Now())
			if err != nil {
				return err
			}

			added, skipped := 0, 0
			for _, p := range people {
				if err := model.Validate(p); err != nil {
					slog.Warn(config.MsgSkippedCard,
						config.LogKeyComponent, config.CompCLI,
						config.LogKeyID, p.ID,
						config.LogKeyError, err)
					skipped++
					continue
				}
				err := app.Store.People(k).Append(p)
				if errors.Is(err, store.ErrDuplicateID) {
					skipped++
					continue
				}
				if err != nil {
					return err
				}
				added++
			}
			fmt.Fprintf(app.Out, config.MsgImported, added, skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, config.FlagKind, string(model.KindVisitor), config.FlagDescKind)
	return cmd
}
