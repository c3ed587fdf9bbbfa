package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/zentrum/internal/cli"
	"github.com/Veraticus/zentrum/internal/controller"
	"github.com/spf13/cobra"
)

func deleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete extractions",
		Long: `Delete one or more extractions from the service. Each id is confirmed
interactively unless --yes is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, cleanup, err := initClient(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			list := controller.NewListController(client, slog.Default())
			defer list.Close()

			prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
			out := cmd.OutOrStdout()
			failed := 0

			for _, id := range args {
				if !yes {
					ok, err := prompter.Confirm(ctx, fmt.Sprintf("Delete extraction %s?", id))
					if err != nil {
						return err
					}
					if !ok {
						printLine(out, cli.FormatInfo("Skipped "+id))
						continue
					}
				}

				if err := list.Remove(ctx, id); err != nil {
					printLine(cmd.ErrOrStderr(), failure(err, "delete failed")+" "+cli.SubtleStyle.Render(id))
					failed++
					continue
				}
				printLine(out, cli.FormatSuccess("Deleted "+id))
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d deletions failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
