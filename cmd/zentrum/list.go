package main

import (
	"log/slog"

	"github.com/Veraticus/zentrum/internal/cli"
	"github.com/Veraticus/zentrum/internal/controller"
	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List extractions",
		Long:    `List every extraction stored by the service in the order the service returns them.`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			client, cleanup, err := initClient(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			list := controller.NewListController(client, slog.Default())
			defer list.Close()

			if err := list.Refresh(ctx); err != nil {
				return err
			}

			items := list.State().Items
			return writeOutput(cmd.OutOrStdout(), output, items, func() string {
				return cli.RenderList(items)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format (text, json, yaml)")
	return cmd
}
