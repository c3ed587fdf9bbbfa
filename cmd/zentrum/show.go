package main

import (
	"log/slog"

	"github.com/Veraticus/zentrum/internal/cli"
	"github.com/Veraticus/zentrum/internal/controller"
	"github.com/spf13/cobra"
)

func showCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one extraction with all of its Berufe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, cleanup, err := initClient(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			detail := controller.NewDetailController(client, slog.Default())
			defer detail.Close()

			if err := detail.Load(ctx, args[0]); err != nil {
				return err
			}

			e := detail.State().Data
			return writeOutput(cmd.OutOrStdout(), output, e, func() string {
				return cli.RenderDetail(e)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format (text, json, yaml)")
	return cmd
}
