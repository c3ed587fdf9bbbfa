package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/zentrum/internal/cli"
	"github.com/spf13/cobra"
)

func berufeCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "berufe <id> [index]",
		Short: "Show the Berufe of an extraction",
		Long: `Show every Beruf of an extraction in document order, or only the Beruf at the
zero-based index.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			index := -1
			if len(args) == 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil || n < 0 {
					return fmt.Errorf("invalid index %q: must be a non-negative integer", args[1])
				}
				index = n
			}

			client, cleanup, err := initClient(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if index >= 0 {
				beruf, err := client.Beruf(ctx, args[0], index)
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), output, beruf, func() string {
					return cli.RenderBeruf(index, *beruf)
				})
			}

			berufe, err := client.Berufe(ctx, args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, berufe, func() string {
				if len(berufe) == 0 {
					return cli.SubtleStyle.Render("No Berufe extracted.") + "\n"
				}
				parts := make([]string, len(berufe))
				for i, b := range berufe {
					parts[i] = cli.RenderBeruf(i, b)
				}
				return strings.Join(parts, "\n")
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format (text, json, yaml)")
	return cmd
}
