package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/zentrum/internal/cli"
	"github.com/Veraticus/zentrum/internal/export"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export an extraction to a file",
		Long: `Write an extraction to disk. The format follows the file extension: .xlsx writes
a workbook with one row per Aufgabe plus the verification result, .json and
.yaml write the extraction as returned by the service.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if out == "" {
				return fmt.Errorf("--out is required")
			}
			format := strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")

			client, cleanup, err := initClient(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			e, err := client.Get(ctx, args[0])
			if err != nil {
				return err
			}

			var data []byte
			if format != "xlsx" {
				data, err = export.Marshal(format, e)
				if err != nil {
					return err
				}
			}

			f, err := os.Create(filepath.Clean(out))
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}

			if format == "xlsx" {
				err = export.WriteXLSX(f, e)
			} else {
				_, err = f.Write(data)
			}
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				_ = os.Remove(out)
				return fmt.Errorf("failed to write %s: %w", out, err)
			}

			printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d Berufe to %s", len(e.Berufe), out)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "O", "", "output file (.xlsx, .json, .yaml)")
	return cmd
}
