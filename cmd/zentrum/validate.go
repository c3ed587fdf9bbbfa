package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Veraticus/zentrum/internal/validate"
	"github.com/spf13/cobra"
)

func validateCmd() *cobra.Command {
	var maxErrors int

	cmd := &cobra.Command{
		Use:   "validate <file.json>",
		Short: "Check a Berufe JSON document against the schema",
		Long: `Validate a JSON array of Beruf objects, for example the output of
'zentrum berufe <id> -o json', without contacting the service. Use - to read
from stdin.

Exit status is 0 when every item is valid, 1 when any item is invalid and 2
when the document cannot be read.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return &exitError{err: err, code: validate.ExitUsage}
			}

			schema, err := validate.Compile()
			if err != nil {
				return err
			}

			report, err := schema.Berufe(data, maxErrors)
			if err != nil {
				return &exitError{err: err, code: validate.ExitUsage}
			}

			if err := report.WriteText(cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}

			if code := report.ExitCode(); code != validate.ExitValid {
				return &exitError{code: code}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxErrors, "max-errors", 5, "maximum findings reported per item (0 for all)")
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
