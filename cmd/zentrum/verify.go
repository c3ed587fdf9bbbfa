package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/zentrum/internal/cli"
	"github.com/Veraticus/zentrum/internal/controller"
	"github.com/Veraticus/zentrum/internal/model"
	"github.com/spf13/cobra"
)

var errVerificationFailed = errors.New("verification reported errors")

func verifyCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "verify <id>",
		Short: "Run a verification pass on an extraction",
		Long: `Ask the service to verify an extraction and show the result. The previous
verification result, if any, is replaced.

With --strict the command exits non-zero when verification reports errors.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx := interrupts.HandleInterrupts(cmd.Context(), "Verification cancelled.", "")

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

			spinner := cli.StartSpinner(cmd.ErrOrStderr(), "Verifying "+detail.State().Data.SourceFileName)
			err = detail.Verify(ctx)
			spinner.Stop()
			if err != nil {
				return err
			}

			e := detail.State().Data
			printLine(cmd.OutOrStdout(), cli.RenderDetail(e))

			if e.Status() == model.StatusInvalid {
				printLine(cmd.ErrOrStderr(), cli.FormatWarning(
					fmt.Sprintf("%d errors, %d warnings", e.Verification.Count(model.SeverityError), e.Verification.Count(model.SeverityWarning))))
				if strict {
					return &exitError{err: errVerificationFailed, code: 1}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when verification reports errors")
	return cmd
}
