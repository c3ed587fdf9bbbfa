package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/zentrum/internal/api"
	"github.com/Veraticus/zentrum/internal/cli"
	"github.com/Veraticus/zentrum/internal/controller"
	"github.com/spf13/cobra"
)

func uploadCmd() *cobra.Command {
	var open bool

	cmd := &cobra.Command{
		Use:   "upload <file.pdf>...",
		Short: "Upload exam-schedule PDFs for extraction",
		Long: `Upload one or more PDFs to the extraction service. Each upload blocks until the
service has finished extracting, which can take a while for large documents.
Files that are not PDFs are rejected locally without contacting the service.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx := interrupts.HandleInterrupts(cmd.Context(),
				"Upload cancelled.",
				"The service may still finish the extraction; check with 'zentrum list'.")

			client, cleanup, err := initClient(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var created []string
			uploader := controller.NewUploadController(client, func(id string) {
				created = append(created, id)
			}, slog.Default())
			defer uploader.Close()

			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				if interrupts.WasInterrupted() {
					break
				}

				file, closer, err := api.OpenFile(path)
				if err != nil {
					printLine(cmd.ErrOrStderr(), failure(err, "could not open file"))
					failed++
					continue
				}

				spinner := cli.StartSpinner(cmd.ErrOrStderr(), "Extracting "+file.Name)
				id, err := uploader.Submit(ctx, file)
				spinner.Stop()
				_ = closer.Close()

				if err != nil {
					printLine(cmd.ErrOrStderr(), failure(err, "upload failed")+" "+cli.SubtleStyle.Render(path))
					failed++
					continue
				}
				printLine(out, cli.FormatSuccess(fmt.Sprintf("%s → %s", file.Name, id)))
			}

			if open {
				for _, id := range created {
					e, err := client.Get(ctx, id)
					if err != nil {
						printLine(cmd.ErrOrStderr(), failure(err, "failed to load extraction"))
						continue
					}
					printLine(out, "")
					printLine(out, cli.RenderDetail(e))
				}
			}

			if interrupts.WasInterrupted() {
				return ctx.Err()
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d uploads failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&open, "open", false, "show the extraction after a successful upload")
	return cmd
}
