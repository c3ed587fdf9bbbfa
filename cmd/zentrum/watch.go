package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/zentrum/internal/api"
	"github.com/Veraticus/zentrum/internal/cli"
	"github.com/Veraticus/zentrum/internal/config"
	"github.com/Veraticus/zentrum/internal/controller"
	"github.com/Veraticus/zentrum/internal/watch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func watchCmd() *cobra.Command {
	var initialScan bool

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Upload PDFs as they appear in a directory",
		Long: `Watch a directory and upload every PDF that is created or rewritten in it once
the file has stopped changing. Other files are ignored. Runs until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx := interrupts.HandleInterrupts(cmd.Context(), "Stopped watching.", "")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client, cleanup, err := initClient(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			uploader := controller.NewUploadController(client, nil, slog.Default())
			defer uploader.Close()

			out := cmd.OutOrStdout()
			handler := func(ctx context.Context, path string) error {
				file, closer, err := api.OpenFile(path)
				if err != nil {
					return err
				}
				defer func() { _ = closer.Close() }()

				id, err := uploader.Submit(ctx, file)
				if err != nil {
					printLine(cmd.ErrOrStderr(), failure(err, "upload failed")+" "+cli.SubtleStyle.Render(path))
					return err
				}
				printLine(out, cli.FormatSuccess(fmt.Sprintf("%s → %s", file.Name, id)))
				return nil
			}

			printLine(out, cli.FormatInfo("Watching "+args[0]+" for PDFs. Press Ctrl+C to stop."))
			return watch.Watch(ctx, watch.Config{
				Dir:         args[0],
				Debounce:    cfg.WatchDebounce,
				InitialScan: initialScan,
				Logger:      slog.Default(),
			}, handler)
		},
	}

	cmd.Flags().BoolVar(&initialScan, "initial-scan", false, "also upload PDFs already in the directory")
	cmd.Flags().Duration("debounce", config.DefaultWatchDebounce, "quiet period before a changed file is uploaded")
	_ = viper.BindPFlag(config.KeyWatchDebounce, cmd.Flags().Lookup("debounce"))
	return cmd
}
