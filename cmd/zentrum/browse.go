package main

import (
	"log/slog"

	"github.com/Veraticus/zentrum/internal/tui"
	"github.com/Veraticus/zentrum/internal/tui/themes"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func browseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse extractions interactively",
		Long: `Open a terminal browser over all extractions. Select one with Enter to see its
Berufe, press v to verify it and d to delete it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client, cleanup, err := initClient(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			return tui.Run(ctx,
				tui.WithClient(client),
				tui.WithLogger(slog.Default()),
				tui.WithTheme(themes.GetTheme(viper.GetString("tui.theme"))),
				tui.WithRequestTimeout(cfg.Timeout),
			)
		},
	}

	cmd.Flags().String("theme", "default", "color theme (default, catppuccin-mocha)")
	_ = viper.BindPFlag("tui.theme", cmd.Flags().Lookup("theme"))
	return cmd
}
