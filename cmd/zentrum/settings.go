package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Veraticus/zentrum/internal/cli"
	"github.com/Veraticus/zentrum/internal/common"
	"github.com/spf13/cobra"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage the Anthropic credentials forwarded to the service",
		Long: `Show, set, and clear the Anthropic API key and base URL. Both are stored
locally and sent to the extraction service with every request; when unset the
service uses its own defaults.`,
	}

	cmd.AddCommand(showSettingsCmd())
	cmd.AddCommand(setSettingsCmd())
	cmd.AddCommand(clearSettingsCmd())

	return cmd
}

func showSettingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, cleanup, err := openSettings(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			current := store.Current()
			key := cli.SubtleStyle.Render("(not set, service default)")
			if current.HasAPIKey() {
				key = current.MaskedAPIKey()
			}
			baseURL := cli.SubtleStyle.Render("(not set, service default)")
			if current.AnthropicBaseURL != "" {
				baseURL = current.AnthropicBaseURL
			}

			content := fmt.Sprintf("%s %s\n%s %s\n%s %s",
				cli.BoldStyle.Render("API key: "), key,
				cli.BoldStyle.Render("Base URL:"), baseURL,
				cli.BoldStyle.Render("Server:  "), cfg.ServerURL)
			printLine(cmd.OutOrStdout(), cli.RenderBox("Settings", content))
			return nil
		},
	}
}

func setSettingsCmd() *cobra.Command {
	var (
		apiKey  string
		baseURL string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the Anthropic API key and base URL",
		Long: `Store the Anthropic API key and base URL. Without flags both values are asked
for interactively; a blank answer keeps the stored value. Pass an empty flag
value, e.g. --base-url "", to unset a field.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, cleanup, err := openSettings(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			next := store.Current()
			keyChanged := cmd.Flags().Changed("api-key")
			urlChanged := cmd.Flags().Changed("base-url")

			if !keyChanged && !urlChanged {
				prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
				answer, err := prompter.Ask(ctx, "Anthropic API key (blank keeps current)")
				if err != nil {
					return err
				}
				if answer != "" {
					next.AnthropicAPIKey = answer
				}
				answer, err = prompter.Ask(ctx, "Anthropic base URL (blank keeps current)")
				if err != nil {
					return err
				}
				if answer != "" {
					next.AnthropicBaseURL = answer
				}
			}
			if keyChanged {
				next.AnthropicAPIKey = strings.TrimSpace(apiKey)
			}
			if urlChanged {
				next.AnthropicBaseURL = strings.TrimSpace(baseURL)
			}

			if err := validateBaseURL(next.AnthropicBaseURL); err != nil {
				return err
			}

			if err := store.Save(ctx, next); err != nil {
				return err
			}
			printLine(cmd.OutOrStdout(), cli.FormatSuccess("Settings saved"))
			return nil
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "Anthropic API key")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Anthropic base URL")
	return cmd
}

func clearSettingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, cleanup, err := openSettings(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := store.Clear(ctx); err != nil {
				return err
			}
			printLine(cmd.OutOrStdout(), cli.FormatSuccess("Settings cleared"))
			return nil
		},
	}
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return common.NewUserError(
			fmt.Sprintf("invalid base URL %q: expected an http or https URL", raw),
			fmt.Errorf("%w: base url", common.ErrInvalidConfig))
	}
	return nil
}
