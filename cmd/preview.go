package cmd

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/davka-nysa/davka/internal/daily"
	"github.com/davka-nysa/davka/internal/locale"
	"github.com/davka-nysa/davka/internal/preview"
	"github.com/davka-nysa/davka/internal/showcase"
)

func newPreviewCmd() *cobra.Command {
	var (
		site          string
		user          string
		password      string
		lang          string
		timezone      string
		interval      time.Duration
		narrowColumns int
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Preview the daily showcase in the terminal",
		Long: `Polls a running Davka site for today's showcase and plays the carousel
in the terminal, with the same timings as the landing page.

Arrow keys step one card, hovering the strip with the mouse (or space)
pauses autoplay and l switches the language.`,
		Example: `  # Preview a local server
  davka preview

  # Preview the production site behind the basic-auth gate
  davka preview --site https://davka.example --user davka --password secret`,
		RunE: func(cmd *cobra.Command, args []string) error {
			listURL, err := url.JoinPath(site, "/api/daily/list")
			if err != nil {
				return fmt.Errorf("invalid site url %q: %w", site, err)
			}
			clock, err := daily.NewClock(timezone, "", daily.DefaultClosingHour)
			if err != nil {
				return err
			}
			l, ok := locale.Parse(lang)
			if !ok && lang != "" {
				return fmt.Errorf("unsupported language %q", lang)
			}

			poller := showcase.NewPoller(listURL,
				showcase.WithInterval(interval),
				showcase.WithBasicAuth(user, password),
			)
			return preview.Run(cmd.Context(), preview.Options{
				Poller:        poller,
				Clock:         clock,
				Lang:          l,
				Source:        listURL,
				NarrowColumns: narrowColumns,
			})
		},
	}

	cmd.Flags().StringVar(&site, "site", "http://localhost:8080", "Base URL of the Davka site")
	cmd.Flags().StringVar(&user, "user", os.Getenv("SITE_USER"), "Basic auth user")
	cmd.Flags().StringVar(&password, "password", os.Getenv("SITE_PASSWORD"), "Basic auth password")
	cmd.Flags().StringVar(&lang, "lang", string(locale.Default), "Initial language (pl, en, de)")
	cmd.Flags().StringVar(&timezone, "timezone", daily.DefaultTimezone, "Time zone of the café")
	cmd.Flags().DurationVar(&interval, "interval", showcase.DefaultPollInterval, "How often to refresh the list")
	cmd.Flags().IntVar(&narrowColumns, "narrow-columns", 0, "Terminal width below which a single card is shown (default 96)")

	return cmd
}
