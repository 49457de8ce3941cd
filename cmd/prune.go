package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/davka-nysa/davka/internal/media"
	"github.com/davka-nysa/davka/internal/retention"
)

func newPruneCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete showcase images older than the retention window",
		Long: `Runs the retention job once against the local media store and exits.

The window defaults to RETENTION_DAYS. Cloudinary stores are not pruned.`,
		Example: `  # Keep the last week only
  davka prune --days 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("days") {
				cfg.RetentionDays = days
			}

			clock, err := cfg.Clock()
			if err != nil {
				return err
			}
			store, err := media.Open(cfg.Media())
			if err != nil {
				return err
			}
			defer store.Close()

			job := retention.New(store, clock, cfg.RetentionDays)
			if job == nil {
				return fmt.Errorf("retention is disabled for this media store (days=%d)", cfg.RetentionDays)
			}
			n, err := job.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d image(s) older than %s\n", n, job.Cutoff().Format("2006-01-02"))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Days to keep (overrides RETENTION_DAYS)")

	return cmd
}
