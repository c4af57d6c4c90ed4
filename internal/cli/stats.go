package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "stats",
		Short:        "Summarize the durable store",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCore(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer c.Close()

			stats := c.Sync.Stats()
			text := fmt.Sprintf(
				"durable: %v\nbackup: %v\nusers: %d\nmerchants: %d\npurchases: %d\nnotifications: %d",
				stats.HasDurable, stats.HasBackup,
				stats.Users, stats.Merchants, stats.Purchases, stats.Notifications)
			return emit(cmd, rootOpts, stats, text)
		},
	}
}
