package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// SeedResult holds the outcome of the seed command.
type SeedResult struct {
	Seeded bool `json:"seeded"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Initialize the durable store from the seed dataset",
		Long: `Write a blob composed entirely of seed records when no durable data
exists yet. An already-initialized store is left untouched; use repair
to merge missing seed records into existing data.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCore(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer c.Close()

			seeded, err := c.Sync.InitializeIfEmpty()
			if err != nil {
				return err
			}

			text := "durable store already initialized, nothing to do"
			if seeded {
				text = "durable store initialized from seed dataset"
			}
			return emit(cmd, rootOpts, SeedResult{Seeded: seeded}, text)
		},
	}
}

// NewRepairCommand creates the repair command.
func NewRepairCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Merge missing seed records and fix duplicate notification ids",
		Long: `Union the durable blob with the seed dataset (durable records win,
seed fills gaps), then regenerate the ids of duplicated notifications.
Existing durable records are never removed or overwritten.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCore(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Sync.FullSync(); err != nil {
				return err
			}
			if err := c.Data.RepairNotificationIDs(); err != nil {
				return err
			}

			stats := c.Sync.Stats()
			text := fmt.Sprintf("repaired: %d users, %d merchants, %d purchases, %d notifications",
				stats.Users, stats.Merchants, stats.Purchases, stats.Notifications)
			return emit(cmd, rootOpts, stats, text)
		},
	}
}
